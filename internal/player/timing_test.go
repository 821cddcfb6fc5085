package player

import (
	"testing"
	"time"

	"github.com/jfmyers9/keyplay/pkg/sheet"
)

func notesAt(times ...uint64) []sheet.Note {
	notes := make([]sheet.Note, len(times))
	for i, ts := range times {
		notes[i] = sheet.Note{Key: "1Key0", Time: ts}
	}
	return notes
}

func TestNoteTarget(t *testing.T) {
	note := sheet.Note{Key: "1Key0", Time: 1000}

	tests := []struct {
		name        string
		speed       float64
		want        time.Duration
		description string
	}{
		{
			name:        "normal speed",
			speed:       1.0,
			want:        time.Second,
			description: "authored offsets pass through unchanged",
		},
		{
			name:        "double speed",
			speed:       2.0,
			want:        500 * time.Millisecond,
			description: "doubling speed halves the delay",
		},
		{
			name:        "half speed",
			speed:       0.5,
			want:        2 * time.Second,
			description: "halving speed doubles the delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoteTarget(note, tt.speed); got != tt.want {
				t.Errorf("%s: NoteTarget(1000ms, %v) = %v, want %v",
					tt.description, tt.speed, got, tt.want)
			}
		})
	}
}

func TestNoteHold(t *testing.T) {
	tests := []struct {
		name        string
		notes       []sheet.Note
		index       int
		want        time.Duration
		description string
	}{
		{
			name:        "first note is accented",
			notes:       notesAt(0, 100, 200),
			index:       0,
			want:        AccentHold,
			description: "index zero always takes the accent hold",
		},
		{
			name:        "every fourth note is accented",
			notes:       notesAt(0, 100, 200, 300, 400, 500),
			index:       4,
			want:        AccentHold,
			description: "accents repeat on a fixed stride",
		},
		{
			name:        "accent wins over peak",
			notes:       notesAt(0, 100, 200, 300, 900, 400),
			index:       4,
			want:        AccentHold,
			description: "a note that is both accented and a peak holds the accent duration",
		},
		{
			name:        "local peak",
			notes:       notesAt(0, 100, 900, 200),
			index:       2,
			want:        PeakHold,
			description: "a note later than both neighbors takes the peak hold",
		},
		{
			name:        "plain note",
			notes:       notesAt(0, 100, 200, 300),
			index:       1,
			want:        BaseHold,
			description: "monotonic interior notes take the base hold",
		},
		{
			name:        "last note is never a peak",
			notes:       notesAt(0, 100, 900),
			index:       2,
			want:        BaseHold,
			description: "the peak rule needs a following neighbor",
		},
		{
			name:        "equal neighbor is not a peak",
			notes:       notesAt(0, 100, 500, 500),
			index:       2,
			want:        BaseHold,
			description: "chord members share a timestamp and never peak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoteHold(tt.notes, tt.index); got != tt.want {
				t.Errorf("%s: NoteHold(index %d) = %v, want %v",
					tt.description, tt.index, got, tt.want)
			}
		})
	}
}

func TestNoteGap(t *testing.T) {
	if got := NoteGap(0); got != AccentGap {
		t.Errorf("NoteGap(0) = %v, want %v", got, AccentGap)
	}
	if got := NoteGap(4); got != AccentGap {
		t.Errorf("NoteGap(4) = %v, want %v", got, AccentGap)
	}
	if got := NoteGap(1); got != BaseGap {
		t.Errorf("NoteGap(1) = %v, want %v", got, BaseGap)
	}
	if got := NoteGap(7); got != BaseGap {
		t.Errorf("NoteGap(7) = %v, want %v", got, BaseGap)
	}
}

func TestChordEnd(t *testing.T) {
	tests := []struct {
		name  string
		notes []sheet.Note
		start int
		want  int
	}{
		{
			name:  "single note",
			notes: notesAt(0, 100, 200),
			start: 1,
			want:  2,
		},
		{
			name:  "three note chord",
			notes: notesAt(0, 100, 100, 100, 200),
			start: 1,
			want:  4,
		},
		{
			name:  "chord at the end",
			notes: notesAt(0, 100, 100),
			start: 1,
			want:  3,
		},
		{
			name:  "last note",
			notes: notesAt(0, 100, 200),
			start: 2,
			want:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChordEnd(tt.notes, tt.start); got != tt.want {
				t.Errorf("ChordEnd(start %d) = %d, want %d", tt.start, got, tt.want)
			}
		})
	}
}

func TestSchedulerJitterRange(t *testing.T) {
	s := NewScheduler(newTestState(), nil, nil, testLogger())

	for i := 0; i < 1000; i++ {
		j := s.jitter()
		if j < -HoldJitter || j > HoldJitter {
			t.Fatalf("jitter %v outside [-%v, %v]", j, HoldJitter, HoldJitter)
		}
	}
}
