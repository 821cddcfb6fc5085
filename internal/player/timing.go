package player

import (
	"time"

	"github.com/jfmyers9/keyplay/pkg/sheet"
)

// Articulation parameters for synthesized keystrokes. Holds and gaps
// are small compared to authored note spacing, so they phrase the
// output without shifting the schedule audibly.
const (
	// AccentHold is the key-down duration for accented notes. Every
	// fourth note by index is accented, starting with the first.
	AccentHold = 55 * time.Millisecond

	// PeakHold is the key-down duration for a local melodic peak: a
	// note authored strictly later than both neighbors.
	PeakHold = 50 * time.Millisecond

	// BaseHold is the key-down duration for all remaining notes.
	BaseHold = 35 * time.Millisecond

	// HoldJitter is the half-width of the random variance added to
	// every automatic hold.
	HoldJitter = 5 * time.Millisecond

	// AccentGap and BaseGap separate a key release from the next
	// dispatch step.
	AccentGap = 5 * time.Millisecond
	BaseGap   = 10 * time.Millisecond

	// ManualHold is the fixed key-down duration for manual stepping.
	// Manual taps carry no jitter.
	ManualHold = 40 * time.Millisecond

	// PausePoll is how often a paused run re-checks the mode.
	PausePoll = 100 * time.Millisecond

	accentInterval = 4
)

// NoteTarget converts a note's authored offset into the wall-clock
// delay from run start at the given speed. Speed divides time: 2.0
// halves every delay.
func NoteTarget(n sheet.Note, speed float64) time.Duration {
	return time.Duration(float64(n.Offset()) / speed)
}

// NoteHold returns the base hold duration for the i-th note. Accent
// placement wins over the peak rule when both apply.
func NoteHold(notes []sheet.Note, i int) time.Duration {
	if accented(i) {
		return AccentHold
	}
	if isPeak(notes, i) {
		return PeakHold
	}
	return BaseHold
}

// NoteGap returns the post-release pause for the i-th note.
func NoteGap(i int) time.Duration {
	if accented(i) {
		return AccentGap
	}
	return BaseGap
}

func accented(i int) bool {
	return i%accentInterval == 0
}

// isPeak reports whether the i-th note is a strict local maximum of the
// authored timeline. First and last notes never qualify.
func isPeak(notes []sheet.Note, i int) bool {
	if i <= 0 || i+1 >= len(notes) {
		return false
	}
	return notes[i].Time > notes[i-1].Time && notes[i].Time > notes[i+1].Time
}

// ChordEnd returns the index one past the run of notes sharing the
// authored timestamp of notes[start]. Manual stepping consumes one such
// chord per tick.
func ChordEnd(notes []sheet.Note, start int) int {
	end := start + 1
	for end < len(notes) && notes[end].Time == notes[start].Time {
		end++
	}
	return end
}
