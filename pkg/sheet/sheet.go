package sheet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Note is one timed key event within a song. Key is the symbolic key
// identifier as authored (e.g. "1Key7"); Time is the offset from song
// start in milliseconds. Notes are immutable once loaded.
type Note struct {
	Key  string `json:"key"`
	Time uint64 `json:"time"`
}

// Offset returns the note's time as a duration from song start.
func (n Note) Offset() time.Duration {
	return time.Duration(n.Time) * time.Millisecond
}

// Song is an ordered sequence of timed key events plus display metadata.
// The tempo fields (BPM, BitsPerPage, PitchLevel) are carried for display
// only; playback is driven entirely by the per-note offsets.
type Song struct {
	Name        string `json:"name"`
	BPM         uint   `json:"bpm"`
	BitsPerPage uint   `json:"bitsPerPage"`
	PitchLevel  int    `json:"pitchLevel"`
	HelpText    string `json:"helpText"`
	Notes       []Note `json:"songNotes"`
}

// Duration returns the largest note offset in the song. Because note
// times are not guaranteed to be monotonic this scans every note rather
// than trusting the last one.
func (s *Song) Duration() time.Duration {
	var max uint64
	for _, n := range s.Notes {
		if n.Time > max {
			max = n.Time
		}
	}
	return time.Duration(max) * time.Millisecond
}

// Load reads and parses the sheet file at path. The file must contain a
// JSON array with at least one song object; the first object is returned.
//
// Read failures wrap the underlying os error. Parse failures and empty
// arrays wrap ErrFormat.
func Load(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read song file: %w", err)
	}

	song, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return song, nil
}

// Parse decodes sheet file contents. The document must be a JSON array
// with at least one song object; the first object is returned and the
// rest are ignored.
func Parse(data []byte) (*Song, error) {
	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	if len(songs) == 0 {
		return nil, fmt.Errorf("%w: empty song array", ErrFormat)
	}

	song := songs[0]
	return &song, nil
}
