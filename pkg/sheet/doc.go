// Package sheet reads and represents song sheet files: JSON documents
// describing an ordered sequence of timed key events.
//
// # Format
//
// A sheet file is a UTF-8 JSON array containing at least one song object.
// Only the first object is used; trailing objects are ignored. A song
// object carries display metadata (name, bpm, bitsPerPage, pitchLevel,
// helpText) and the note sequence:
//
//	[
//	  {
//	    "name": "Example Song",
//	    "bpm": 220,
//	    "bitsPerPage": 16,
//	    "pitchLevel": 0,
//	    "helpText": "",
//	    "songNotes": [
//	      {"key": "1Key0", "time": 0},
//	      {"key": "1Key5", "time": 250}
//	    ]
//	  }
//	]
//
// Unknown fields are ignored. Note times are milliseconds from song start
// and are not guaranteed to be monotonic; consumers must preserve the
// authored order regardless of time values.
//
// # Quick Start
//
//	song, err := sheet.Load("songs/example.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, note := range song.Notes {
//	    fmt.Println(note.Key, note.Offset())
//	}
//
// # Error Handling
//
// Load distinguishes read failures from format failures. Read failures
// wrap the underlying os error, so errors.Is(err, fs.ErrNotExist) works.
// Format failures (not an array, empty array, malformed JSON) wrap
// ErrFormat:
//
//	song, err := sheet.Load(path)
//	if errors.Is(err, sheet.ErrFormat) {
//	    // file exists but is not a valid sheet
//	}
package sheet
