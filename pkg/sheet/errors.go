package sheet

import (
	"errors"
)

// ErrFormat is returned (wrapped) when a sheet file is readable but is
// not a non-empty JSON array of well-formed song objects.
//
// Read failures are not ErrFormat; they wrap the underlying os error so
// callers can distinguish a missing file from a corrupt one:
//
//	_, err := sheet.Load(path)
//	switch {
//	case errors.Is(err, sheet.ErrFormat):
//	    // corrupt or empty sheet
//	case errors.Is(err, fs.ErrNotExist):
//	    // no such file
//	}
var ErrFormat = errors.New("sheet: malformed song file")
