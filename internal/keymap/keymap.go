// Package keymap translates the symbolic key identifiers used in song
// sheets into injectable keys.
package keymap

import (
	"github.com/jfmyers9/keyplay/internal/input"
)

// noteKeys is the fixed symbol table for sheet notes. Sheets address
// the fifteen playable keys as "1Key0" through "1Key14", laid out in
// three rows of five on a QWERTY keyboard.
var noteKeys = map[string]input.Key{
	"1Key0":  "y",
	"1Key1":  "u",
	"1Key2":  "i",
	"1Key3":  "o",
	"1Key4":  "p",
	"1Key5":  "h",
	"1Key6":  "j",
	"1Key7":  "k",
	"1Key8":  "l",
	"1Key9":  input.KeySemicolon,
	"1Key10": "n",
	"1Key11": "m",
	"1Key12": input.KeyPeriod,
	"1Key13": input.KeyComma,
	"1Key14": input.KeySlash,
}

// Map resolves a sheet note symbol to its injectable key. Symbols
// outside the fixed table return false; such notes are skipped by
// playback but still contribute to timing and progress.
func Map(symbol string) (input.Key, bool) {
	key, ok := noteKeys[symbol]
	return key, ok
}
