package keymap

import (
	"fmt"
	"testing"

	"github.com/jfmyers9/keyplay/internal/input"
)

func TestMap(t *testing.T) {
	// The full contract table: N -> character, in order 0..14.
	expected := []input.Key{
		"y", "u", "i", "o", "p",
		"h", "j", "k", "l", "semicolon",
		"n", "m", "period", "comma", "slash",
	}

	for n, want := range expected {
		symbol := fmt.Sprintf("1Key%d", n)
		t.Run(symbol, func(t *testing.T) {
			got, ok := Map(symbol)
			if !ok {
				t.Fatalf("Map(%q) not found, want %q", symbol, want)
			}
			if got != want {
				t.Errorf("Map(%q) = %q, want %q", symbol, got, want)
			}
		})
	}
}

func TestMapUnknownSymbols(t *testing.T) {
	unknown := []string{
		"1Key15",  // past the end of the table
		"1Key-1",  // negative index never appears in the table
		"2Key0",   // wrong prefix
		"Key0",    // missing prefix
		"1Key",    // missing index
		"1key0",   // case matters
		"",        // empty
		"1Key07",  // leading zero is a different symbol
		"1Key0 ",  // trailing whitespace is a different symbol
		"Unknown", // arbitrary junk
	}

	for _, symbol := range unknown {
		if key, ok := Map(symbol); ok {
			t.Errorf("Map(%q) = %q, want no mapping", symbol, key)
		}
	}
}

func BenchmarkMap(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Map("1Key7")
	}
}
