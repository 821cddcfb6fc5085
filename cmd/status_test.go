package cmd

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/keyplay/internal/remote"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long song title that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle emoji correctly",
			input:    "🎵 Song",
			width:    15,
			expected: "🎵 Song        ", // emoji is 2 columns wide, so 7 total + 8 spaces
		},
		{
			name:     "truncate emoji text",
			input:    "🎵 This is a very long song title",
			width:    15,
			expected: "🎵 This is a...",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate unicode text",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ", // 日本語 is 6 columns, ... is 3, need 1 space
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "minimum width for truncation",
			input:    "Hello",
			width:    3,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}

			// Verify the result has the expected display width (if width > 0)
			if tt.width > 0 {
				resultWidth := runewidth.StringWidth(result)
				if resultWidth != tt.width {
					t.Errorf("padToWidth(%q, %d) produced width %d, expected %d",
						tt.input, tt.width, resultWidth, tt.width)
				}
			}
		})
	}
}

func TestMarqueeTextFitsWithoutScrolling(t *testing.T) {
	result := marqueeText("Short", 10, 2, "  •  ")
	if result != "Short     " {
		t.Errorf("expected static padded text, got %q", result)
	}
}

func TestMarqueeTextExactWidth(t *testing.T) {
	// Long input must always come back at exactly the requested display
	// width, wherever the scroll position happens to land.
	input := "A very long song title that will not fit in the window"
	for _, width := range []int{10, 20, 33} {
		result := marqueeText(input, width, 2, "  •  ")
		if got := runewidth.StringWidth(result); got != width {
			t.Errorf("marqueeText width %d produced display width %d (%q)", width, got, result)
		}
	}
}

func TestMarqueeTextContainsInput(t *testing.T) {
	// The window is cut circularly from "input + separator + input", so
	// whatever the scroll position, it must appear in that loop unrolled
	// twice.
	input := "Clair de Lune (arranged for keyboard)"
	separator := " | "
	loop := input + separator + input

	result := marqueeText(input, 12, 1, separator)
	window := strings.TrimRight(result, " ")
	if !strings.Contains(loop+loop, window) {
		t.Errorf("marquee window %q is not a slice of the looped text", window)
	}
}

func TestFormatStatus(t *testing.T) {
	state := &remote.StateInfo{
		Song:     "Moonlight",
		Mode:     "playing",
		Speed:    1.5,
		Progress: 12,
		Total:    40,
		Status:   "Playing...",
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{
			name:     "default format",
			template: "{{.Song}} [{{.Progress}}/{{.Total}}]",
			expected: "Moonlight [12/40]",
		},
		{
			name:     "speed format",
			template: "{{.Song}} @ {{.Speed}}x",
			expected: "Moonlight @ 1.5x",
		},
		{
			name:     "status only",
			template: "{{.Status}}",
			expected: "Playing...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := formatStatus(state, tt.template)
			if err != nil {
				t.Fatalf("formatStatus failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestFormatStatusInvalidTemplate(t *testing.T) {
	state := &remote.StateInfo{Song: "Moonlight"}

	if _, err := formatStatus(state, "{{.Song"); err == nil {
		t.Error("expected an error for an unparsable template")
	}
	if _, err := formatStatus(state, "{{.NoSuchField}}"); err == nil {
		t.Error("expected an error for an unknown template field")
	}
}
