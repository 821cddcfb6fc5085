package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/internal/player"
)

func writeHotkeys(t *testing.T, content string) *HotkeyStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hotkeys.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write hotkeys file: %v", err)
	}
	return NewHotkeyStoreAt(path)
}

func TestHotkeyStoreLoadMissingFile(t *testing.T) {
	store := NewHotkeyStoreAt(filepath.Join(t.TempDir(), "nope.json"))

	bindings, err := store.Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if bindings != player.DefaultBindings() {
		t.Errorf("expected defaults, got %+v", bindings)
	}
}

func TestHotkeyStoreLoadPerFieldFallback(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        player.Bindings
		description string
	}{
		{
			name:        "complete file",
			content:     `{"play_pause": "p", "stop": "s", "speed_up": "k", "speed_down": "j"}`,
			want:        player.Bindings{PlayPause: "p", Stop: "s", SpeedUp: "k", SpeedDown: "j"},
			description: "every valid entry is honored",
		},
		{
			name:    "partial file",
			content: `{"stop": "s"}`,
			want: player.Bindings{
				PlayPause: input.KeySpace,
				Stop:      "s",
				SpeedUp:   input.KeyEqual,
				SpeedDown: input.KeyMinus,
			},
			description: "absent actions keep their defaults",
		},
		{
			name:    "reserved key entry",
			content: `{"play_pause": "F1", "stop": "s"}`,
			want: player.Bindings{
				PlayPause: input.KeySpace,
				Stop:      "s",
				SpeedUp:   input.KeyEqual,
				SpeedDown: input.KeyMinus,
			},
			description: "a reserved key falls back for that action only",
		},
		{
			name:    "empty entry",
			content: `{"speed_up": "", "speed_down": "j"}`,
			want: player.Bindings{
				PlayPause: input.KeySpace,
				Stop:      input.KeyEscape,
				SpeedUp:   input.KeyEqual,
				SpeedDown: "j",
			},
			description: "an empty string falls back for that action only",
		},
		{
			name:        "malformed file",
			content:     `{not json`,
			want:        player.DefaultBindings(),
			description: "unparseable files fall back entirely",
		},
		{
			name:        "unknown fields ignored",
			content:     `{"stop": "s", "volume_up": "v"}`,
			want:        player.Bindings{PlayPause: input.KeySpace, Stop: "s", SpeedUp: input.KeyEqual, SpeedDown: input.KeyMinus},
			description: "extra fields do not disturb loading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := writeHotkeys(t, tt.content)

			bindings, err := store.Load()
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if bindings != tt.want {
				t.Errorf("%s: got %+v, want %+v", tt.description, bindings, tt.want)
			}
		})
	}
}

func TestHotkeyStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hotkeys.json")
	store := NewHotkeyStoreAt(path)

	saved := player.Bindings{
		PlayPause: "p",
		Stop:      input.KeyEscape,
		SpeedUp:   "k",
		SpeedDown: "j",
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("failed to save bindings: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("failed to load bindings: %v", err)
	}
	if loaded != saved {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, saved)
	}
}
