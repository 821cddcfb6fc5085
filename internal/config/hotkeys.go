package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/internal/player"
)

// hotkeysFile is the bindings file name under the config directory.
const hotkeysFile = "hotkeys.json"

// HotkeyStore reads and writes the hotkey bindings file. Loading is
// forgiving: a missing file, a malformed file, or an invalid entry for
// a single action falls back to that action's default, so the player
// always starts with a workable set.
type HotkeyStore struct {
	path string
}

// NewHotkeyStore returns a store over the default bindings file.
func NewHotkeyStore() *HotkeyStore {
	return &HotkeyStore{path: filepath.Join(getConfigDir(), hotkeysFile)}
}

// NewHotkeyStoreAt returns a store over an explicit file path.
func NewHotkeyStoreAt(path string) *HotkeyStore {
	return &HotkeyStore{path: path}
}

// Path returns the bindings file path.
func (h *HotkeyStore) Path() string {
	return h.path
}

// Load reads the bindings file, falling back per field.
func (h *HotkeyStore) Load() (player.Bindings, error) {
	bindings := player.DefaultBindings()

	v := viper.New()
	v.SetConfigFile(h.path)
	v.SetConfigType("json")

	// A missing or unreadable file leaves every default in place.
	if err := v.ReadInConfig(); err != nil {
		return bindings, nil
	}

	fields := []struct {
		key    string
		action player.Action
	}{
		{"play_pause", player.ActionPlayPause},
		{"stop", player.ActionStop},
		{"speed_up", player.ActionSpeedUp},
		{"speed_down", player.ActionSpeedDown},
	}

	for _, f := range fields {
		key := input.Key(v.GetString(f.key))
		if player.ValidateKey(key) != nil {
			continue
		}
		bindings.Set(f.action, key)
	}

	return bindings, nil
}

// Save writes the bindings file, creating the config directory if
// needed.
func (h *HotkeyStore) Save(b player.Bindings) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")

	v.Set("play_pause", string(b.PlayPause))
	v.Set("stop", string(b.Stop))
	v.Set("speed_up", string(b.SpeedUp))
	v.Set("speed_down", string(b.SpeedDown))

	return v.WriteConfigAs(h.path)
}
