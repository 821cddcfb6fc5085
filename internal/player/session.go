package player

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Session is the slice of player state worth restoring across
// restarts: which song was loaded and how the user had the player
// configured. Run progress is deliberately not part of it.
type Session struct {
	SongPath string  `json:"song_path,omitempty"`
	Speed    float64 `json:"speed"`
	Manual   bool    `json:"manual"`
}

// LoadSession reads a saved session from path. A missing file is not an
// error; it yields a default session.
func LoadSession(path string) (Session, error) {
	session := Session{Speed: DefaultSpeed}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return session, nil
		}
		return session, fmt.Errorf("failed to read session file: %w", err)
	}

	if err := json.Unmarshal(data, &session); err != nil {
		return Session{Speed: DefaultSpeed}, fmt.Errorf("failed to parse session file: %w", err)
	}

	session.Speed = clampSpeed(session.Speed)
	return session, nil
}

// SaveSession writes the session to path atomically.
func SaveSession(path string, session Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write to a temp file and rename so a crash mid-write never
	// corrupts the saved session.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}
