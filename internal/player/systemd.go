package player

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

const unitTemplate = `[Unit]
Description=keyplay hotkey song player
Documentation=https://github.com/jfmyers9/keyplay
After=graphical-session.target

[Service]
Type=simple
ExecStart={{.BinaryPath}} play --log-file {{.LogPath}}/keyplay.log
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

// UnitConfig holds the configuration for generating a systemd user unit
type UnitConfig struct {
	BinaryPath string
	LogPath    string
}

// GenerateUnit generates a systemd user unit file from the template
func GenerateUnit(config UnitConfig) (string, error) {
	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse unit template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, config); err != nil {
		return "", fmt.Errorf("failed to execute unit template: %w", err)
	}

	return buf.String(), nil
}

// GetUnitPath returns the path where the unit file should be installed
func GetUnitPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".config", "systemd", "user", "keyplay.service"), nil
}

// GetDefaultLogPath returns the default path for player logs
func GetDefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "keyplay", "logs"), nil
}
