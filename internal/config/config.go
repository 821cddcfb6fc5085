package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Directory scanned for song sheet files
	SongsDir string

	// Directory for the run history database, saved session and
	// control socket
	DataDir string

	// Initial playback speed
	Speed float64

	// Start in manual stepping mode
	ManualMode bool

	// Logging
	LogLevel string
	LogFile  string

	// Status holds the one-shot status command configuration
	Status StatusConfig
}

// StatusConfig holds rendering options for the status command
type StatusConfig struct {
	// Output format template
	// Default: "{{.Song}} [{{.Progress}}/{{.Total}}]"
	Format string

	// Fixed output width in cells (0 disables padding/truncation)
	Width int

	// Marquee scrolling for output wider than Width
	MarqueeEnabled   bool
	MarqueeSpeed     int // cells advanced per second
	MarqueeSeparator string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("songs_dir", defaultSongsDir())
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("speed", 1.0)
	v.SetDefault("manual_mode", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("status.format", "{{.Song}} [{{.Progress}}/{{.Total}}]")
	v.SetDefault("status.width", 0)
	v.SetDefault("status.marquee_enabled", false)
	v.SetDefault("status.marquee_speed", 2)
	v.SetDefault("status.marquee_separator", "  •  ")

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables
	v.SetEnvPrefix("KEYPLAY")
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		SongsDir:   v.GetString("songs_dir"),
		DataDir:    v.GetString("data_dir"),
		Speed:      v.GetFloat64("speed"),
		ManualMode: v.GetBool("manual_mode"),
		LogLevel:   v.GetString("log_level"),
		LogFile:    v.GetString("log_file"),
		Status: StatusConfig{
			Format:           v.GetString("status.format"),
			Width:            v.GetInt("status.width"),
			MarqueeEnabled:   v.GetBool("status.marquee_enabled"),
			MarqueeSpeed:     v.GetInt("status.marquee_speed"),
			MarqueeSeparator: v.GetString("status.marquee_separator"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "keyplay")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "keyplay")
}

func defaultSongsDir() string {
	return filepath.Join(defaultDataDir(), "songs")
}

// HistoryDBPath returns the run history database path under the data
// directory.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// SessionPath returns the saved session path under the data directory.
func (c *Config) SessionPath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// SocketPath returns the control socket path under the data directory.
func (c *Config) SocketPath() string {
	return filepath.Join(c.DataDir, "keyplay.sock")
}
