package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/internal/player"
	"github.com/jfmyers9/keyplay/internal/remote"
	"github.com/jfmyers9/keyplay/internal/tui"
)

var (
	playSong     string
	playSpeed    float64
	playManual   bool
	playTUI      bool
	playLogFile  string
	playLogLevel string
	playDataDir  string
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the keyboard player",
	Long: `Run the keyboard player that replays song sheets as synthetic keystrokes.

The player will:
- Listen for global hotkeys (play/pause, stop, speed up/down) regardless of focus
- Emit each note of the selected song at its recorded offset, scaled by speed
- Step through chords one hotkey press at a time in manual mode
- Record every run in the playback history
- Answer control commands on a unix socket (used by the other subcommands)
- Handle graceful shutdown on SIGINT/SIGTERM

The player runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for systemd).
Use --tui to drive it from a terminal dashboard instead.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	// Command-line flags
	playCmd.Flags().StringVar(&playSong, "song", "", "Song sheet to select at startup (default: last session's song)")
	playCmd.Flags().Float64Var(&playSpeed, "speed", 0, "Initial playback speed (default: last session's speed)")
	playCmd.Flags().BoolVar(&playManual, "manual", false, "Start in manual stepping mode")
	playCmd.Flags().BoolVar(&playTUI, "tui", false, "Show the terminal dashboard")
	playCmd.Flags().StringVar(&playLogFile, "log-file", "", "Log file path (default: stderr)")
	playCmd.Flags().StringVar(&playLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	playCmd.Flags().StringVar(&playDataDir, "data-dir", "", "Data directory for history and session (default: ~/.local/share/keyplay)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if playDataDir != "" {
		cfg.DataDir = playDataDir
	}

	// Set up logging
	logFile := playLogFile
	if logFile == "" {
		logFile = cfg.LogFile
	}
	logLevel := playLogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	// The dashboard owns the terminal, so stderr logging would garble
	// it. Without a log file the logs are dropped.
	var logger zerolog.Logger
	if playTUI && logFile == "" {
		logger = zerolog.Nop()
	} else {
		logger = setupLogger(logFile, logLevel)
	}

	logger.Info().
		Str("version", version).
		Msg("Starting keyplay player")

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger.Info().Str("data_dir", cfg.DataDir).Msg("Using data directory")

	// Start from config defaults, restore the previous session on top,
	// then let flags win.
	speed := cfg.Speed
	manual := cfg.ManualMode
	songPath := ""
	if _, err := os.Stat(cfg.SessionPath()); err == nil {
		session, err := player.LoadSession(cfg.SessionPath())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to restore previous session")
		} else {
			speed = session.Speed
			manual = session.Manual
			songPath = session.SongPath
		}
	}
	if cmd.Flags().Changed("speed") {
		speed = playSpeed
	}
	if cmd.Flags().Changed("manual") {
		manual = playManual
	}
	if playSong != "" {
		songPath = playSong
	}

	// Load hotkey bindings
	hotkeyStore := config.NewHotkeyStore()
	bindings, err := hotkeyStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load hotkey bindings: %w", err)
	}

	// Create key listener and injector
	listener, err := input.NewLibinputListener(logger)
	if err != nil {
		return fmt.Errorf("failed to initialize key listener: %w", err)
	}

	injector, err := input.NewXdotoolInjector()
	if err != nil {
		return fmt.Errorf("failed to initialize key injector: %w", err)
	}

	// Create player config
	playerCfg := player.Config{
		HistoryDB:   cfg.HistoryDBPath(),
		SessionFile: cfg.SessionPath(),
		Speed:       speed,
		Manual:      manual,
	}

	// Create player
	p, err := player.New(playerCfg, listener, injector, bindings, hotkeyStore, logger)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	// Select the initial song. A stale session path must not keep the
	// player from starting.
	if songPath != "" {
		if err := p.Select(songPath); err != nil {
			logger.Warn().Err(err).Str("path", songPath).Msg("Failed to select initial song")
		}
	}

	// Control socket for the other subcommands
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := remote.NewServer(p, cfg.SocketPath(), logger)
	go func() {
		if err := server.Run(serverCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Control socket error")
		}
	}()

	// Run player (blocks until shutdown signal or TUI quit)
	if playTUI {
		err = runWithTUI(p)
	} else {
		err = p.Run()
	}
	if err != nil {
		return fmt.Errorf("player error: %w", err)
	}

	// Graceful shutdown
	if err := p.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Player stopped")
	return nil
}

// runWithTUI runs the player with the terminal dashboard in the
// foreground. Quitting the dashboard shuts the player down; a shutdown
// signal tears the dashboard down.
func runWithTUI(p *player.Player) error {
	app := tui.New()
	app.SetCommands(tui.Commands{
		PlayPause:    p.PlayPause,
		Stop:         p.Stop,
		SpeedUp:      p.SpeedUp,
		SpeedDown:    p.SpeedDown,
		ToggleManual: p.ToggleManual,
		Advance:      p.Advance,
		Capture:      p.RequestCapture,
	})

	runErr := make(chan error, 1)
	go func() {
		runErr <- p.Run()
		app.Stop()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx, p.Snapshot); err != nil {
		p.RequestShutdown()
		<-runErr
		return err
	}

	p.RequestShutdown()
	return <-runErr
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
