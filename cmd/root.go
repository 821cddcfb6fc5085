/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "keyplay",
	Short: "Keyboard auto-player for timed song sheets",
	Long: `keyplay replays song sheets (JSON files of timed key events) by
injecting synthetic keystrokes at their recorded offsets, so any
application that plays notes on key presses can be driven hands-free.

It runs as a background player controlled by global hotkeys that work
regardless of which window has focus: play/pause, stop, speed up/down
and manual stepping. A control socket lets the CLI drive and inspect a
running player, and a one-shot status command renders the current song
for tmux status lines or other status bars.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here if needed
}
