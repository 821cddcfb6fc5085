package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/remote"
)

// playpauseCmd represents the play-pause command
var playpauseCmd = &cobra.Command{
	Use:   "play-pause",
	Short: "Toggle play/pause in the running player",
	Long: `Toggle between play and pause in the running player.

If the player is idle with a song selected, starts a run. If a run is
active, pauses it. If paused, resumes.`,
	RunE: runPlayPause,
}

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active run",
	Long:  `Stop the active run in the running player. Progress freezes where it stands.`,
	RunE:  runStop,
}

// speedupCmd represents the speed-up command
var speedupCmd = &cobra.Command{
	Use:   "speed-up",
	Short: "Raise playback speed one step",
	Long:  `Raise the playback speed by 0.1x, up to the 2.0x ceiling. Takes effect on the next run.`,
	RunE:  runSpeedUp,
}

// speeddownCmd represents the speed-down command
var speeddownCmd = &cobra.Command{
	Use:   "speed-down",
	Short: "Lower playback speed one step",
	Long:  `Lower the playback speed by 0.1x, down to the 0.5x floor. Takes effect on the next run.`,
	RunE:  runSpeedDown,
}

// stepCmd represents the step command
var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Advance manual playback by one chord",
	Long: `Inject the chord at the current position and advance past it.

Only has an effect while the player is running a manual-mode session.`,
	RunE: runStep,
}

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select <song.json>",
	Short: "Select a song sheet in the running player",
	Long: `Load the given song sheet in the running player and make it the
current selection. Any active run is stopped first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSelect,
}

// modeCmd represents the mode command
var modeCmd = &cobra.Command{
	Use:   "mode <auto|manual>",
	Short: "Switch between automatic and manual stepping",
	Long: `Switch the running player between automatic playback and manual
stepping. Any active run is stopped first.`,
	Args: cobra.ExactArgs(1),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(playpauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(speedupCmd)
	rootCmd.AddCommand(speeddownCmd)
	rootCmd.AddCommand(stepCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(modeCmd)
}

// controlDo sends one command to the running player and unwraps the reply.
func controlDo(req remote.Request) (*remote.StateInfo, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	client := remote.NewClient(cfg.SocketPath())
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, errors.New(resp.Error)
	}
	return resp.State, nil
}

func runPlayPause(cmd *cobra.Command, args []string) error {
	state, err := controlDo(remote.Request{Command: remote.CmdPlayPause})
	if err != nil {
		return fmt.Errorf("failed to play-pause: %w", err)
	}

	fmt.Printf("%s: %s\n", state.Mode, state.Status)
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	state, err := controlDo(remote.Request{Command: remote.CmdStop})
	if err != nil {
		return fmt.Errorf("failed to stop: %w", err)
	}

	fmt.Printf("Stopped at %d/%d\n", state.Progress, state.Total)
	return nil
}

func runSpeedUp(cmd *cobra.Command, args []string) error {
	state, err := controlDo(remote.Request{Command: remote.CmdSpeedUp})
	if err != nil {
		return fmt.Errorf("failed to change speed: %w", err)
	}

	fmt.Printf("Speed: %.1fx\n", state.Speed)
	return nil
}

func runSpeedDown(cmd *cobra.Command, args []string) error {
	state, err := controlDo(remote.Request{Command: remote.CmdSpeedDown})
	if err != nil {
		return fmt.Errorf("failed to change speed: %w", err)
	}

	fmt.Printf("Speed: %.1fx\n", state.Speed)
	return nil
}

func runStep(cmd *cobra.Command, args []string) error {
	state, err := controlDo(remote.Request{Command: remote.CmdAdvance})
	if err != nil {
		return fmt.Errorf("failed to step: %w", err)
	}

	fmt.Printf("Position: %d/%d\n", state.Progress, state.Total)
	return nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	// The player resolves the path from its own working directory, so
	// send it absolute.
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve song path: %w", err)
	}

	state, err := controlDo(remote.Request{Command: remote.CmdSelect, Path: path})
	if err != nil {
		return fmt.Errorf("failed to select song: %w", err)
	}

	fmt.Printf("Selected: %s (%d notes)\n", state.Song, state.Total)
	return nil
}

func runMode(cmd *cobra.Command, args []string) error {
	mode := args[0]
	if mode != "auto" && mode != "manual" {
		return fmt.Errorf("invalid mode argument: %s (must be 'auto' or 'manual')", mode)
	}

	state, err := controlDo(remote.Request{Command: remote.CmdMode, Mode: mode})
	if err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}

	if state.Manual {
		fmt.Println("Mode: manual")
	} else {
		fmt.Println("Mode: auto")
	}
	return nil
}
