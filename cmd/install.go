package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/player"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install keyplay as a systemd user service",
	Long: `Install keyplay as a systemd user service that starts with your session.

This command will:
  - Generate a systemd unit file for the keyplay player
  - Install it to ~/.config/systemd/user/
  - Reload the user systemd daemon
  - Enable and start the service

The player will run in the background, ready to be driven by global
hotkeys and the keyplay CLI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get the path to the current executable
		binaryPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		// Resolve symlinks to get the actual binary path
		binaryPath, err = filepath.EvalSymlinks(binaryPath)
		if err != nil {
			return fmt.Errorf("failed to resolve executable path: %w", err)
		}

		// Get the log path
		logPath, err := player.GetDefaultLogPath()
		if err != nil {
			return fmt.Errorf("failed to get log path: %w", err)
		}

		// Create log directory if it doesn't exist
		if err := os.MkdirAll(logPath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Generate unit file
		unitContent, err := player.GenerateUnit(player.UnitConfig{
			BinaryPath: binaryPath,
			LogPath:    logPath,
		})
		if err != nil {
			return fmt.Errorf("failed to generate unit file: %w", err)
		}

		// Get unit path
		unitPath, err := player.GetUnitPath()
		if err != nil {
			return fmt.Errorf("failed to get unit path: %w", err)
		}

		// Create systemd user directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(unitPath), 0755); err != nil {
			return fmt.Errorf("failed to create systemd user directory: %w", err)
		}

		// Check if the unit already exists
		if _, err := os.Stat(unitPath); err == nil {
			fmt.Println("Service is already installed. Stopping it first...")
			if err := systemctl("stop", "keyplay.service"); err != nil {
				fmt.Printf("Warning: failed to stop existing service: %v\n", err)
			}
		}

		// Write unit file
		if err := os.WriteFile(unitPath, []byte(unitContent), 0644); err != nil {
			return fmt.Errorf("failed to write unit file: %w", err)
		}

		fmt.Printf("✓ Installed unit to %s\n", unitPath)

		// Reload, enable and start the service
		if err := systemctl("daemon-reload"); err != nil {
			return fmt.Errorf("failed to reload systemd: %w", err)
		}
		if err := systemctl("enable", "--now", "keyplay.service"); err != nil {
			return fmt.Errorf("failed to enable service: %w", err)
		}

		fmt.Println("✓ Service enabled and started successfully")
		fmt.Printf("✓ Logs will be written to %s\n", logPath)
		fmt.Println("\nThe keyplay player is now running and will start with your session.")
		fmt.Println("\nYou can check the service status with:")
		fmt.Println("  systemctl --user status keyplay")
		fmt.Println("\nTo uninstall, run:")
		fmt.Println("  keyplay uninstall")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

// systemctl runs a systemctl command against the user manager
func systemctl(args ...string) error {
	cmdArgs := append([]string{"--user"}, args...)
	cmd := exec.Command("systemctl", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			return fmt.Errorf("systemctl %s failed: %s", strings.Join(args, " "), strings.TrimSpace(string(output)))
		}
		return fmt.Errorf("failed to run systemctl %s: %w", strings.Join(args, " "), err)
	}

	return nil
}
