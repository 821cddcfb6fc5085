package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/player"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the keyplay systemd user service",
	Long: `Uninstall the keyplay systemd user service and stop it from starting
with your session.

This command will:
  - Stop the running service (if any)
  - Disable the service
  - Remove the unit file from ~/.config/systemd/user/

After uninstalling, the player will no longer start automatically.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get unit path
		unitPath, err := player.GetUnitPath()
		if err != nil {
			return fmt.Errorf("failed to get unit path: %w", err)
		}

		// Check if the unit exists
		if _, err := os.Stat(unitPath); os.IsNotExist(err) {
			fmt.Println("Service is not installed (unit file not found)")
			return nil
		}

		// Stop and disable the service
		fmt.Println("Stopping service...")
		if err := systemctl("disable", "--now", "keyplay.service"); err != nil {
			fmt.Printf("Warning: failed to stop service: %v\n", err)
			fmt.Println("Continuing with unit file removal...")
		} else {
			fmt.Println("✓ Service stopped")
		}

		// Remove unit file
		if err := os.Remove(unitPath); err != nil {
			return fmt.Errorf("failed to remove unit file: %w", err)
		}

		fmt.Printf("✓ Removed unit from %s\n", unitPath)

		if err := systemctl("daemon-reload"); err != nil {
			fmt.Printf("Warning: failed to reload systemd: %v\n", err)
		}

		fmt.Println("\nThe keyplay service has been uninstalled successfully.")
		fmt.Println("It will no longer start with your session.")
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  keyplay install")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
