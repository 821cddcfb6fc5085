package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/internal/player"
	"github.com/jfmyers9/keyplay/internal/remote"
)

var bindCapture bool

// bindCmd represents the bind command
var bindCmd = &cobra.Command{
	Use:   "bind [action] [key]",
	Short: "Show or change hotkey bindings",
	Long: `Show or change the global hotkey bindings.

With no arguments, lists the current bindings. With an action and a
key, writes the binding to hotkeys.json; a running player picks it up
on its next start. With an action and --capture, asks the running
player to bind the next key pressed anywhere on the system, taking
effect immediately.

Actions: play-pause, stop, speed-up, speed-down
Keys are X keysym names: space, Escape, equal, minus, a, 1, ...
Function keys, modifiers, Tab and CapsLock cannot be bound.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runBind,
}

func init() {
	rootCmd.AddCommand(bindCmd)

	bindCmd.Flags().BoolVar(&bindCapture, "capture", false, "Bind the next key pressed anywhere (requires a running player)")
}

func runBind(cmd *cobra.Command, args []string) error {
	store := config.NewHotkeyStore()

	// No arguments: list current bindings
	if len(args) == 0 {
		bindings, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load bindings: %w", err)
		}
		for _, action := range player.Actions {
			fmt.Printf("%-12s %s\n", action, bindings.Key(action))
		}
		return nil
	}

	action, err := player.ParseAction(args[0])
	if err != nil {
		return err
	}

	if bindCapture {
		if len(args) > 1 {
			return fmt.Errorf("--capture takes no key argument")
		}

		if _, err := controlDo(remote.Request{Command: remote.CmdCapture, Action: action.String()}); err != nil {
			return fmt.Errorf("failed to arm capture: %w", err)
		}

		fmt.Printf("Capture armed for %s.\n", action)
		fmt.Println("Press the new key now; the player will bind and save it.")
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("bind requires a key argument (or --capture)")
	}

	key := input.Key(args[1])
	if err := player.ValidateKey(key); err != nil {
		return err
	}

	bindings, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load bindings: %w", err)
	}
	bindings.Set(action, key)
	if err := store.Save(bindings); err != nil {
		return fmt.Errorf("failed to save bindings: %w", err)
	}

	fmt.Printf("Bound %s to %q\n", action, key)
	return nil
}
