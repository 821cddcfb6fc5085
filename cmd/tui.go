package cmd

import (
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the player with the terminal dashboard",
	Long: `Run the player with the terminal dashboard in the foreground.

This is shorthand for 'keyplay play --tui'. The dashboard shows the
selected song, playback progress, the current hotkey bindings and
recent runs, and accepts local keys to drive the player:

  space  play/pause        m    toggle manual mode
  s      stop              n    manual step
  + / -  speed up/down     1-4  rebind a hotkey (capture)
  q      quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		playTUI = true
		return runPlay(playCmd, args)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
