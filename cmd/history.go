package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/history"
)

var (
	historyLimit int
	historySong  string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent playback runs",
	Long: `Show recent playback runs from the history database.

Each run records the song, how many notes were played, the speed, the
stepping mode and how it ended (finished, stopped or failed).`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().StringVar(&historySong, "song", "", "Only show runs of the given song name")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := history.NewStore(cfg.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var runs []history.Run
	if historySong != "" {
		runs, err = store.BySong(ctx, historySong, historyLimit)
	} else {
		runs, err = store.Recent(ctx, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-16s %-30s %-8s %9s %6s  %s\n", "WHEN", "SONG", "OUTCOME", "PLAYED", "SPEED", "MODE")
	for _, run := range runs {
		mode := "auto"
		if run.Manual {
			mode = "manual"
		}
		fmt.Printf("%-16s %-30s %-8s %4d/%-4d %5.1fx  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			truncateName(run.Song, 30),
			run.Outcome,
			run.Played, run.Total,
			run.Speed,
			mode)
	}

	return nil
}
