package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/keymap"
	"github.com/jfmyers9/keyplay/pkg/sheet"
)

var songsDir string

// songsCmd represents the songs command
var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "List song sheets in the songs directory",
	Long: `List the song sheets found in the songs directory, with their
note counts and durations.

Sheets that fail to parse are listed with the parse error so broken
files are easy to spot. The directory defaults to the songs_dir config
value (~/.local/share/keyplay/songs).`,
	RunE: runSongs,
}

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <song.json>",
	Short: "Validate a song sheet",
	Long: `Parse the given song sheet and report its contents: name, note
count, duration, and any notes whose key symbols the player cannot
inject. Unplayable notes are skipped during playback but still count
toward timing and progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(songsCmd)
	rootCmd.AddCommand(checkCmd)

	songsCmd.Flags().StringVar(&songsDir, "dir", "", "Songs directory (default: songs_dir from config)")
}

func runSongs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := songsDir
	if dir == "" {
		dir = cfg.SongsDir
	}

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to scan songs directory: %w", err)
	}
	if len(entries) == 0 {
		fmt.Printf("No song sheets found in %s\n", dir)
		return nil
	}
	sort.Strings(entries)

	fmt.Printf("%-40s %6s %9s  %s\n", "NAME", "NOTES", "DURATION", "FILE")
	for _, path := range entries {
		song, err := sheet.Load(path)
		if err != nil {
			fmt.Printf("%-40s %6s %9s  %s (%v)\n", "(unreadable)", "-", "-", filepath.Base(path), err)
			continue
		}

		name := song.Name
		if name == "" {
			name = "(untitled)"
		}
		fmt.Printf("%-40s %6d %9s  %s\n",
			truncateName(name, 40),
			len(song.Notes),
			formatSongDuration(song.Duration()),
			filepath.Base(path))
	}

	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	song, err := sheet.Load(path)
	if err != nil {
		return fmt.Errorf("sheet is not playable: %w", err)
	}

	unplayable := countUnplayableNotes(song)

	fmt.Printf("Name:     %s\n", song.Name)
	fmt.Printf("Notes:    %d\n", len(song.Notes))
	fmt.Printf("Duration: %s\n", formatSongDuration(song.Duration()))
	if song.BPM > 0 {
		fmt.Printf("BPM:      %d\n", song.BPM)
	}
	if unplayable > 0 {
		fmt.Printf("\nWarning: %d of %d notes use key symbols the player cannot inject.\n",
			unplayable, len(song.Notes))
		fmt.Println("These notes will be skipped during playback.")
	} else {
		fmt.Println("\nAll notes are playable.")
	}

	// Let scripts branch on a sheet with nothing playable in it.
	if len(song.Notes) > 0 && unplayable == len(song.Notes) {
		os.Exit(1)
	}

	return nil
}

// countUnplayableNotes returns how many notes reference key symbols
// outside the injectable table.
func countUnplayableNotes(song *sheet.Song) int {
	count := 0
	for _, note := range song.Notes {
		if _, ok := keymap.Map(note.Key); !ok {
			count++
		}
	}
	return count
}

// truncateName shortens a song name for the listing column
func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-3] + "..."
}

// formatSongDuration formats a song duration as M:SS
func formatSongDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
