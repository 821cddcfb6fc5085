/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/keyplay/internal/config"
	"github.com/jfmyers9/keyplay/internal/player"
	"github.com/jfmyers9/keyplay/internal/remote"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the current song from the running player",
	Long: `Query the running player and display the current song.

The output format can be customized in ~/.config/keyplay/config.yaml
using a Go template. Available fields: .Song, .Progress, .Total,
.Speed, .Mode, .Status

Exit codes:
  0 - A run is currently playing
  1 - Idle, paused, or no player running`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	// Add format flag to override config
	statusCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	statusCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	// Add marquee flag to enable scrolling
	statusCmd.Flags().Bool("marquee", false, "Enable marquee scrolling for long text (overrides config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Check for format flag override
	format := cfg.Status.Format
	if formatFlag, _ := cmd.Flags().GetString("format"); formatFlag != "" {
		format = formatFlag
	}

	// Query the running player
	client := remote.NewClient(cfg.SocketPath())
	state, err := client.Status()
	if err != nil {
		// If no player is running, exit with code 1
		return fmt.Errorf("failed to get player status: %w", err)
	}

	// If not playing, exit with code 1
	if state.Mode != player.ModePlaying.String() {
		os.Exit(1)
		return nil
	}

	// Format and print output
	output, err := formatStatus(state, format)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Apply width padding/marquee if requested
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.Status.Width
	}

	marquee, _ := cmd.Flags().GetBool("marquee")
	if !marquee && !cmd.Flags().Changed("marquee") {
		// Flag not set, use config default
		marquee = cfg.Status.MarqueeEnabled
	}

	if width > 0 {
		if marquee {
			output = marqueeText(output, width, cfg.Status.MarqueeSpeed, cfg.Status.MarqueeSeparator)
		} else {
			output = padToWidth(output, width)
		}
	}

	fmt.Println(output)
	return nil
}

// formatStatus applies the template to the player state
func formatStatus(state *remote.StateInfo, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			// If width is too small, just return ellipsis truncated to width
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Ensure we're exactly at the target width (in case truncate was imprecise)
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		} else if resultWidth > width {
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		// Pad with spaces
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text // exactly the right width
}

// marqueeText creates a scrolling marquee effect for text that exceeds
// the target width. If text fits within width, returns static padded text.
//
// The scroll position derives from the current unix timestamp, so the
// output is stateless between invocations: tmux calls this command at
// discrete refresh intervals and each call lands further along the loop
// (speed is in columns per second). Extended text "original{separator}
// original" makes the window wrap around seamlessly.
func marqueeText(text string, width int, speed int, separator string) string {
	if width <= 0 {
		return text
	}

	textWidth := runewidth.StringWidth(text)

	// If text fits, just pad normally (no scrolling needed)
	if textWidth <= width {
		return padToWidth(text, width)
	}

	extended := text + separator + text
	extendedRunes := []rune(extended)

	now := time.Now().Unix()
	totalChars := len(extendedRunes)
	position := int(now*int64(speed)) % totalChars

	// Build the window starting at position
	var result []rune
	resultWidth := 0

	for i := 0; i < totalChars && resultWidth < width; i++ {
		idx := (position + i) % totalChars
		r := extendedRunes[idx]
		rw := runewidth.RuneWidth(r)

		// Don't exceed target width
		if resultWidth+rw <= width {
			result = append(result, r)
			resultWidth += rw
		} else {
			break
		}
	}

	// Pad with spaces if needed to reach exact width
	if resultWidth < width {
		return string(result) + strings.Repeat(" ", width-resultWidth)
	}

	return string(result)
}
