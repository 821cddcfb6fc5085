package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/keyplay/internal/player"
)

const maxRecentRuns = 5

// Config holds TUI configuration options
type Config struct {
	RefreshRate time.Duration // How often to refresh the display
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate: 250 * time.Millisecond,
	}
}

// Commands wires TUI key presses to the player. Nil fields are ignored.
type Commands struct {
	PlayPause    func() error
	Stop         func()
	SpeedUp      func() float64
	SpeedDown    func() float64
	ToggleManual func() bool
	Advance      func()
	Capture      func(player.Action)
}

// RecentRun stores info about a recently ended playback run
type RecentRun struct {
	Song     string
	Played   int
	Total    int
	Finished bool
	EndedAt  time.Time
}

// App is the TUI application for monitoring and driving playback
type App struct {
	app      *tview.Application
	song     *tview.TextView
	progress *tview.TextView
	hotkeys  *tview.TextView
	recent   *tview.TextView
	status   *tview.TextView

	// Configuration
	config Config

	// Player commands for controls
	commands Commands

	// Mutex protects shared state accessed by both the ticker goroutine
	// and the tview event loop.
	mu sync.Mutex

	// Current state (guarded by mu)
	snap player.Snapshot

	// Session stats (guarded by mu)
	sessionStart time.Time
	runsEnded    int

	// Ring buffer for recent runs (avoids allocation on every run end)
	recentBuf   [maxRecentRuns]RecentRun
	recentCount int // total runs added (recentCount % maxRecentRuns = next write index)

	// Last-rendered content for change detection
	lastSong     string
	lastProgress string
	lastHotkeys  string
	lastRecent   string

	// Cached progress bar width to stabilize change detection.
	// Updated only when GetInnerRect returns a positive value.
	lastBarWidth int

	// Context cancel function
	cancelFunc context.CancelFunc
}

// New creates a new TUI application with default config
func New() *App {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new TUI application with the given config
func NewWithConfig(cfg Config) *App {
	a := &App{
		app:          tview.NewApplication(),
		config:       cfg,
		sessionStart: time.Now(),
	}
	a.setupUI()
	return a
}

// SetCommands sets the player commands for playback controls
func (a *App) SetCommands(commands Commands) {
	a.commands = commands
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Song panel
	a.song = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.song.SetBorder(true).
		SetTitle(" Song ").
		SetTitleAlign(tview.AlignLeft)

	// Progress bar
	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.progress.SetBorder(true)

	// Hotkey bindings
	a.hotkeys = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.hotkeys.SetBorder(true).
		SetTitle(" Hotkeys ").
		SetTitleAlign(tview.AlignLeft)

	// Recent runs
	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	// Status bar
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  space:play/pause  s:stop  +/-:speed  m:mode  n:step  1-4:rebind[-]")

	// Create layout
	// Top row: song (takes most space)
	// Middle row: progress bar
	// Bottom row: hotkeys | recent runs
	// Footer: status bar

	bottomRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.hotkeys, 0, 1, false).
		AddItem(a.recent, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.song, 0, 3, false).
		AddItem(a.progress, 3, 1, false).
		AddItem(bottomRow, 8, 1, false).
		AddItem(a.status, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case ' ':
		if a.commands.PlayPause != nil {
			_ = a.commands.PlayPause()
		}
		return nil
	case 's', 'S':
		if a.commands.Stop != nil {
			a.commands.Stop()
		}
		return nil
	case '+', '=':
		if a.commands.SpeedUp != nil {
			a.commands.SpeedUp()
		}
		return nil
	case '-', '_':
		if a.commands.SpeedDown != nil {
			a.commands.SpeedDown()
		}
		return nil
	case 'm', 'M':
		if a.commands.ToggleManual != nil {
			a.commands.ToggleManual()
		}
		return nil
	case 'n', 'N':
		if a.commands.Advance != nil {
			a.commands.Advance()
		}
		return nil
	case '1', '2', '3', '4':
		if a.commands.Capture != nil {
			a.commands.Capture(player.Actions[event.Rune()-'1'])
		}
		return nil
	}
	return event
}

// Run starts the TUI, polling the snapshot getter for player state
func (a *App) Run(ctx context.Context, snapshot func() player.Snapshot) error {
	// Create cancellable context
	ctx, a.cancelFunc = context.WithCancel(ctx)

	// Start update goroutine
	go a.handleUpdates(ctx, snapshot)

	// Run application
	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// handleUpdates polls the player and refreshes the display. A single
// ticker drives all redraws to prevent queued redraw buildup. All
// shared App fields are protected by a.mu.
func (a *App) handleUpdates(ctx context.Context, snapshot func() player.Snapshot) {
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 250 * time.Millisecond
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			snap := snapshot()

			a.mu.Lock()
			// A run ended when the player dropped back to idle with
			// notes on the board.
			if a.snap.Mode != player.ModeIdle && snap.Mode == player.ModeIdle && snap.Progress > 0 {
				a.addToRecentRuns(snap)
				a.runsEnded++
			}
			a.snap = snap
			a.mu.Unlock()

			a.refresh()
		}
	}
}

// addToRecentRuns adds a finished run to the ring buffer.
// Must be called with a.mu held.
func (a *App) addToRecentRuns(snap player.Snapshot) {
	// Write into ring buffer at the current position
	idx := a.recentCount % maxRecentRuns
	a.recentBuf[idx] = RecentRun{
		Song:     snap.SongName,
		Played:   snap.Progress,
		Total:    snap.Total,
		Finished: snap.Total > 0 && snap.Progress >= snap.Total,
		EndedAt:  time.Now(),
	}
	a.recentCount++
}

// getRecentRuns returns recent runs in most-recent-first order.
// Must be called with a.mu held.
func (a *App) getRecentRuns() []RecentRun {
	n := a.recentCount
	if n > maxRecentRuns {
		n = maxRecentRuns
	}
	result := make([]RecentRun, n)
	for i := 0; i < n; i++ {
		// Walk backwards from the most recently written slot
		idx := (a.recentCount - 1 - i) % maxRecentRuns
		result[i] = a.recentBuf[idx]
	}
	return result
}

// refresh updates all UI components
func (a *App) refresh() {
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.updateSong()
		a.updateProgress()
		a.updateHotkeys()
		a.updateRecentRuns()
	})
}

// updateSong updates the song panel
func (a *App) updateSong() {
	var text string

	if a.snap.SongPath == "" {
		text = "\n\n[gray]No song selected[-]"
	} else {
		var sb strings.Builder
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(a.snap.SongName)))
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", tview.Escape(a.snap.Status)))

		// Playback state indicator
		stateIcon := "[gray]■[-]" // Stopped square
		switch a.snap.Mode {
		case player.ModePlaying:
			stateIcon = "[green]▶[-]" // Play triangle
		case player.ModePaused:
			stateIcon = "[yellow]⏸[-]" // Pause icon
		}
		sb.WriteString(fmt.Sprintf("\n%s  [aqua]%.1fx[-]", stateIcon, a.snap.Speed))
		if a.snap.ManualMode {
			sb.WriteString("  [fuchsia]manual[-]")
		}
		text = sb.String()
	}

	if text != a.lastSong {
		a.lastSong = text
		a.song.SetText(text)
	}
}

// updateProgress updates the progress bar
func (a *App) updateProgress() {
	var text string

	if a.snap.SongPath == "" || a.snap.Total == 0 {
		text = ""
	} else {
		_, _, width, _ := a.progress.GetInnerRect()
		barWidth := width - 14 // Account for note count display
		// Only update cached width when GetInnerRect returns a positive
		// value, avoiding flicker from transient zero-width during layout.
		if barWidth > 0 {
			a.lastBarWidth = barWidth
		}
		if a.lastBarWidth < 10 {
			a.lastBarWidth = 10
		}

		progressBar := buildProgressBar(a.snap.Progress, a.snap.Total, a.lastBarWidth)
		text = fmt.Sprintf("%4d %s %-4d", a.snap.Progress, progressBar, a.snap.Total)
	}

	if text != a.lastProgress {
		a.lastProgress = text
		a.progress.SetText(text)
	}
}

// updateHotkeys updates the hotkey bindings panel
func (a *App) updateHotkeys() {
	var sb strings.Builder

	for i, action := range player.Actions {
		if i > 0 {
			sb.WriteString("\n")
		}
		if a.snap.Capture.Active && a.snap.Capture.Action == action {
			sb.WriteString(fmt.Sprintf("[white]%-10s[-] [yellow]press a key...[-]", action))
			continue
		}
		key := a.snap.Bindings.Key(action)
		sb.WriteString(fmt.Sprintf("[white]%-10s[-] [aqua]%s[-]", action, tview.Escape(string(key))))
	}

	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Session: %s", formatDuration(time.Since(a.sessionStart))))

	text := sb.String()
	if text != a.lastHotkeys {
		a.lastHotkeys = text
		a.hotkeys.SetText(text)
	}
}

// updateRecentRuns updates the recent runs panel
func (a *App) updateRecentRuns() {
	var sb strings.Builder

	runs := a.getRecentRuns()
	if len(runs) == 0 {
		sb.WriteString("[gray]No runs yet[-]")
	} else {
		for i, run := range runs {
			if i > 0 {
				sb.WriteString("\n")
			}

			// Completion indicator
			if run.Finished {
				sb.WriteString("[green]✓[-] ")
			} else {
				sb.WriteString("[red]✗[-] ")
			}

			// Truncate name if too long
			name := run.Song
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			sb.WriteString(fmt.Sprintf("[white]%s[-] [gray]%d/%d[-]", tview.Escape(name), run.Played, run.Total))
		}
	}

	text := sb.String()
	if text != a.lastRecent {
		a.lastRecent = text
		a.recent.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// buildProgressBar creates a text-based progress bar over note counts
func buildProgressBar(played, total, width int) string {
	if total == 0 || width <= 0 {
		return strings.Repeat("-", width)
	}

	progress := float64(played) / float64(total)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"

	return bar
}

// formatDuration formats a duration as MM:SS or HH:MM:SS for longer durations
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
