package player

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/keyplay/internal/history"
	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/pkg/sheet"
)

// historyRetention bounds how long finished runs are kept around.
const historyRetention = 90 * 24 * time.Hour

// Config holds player configuration
type Config struct {
	HistoryDB   string  // Path to the run history database
	SessionFile string  // Path to session persistence file
	Speed       float64 // Initial playback speed
	Manual      bool    // Start in manual stepping mode
}

// Player coordinates the global key listener, the hotkey router and the
// playback scheduler around one shared control state. Its command
// methods are the surface the TUI and the control socket drive.
type Player struct {
	config    Config
	state     *State
	scheduler *Scheduler
	router    *Router
	listener  input.Listener
	store     *history.Store
	logger    zerolog.Logger

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New creates a new Player instance
func New(cfg Config, listener input.Listener, injector input.Injector, bindings Bindings, bindingStore BindingStore, logger zerolog.Logger) (*Player, error) {
	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	state := NewState(bindings)
	state.SetSpeed(cfg.Speed)
	state.SetManualMode(cfg.Manual)

	scheduler := NewScheduler(state, injector, store, logger)
	router := NewRouter(state, scheduler, bindingStore, logger)

	return &Player{
		config:     cfg,
		state:      state,
		scheduler:  scheduler,
		router:     router,
		listener:   listener,
		store:      store,
		logger:     logger.With().Str("component", "player").Logger(),
		shutdownCh: make(chan struct{}),
	}, nil
}

// Run starts the player and blocks until a shutdown signal is received
// or RequestShutdown is called.
func (p *Player) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
			p.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		case <-p.shutdownCh:
			p.logger.Info().Msg("Shutdown requested, stopping player")
		}
		cancel()

		<-sigChan
		p.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := p.run(ctx); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// run is the main player loop
func (p *Player) run(ctx context.Context) error {
	p.logger.Info().Msg("Starting player")

	var wg sync.WaitGroup
	events := make(chan input.Event, 16)

	// Start global key listener
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.listener.Run(ctx, events); err != nil && err != context.Canceled {
			// Hotkeys are gone but the TUI and the control socket keep
			// working, so the player stays up.
			p.logger.Error().Err(err).Msg("Key listener error")
		}
	}()

	// Start hotkey router
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.router.Run(ctx, events); err != nil && err != context.Canceled {
			p.logger.Error().Err(err).Msg("Router error")
		}
	}()

	wg.Wait()

	// Halt any active run so no synthetic keys trail the shutdown.
	p.scheduler.Stop()
	p.scheduler.Wait()

	p.logger.Info().Msg("Player stopped")
	return nil
}

// RequestShutdown asks a running Player to exit gracefully. Safe to
// call from any goroutine, any number of times.
func (p *Player) RequestShutdown() {
	p.shutdownOnce.Do(func() {
		close(p.shutdownCh)
	})
}

// Shutdown releases the player's resources and persists the session.
// Call it after Run has returned.
func (p *Player) Shutdown() error {
	p.logger.Info().Msg("Shutting down player")

	ctx := context.Background()

	if _, err := p.store.Cleanup(ctx, historyRetention); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to cleanup run history")
	}

	if err := p.store.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}

	snap := p.state.Snapshot()
	session := Session{
		SongPath: snap.SongPath,
		Speed:    snap.Speed,
		Manual:   snap.ManualMode,
	}
	if err := SaveSession(p.config.SessionFile, session); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save session")
	}

	return nil
}

// Snapshot returns a copy of the current control state.
func (p *Player) Snapshot() Snapshot {
	return p.state.Snapshot()
}

// Select loads the song at path and makes it the current selection,
// stopping any active run first. On failure the selection is unchanged
// and the error is surfaced in the status line.
func (p *Player) Select(path string) error {
	song, err := sheet.Load(path)
	if err != nil {
		p.state.SetStatus(fmt.Sprintf("Failed to load song: %v", err))
		return err
	}

	p.scheduler.Stop()
	p.scheduler.Wait()

	p.state.SelectSong(path, song.Name, len(song.Notes))
	p.logger.Info().
		Str("song", song.Name).
		Str("path", path).
		Int("notes", len(song.Notes)).
		Msg("Song selected")
	return nil
}

// PlayPause starts a run when idle, otherwise toggles pause.
func (p *Player) PlayPause() error {
	if p.state.Mode() == ModeIdle {
		return p.scheduler.Play()
	}
	p.scheduler.PauseResume()
	return nil
}

// Stop ends the active run, freezing progress where it stands.
func (p *Player) Stop() {
	p.scheduler.Stop()
}

// Advance performs one manual tick.
func (p *Player) Advance() {
	p.scheduler.Advance()
}

// SpeedUp raises the playback speed one step and returns the new value.
func (p *Player) SpeedUp() float64 {
	return p.state.AdjustSpeed(SpeedStep)
}

// SpeedDown lowers the playback speed one step and returns the new value.
func (p *Player) SpeedDown() float64 {
	return p.state.AdjustSpeed(-SpeedStep)
}

// SetManual switches between automatic and manual stepping, stopping
// any active run first.
func (p *Player) SetManual(manual bool) {
	p.scheduler.Stop()
	p.scheduler.Wait()
	p.state.SetManualMode(manual)
	p.logger.Info().Bool("manual", manual).Msg("Playback mode changed")
}

// ToggleManual flips the stepping mode and returns the new value.
func (p *Player) ToggleManual() bool {
	manual := !p.state.Snapshot().ManualMode
	p.SetManual(manual)
	return manual
}

// RequestCapture arms hotkey capture: the next valid global key press
// will be bound to action.
func (p *Player) RequestCapture(action Action) {
	p.state.BeginCapture(action)
	p.logger.Info().Str("action", action.String()).Msg("Hotkey capture armed")
}
