package player

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/keyplay/internal/input"
)

// hotkeyCooldown suppresses re-triggers from key autorepeat and from
// event sources that report duplicates.
const hotkeyCooldown = 200 * time.Millisecond

// advanceKeys are the keys that perform a manual tick while manual
// stepping is armed. They take priority over hotkey bindings in that
// state.
var advanceKeys = map[input.Key]bool{
	input.KeySemicolon:  true,
	input.KeyApostrophe: true,
}

// Controller is the playback surface the router drives. *Scheduler
// implements it.
type Controller interface {
	Play() error
	PauseResume()
	Stop()
	Advance()
}

// Router turns the global key event stream into player commands. All
// handling happens on the Run goroutine, so its bookkeeping needs no
// locking; shared state is only touched through State's methods.
type Router struct {
	state  *State
	ctrl   Controller
	store  BindingStore
	logger zerolog.Logger

	registry    Registry
	cooldown    time.Duration
	lastTrigger time.Time
	pressed     map[input.Key]bool
}

// NewRouter creates a router over the shared state's current bindings.
func NewRouter(state *State, ctrl Controller, store BindingStore, logger zerolog.Logger) *Router {
	return &Router{
		state:    state,
		ctrl:     ctrl,
		store:    store,
		logger:   logger.With().Str("component", "router").Logger(),
		registry: NewRegistry(state.Bindings()),
		cooldown: hotkeyCooldown,
		pressed:  make(map[input.Key]bool),
	}
}

// Run consumes key events until ctx is cancelled or the channel closes.
func (r *Router) Run(ctx context.Context, events <-chan input.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			r.handle(ev)
		}
	}
}

func (r *Router) handle(ev input.Event) {
	// Releases clear the held-key bookkeeping even when gating would
	// otherwise drop the event; a release lost to a gating change must
	// not wedge the advance debounce.
	if ev.Direction == input.Up {
		delete(r.pressed, ev.Key)
		return
	}

	snap := r.state.Snapshot()

	// Global keys are ignored until a song is selected and playback has
	// been engaged at least once. This keeps ordinary typing from
	// steering a player nobody has started.
	if snap.SongPath == "" || (snap.Mode == ModeIdle && snap.Progress == 0) {
		return
	}

	// An armed capture consumes the next valid press outright.
	if snap.Capture.Active {
		if input.Reserved(ev.Key) {
			r.logger.Debug().Str("key", string(ev.Key)).Msg("Ignoring reserved key during capture")
			return
		}
		action, ok := r.state.CompleteCapture(ev.Key)
		if !ok {
			return
		}
		r.registry = NewRegistry(r.state.Bindings())
		r.logger.Info().Str("action", action.String()).Str("key", string(ev.Key)).Msg("Hotkey rebound")
		if r.store != nil {
			if err := r.store.Save(r.state.Bindings()); err != nil {
				r.logger.Error().Err(err).Msg("Failed to persist hotkey bindings")
			}
		}
		return
	}

	// Manual ticks fire on the press edge only: a held advance key does
	// nothing further until it is released.
	if snap.ManualMode && snap.Mode == ModePlaying && advanceKeys[ev.Key] {
		if r.pressed[ev.Key] {
			return
		}
		r.pressed[ev.Key] = true
		r.ctrl.Advance()
		return
	}

	action, ok := r.registry.Lookup(ev.Key)
	if !ok {
		return
	}

	if time.Since(r.lastTrigger) < r.cooldown {
		r.logger.Debug().Str("action", action.String()).Msg("Hotkey suppressed by cooldown")
		return
	}
	r.lastTrigger = time.Now()

	r.dispatch(action, snap)
}

func (r *Router) dispatch(action Action, snap Snapshot) {
	r.logger.Info().Str("action", action.String()).Msg("Hotkey triggered")

	switch action {
	case ActionPlayPause:
		if snap.Mode == ModeIdle {
			if err := r.ctrl.Play(); err != nil && !errors.Is(err, ErrAlreadyPlaying) {
				r.logger.Warn().Err(err).Msg("Failed to start playback")
			}
		} else {
			r.ctrl.PauseResume()
		}
	case ActionStop:
		r.ctrl.Stop()
	case ActionSpeedUp:
		speed := r.state.AdjustSpeed(SpeedStep)
		r.logger.Debug().Float64("speed", speed).Msg("Speed adjusted")
	case ActionSpeedDown:
		speed := r.state.AdjustSpeed(-SpeedStep)
		r.logger.Debug().Float64("speed", speed).Msg("Speed adjusted")
	}
}
