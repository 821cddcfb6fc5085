package player

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/keyplay/internal/history"
	"github.com/jfmyers9/keyplay/internal/input"
	"github.com/jfmyers9/keyplay/internal/keymap"
	"github.com/jfmyers9/keyplay/pkg/sheet"
)

var (
	// ErrAlreadyPlaying is returned when a run is requested while one
	// is still active. There is never more than one playback task.
	ErrAlreadyPlaying = errors.New("player: playback already running")

	// ErrNoSong is returned when playback is requested before a song
	// has been selected.
	ErrNoSong = errors.New("player: no song selected")
)

// RunRecorder persists completed playback runs. *history.Store
// satisfies it; a nil recorder disables history.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Scheduler owns playback execution: it spawns at most one automatic
// run at a time, performs manual chord ticks, and translates notes into
// key presses through the injector.
//
// The automatic run samples the playback speed once at start and keeps
// it for the whole run. Each note is scheduled at authoredOffset/speed
// from a fixed start instant, so pausing does not stop the clock: notes
// whose slots passed while paused are replayed back-to-back, in order,
// on resume.
type Scheduler struct {
	state    *State
	injector input.Injector
	recorder RunRecorder
	logger   zerolog.Logger
	rng      *rand.Rand

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	manualMu      sync.Mutex
	manualStarted time.Time
}

// NewScheduler creates a scheduler bound to the shared control state.
func NewScheduler(state *State, injector input.Injector, recorder RunRecorder, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		state:    state,
		injector: injector,
		recorder: recorder,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Play begins a run for the selected song: an automatic playback task
// in automatic mode, or an armed manual session in manual mode.
// Returns ErrAlreadyPlaying if a run is already active.
func (s *Scheduler) Play() error {
	snap := s.state.Snapshot()
	if snap.SongPath == "" {
		return ErrNoSong
	}

	if snap.ManualMode {
		if !s.state.StartManual() {
			return ErrAlreadyPlaying
		}
		s.manualMu.Lock()
		s.manualStarted = time.Now()
		s.manualMu.Unlock()
		s.logger.Info().Str("song", snap.SongName).Msg("Manual stepping armed")
		return nil
	}

	return s.start(snap.SongPath)
}

// PauseResume toggles an active run between Playing and Paused. Idle is
// left untouched.
func (s *Scheduler) PauseResume() {
	mode := s.state.PauseResume()
	s.logger.Debug().Str("mode", mode.String()).Msg("Pause toggled")
}

// Stop ends the active run, freezing progress where it stands. Safe to
// call at any time; stopping an idle player does nothing.
func (s *Scheduler) Stop() {
	snap := s.state.Snapshot()
	stopped := s.state.StopRun()

	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		// Wake the automatic task out of any timed wait.
		cancel()
	}

	// Manual sessions have no task to observe the stop, so the record
	// is written here. Automatic tasks record their own exit.
	if stopped && snap.ManualMode {
		s.manualMu.Lock()
		started := s.manualStarted
		s.manualMu.Unlock()
		s.record(history.Run{
			Song:      snap.SongName,
			Path:      snap.SongPath,
			Manual:    true,
			Speed:     snap.Speed,
			Played:    snap.Progress,
			Total:     snap.Total,
			Outcome:   history.OutcomeStopped,
			StartedAt: started,
			EndedAt:   time.Now(),
		})
	}
}

// Wait blocks until the active automatic task, if any, has exited.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// start spawns the single automatic playback task.
func (s *Scheduler) start(path string) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrAlreadyPlaying
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go func() {
		defer func() {
			cancel()
			s.mu.Lock()
			s.cancel = nil
			s.done = nil
			s.mu.Unlock()
			close(done)
		}()
		s.run(ctx, path)
	}()

	return nil
}

// run executes one automatic playback pass over the song at path.
func (s *Scheduler) run(ctx context.Context, path string) {
	startedAt := time.Now()
	snap := s.state.Snapshot()

	song, err := sheet.Load(path)
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to load song")
		s.state.FailRun(fmt.Sprintf("Failed to load song: %v", err))
		s.record(history.Run{
			Song:      snap.SongName,
			Path:      path,
			Speed:     snap.Speed,
			Total:     snap.Total,
			Outcome:   history.OutcomeFailed,
			StartedAt: startedAt,
			EndedAt:   time.Now(),
		})
		return
	}

	// The speed in effect now holds for the entire run; adjustments
	// made while playing apply from the next run.
	speed := s.state.Speed()
	s.state.StartRun(song.Name, len(song.Notes))
	s.logger.Info().
		Str("song", song.Name).
		Int("notes", len(song.Notes)).
		Float64("speed", speed).
		Msg("Starting playback")

	start := time.Now()
	played := 0

	recordStopped := func() {
		s.logger.Info().Str("song", song.Name).Int("played", played).Msg("Playback stopped")
		s.record(history.Run{
			Song:      song.Name,
			Path:      path,
			Speed:     speed,
			Played:    played,
			Total:     len(song.Notes),
			Outcome:   history.OutcomeStopped,
			StartedAt: startedAt,
			EndedAt:   time.Now(),
		})
	}

	for i, note := range song.Notes {
		if s.interrupted(ctx) {
			recordStopped()
			return
		}

		s.state.SetProgress(i + 1)
		played = i + 1

		// Paused runs poll the mode rather than blocking on a signal,
		// so a pause can never wedge the task.
		for s.state.Mode() == ModePaused {
			select {
			case <-ctx.Done():
				recordStopped()
				return
			case <-time.After(PausePoll):
			}
		}
		if s.interrupted(ctx) {
			recordStopped()
			return
		}

		if wait := NoteTarget(note, speed) - time.Since(start); wait > 0 {
			select {
			case <-ctx.Done():
				recordStopped()
				return
			case <-time.After(wait):
			}
		}

		key, ok := keymap.Map(note.Key)
		if !ok {
			s.logger.Debug().Str("symbol", note.Key).Msg("Skipping unmapped note symbol")
			continue
		}

		s.press(ctx, key, NoteHold(song.Notes, i)+s.jitter())
		time.Sleep(NoteGap(i))
	}

	s.state.FinishRun()
	s.logger.Info().Str("song", song.Name).Msg("Song finished")
	s.record(history.Run{
		Song:      song.Name,
		Path:      path,
		Speed:     speed,
		Played:    len(song.Notes),
		Total:     len(song.Notes),
		Outcome:   history.OutcomeFinished,
		StartedAt: startedAt,
		EndedAt:   time.Now(),
	})
}

// Advance performs one manual tick: it plays the chord under the manual
// cursor (every note sharing one authored timestamp) and moves the
// cursor past it. Ticks are ignored unless manual stepping is armed and
// not paused.
func (s *Scheduler) Advance() {
	s.manualMu.Lock()
	defer s.manualMu.Unlock()

	snap := s.state.Snapshot()
	if !snap.ManualMode || snap.Mode != ModePlaying {
		return
	}

	song, err := sheet.Load(snap.SongPath)
	if err != nil {
		s.logger.Error().Err(err).Str("path", snap.SongPath).Msg("Failed to load song")
		s.state.FailRun(fmt.Sprintf("Failed to load song: %v", err))
		s.record(history.Run{
			Song:      snap.SongName,
			Path:      snap.SongPath,
			Manual:    true,
			Speed:     snap.Speed,
			Played:    snap.Progress,
			Total:     snap.Total,
			Outcome:   history.OutcomeFailed,
			StartedAt: s.manualStarted,
			EndedAt:   time.Now(),
		})
		return
	}

	total := len(song.Notes)
	idx := snap.ManualIndex
	if idx >= total {
		// The file shrank under us, or the run was already complete.
		s.state.AdvanceManual(idx, total, true)
		s.recordManualFinished(song.Name, snap, total, total)
		return
	}

	end := ChordEnd(song.Notes, idx)
	for _, note := range song.Notes[idx:end] {
		key, ok := keymap.Map(note.Key)
		if !ok {
			s.logger.Debug().Str("symbol", note.Key).Msg("Skipping unmapped note symbol")
			continue
		}
		s.press(context.Background(), key, ManualHold)
	}

	finished := end >= total
	s.state.AdvanceManual(end, total, finished)
	if finished {
		s.logger.Info().Str("song", song.Name).Msg("Song finished")
		s.recordManualFinished(song.Name, snap, end, total)
	}
}

func (s *Scheduler) recordManualFinished(name string, snap Snapshot, played, total int) {
	s.record(history.Run{
		Song:      name,
		Path:      snap.SongPath,
		Manual:    true,
		Speed:     snap.Speed,
		Played:    played,
		Total:     total,
		Outcome:   history.OutcomeFinished,
		StartedAt: s.manualStarted,
		EndedAt:   time.Now(),
	})
}

// interrupted reports whether the run should give up: its context was
// cancelled, or something forced the mode back to Idle.
func (s *Scheduler) interrupted(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return s.state.Mode() == ModeIdle
}

// press taps a key: down, hold, up. The release deliberately ignores
// the run context so that a cancelled run cannot leave a synthetic key
// stuck down.
func (s *Scheduler) press(ctx context.Context, key input.Key, hold time.Duration) {
	if err := s.injector.Inject(ctx, key, input.Down); err != nil {
		s.logger.Warn().Err(err).Str("key", string(key)).Msg("Key press failed")
		return
	}

	time.Sleep(hold)

	upCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.injector.Inject(upCtx, key, input.Up); err != nil {
		s.logger.Warn().Err(err).Str("key", string(key)).Msg("Key release failed")
	}
}

// jitter returns a uniform variance in [-HoldJitter, +HoldJitter].
func (s *Scheduler) jitter() time.Duration {
	return time.Duration(s.rng.Int63n(int64(2*HoldJitter)+1)) - HoldJitter
}

func (s *Scheduler) record(run history.Run) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.recorder.Record(ctx, run); err != nil {
		s.logger.Warn().Err(err).Str("song", run.Song).Msg("Failed to record run history")
	}
}
