package player

import (
	"fmt"
	"sync"

	"github.com/jfmyers9/keyplay/internal/input"
)

// Mode represents the playback mode of the player.
type Mode int

const (
	ModeIdle    Mode = iota // nothing playing
	ModePlaying             // a run is active (automatic task or armed manual stepping)
	ModePaused              // a run is suspended; only reachable from ModePlaying
)

// String returns a human-readable representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePlaying:
		return "playing"
	case ModePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Action is one of the four hotkey-controllable player commands.
type Action int

const (
	ActionPlayPause Action = iota
	ActionStop
	ActionSpeedUp
	ActionSpeedDown
)

// String returns the canonical name of the Action, as used in the
// hotkey configuration file and on the command line.
func (a Action) String() string {
	switch a {
	case ActionPlayPause:
		return "play-pause"
	case ActionStop:
		return "stop"
	case ActionSpeedUp:
		return "speed-up"
	case ActionSpeedDown:
		return "speed-down"
	default:
		return "unknown"
	}
}

// Actions lists every bindable action in display order.
var Actions = []Action{ActionPlayPause, ActionStop, ActionSpeedUp, ActionSpeedDown}

// ParseAction resolves an action name as printed by Action.String.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q (valid: play-pause, stop, speed-up, speed-down)", name)
}

// Speed limits for playback. Speed divides each note's authored offset,
// so 2.0 plays twice as fast.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	SpeedStep    = 0.1
	DefaultSpeed = 1.0
)

// Capture is the hotkey-rebind sub-state: when Active, the next valid
// global key press is recorded as the binding for Action instead of
// being dispatched.
type Capture struct {
	Active bool
	Action Action
}

// Snapshot is a consistent copy of the player's control state, taken
// under the state lock. Use it for rendering and decision making; never
// cache one across user-visible time.
type Snapshot struct {
	SongPath    string
	SongName    string
	Speed       float64
	Mode        Mode
	ManualMode  bool
	ManualIndex int
	Progress    int
	Total       int
	Status      string
	Capture     Capture
	Bindings    Bindings
}

// State is the single shared control record. The hotkey router, the
// playback scheduler, the control socket and the TUI all read and write
// it through these methods; every multi-field transition happens inside
// one lock acquisition so observers never see torn updates.
//
// Invariants maintained here: progress <= total, manualIndex <= total,
// speed stays within [MinSpeed, MaxSpeed], and ModePaused is only ever
// entered from ModePlaying.
type State struct {
	mu sync.RWMutex

	songPath    string
	songName    string
	speed       float64
	mode        Mode
	manualMode  bool
	manualIndex int
	progress    int
	total       int
	status      string
	capture     Capture
	bindings    Bindings
}

// NewState creates the control state with defaults and the given
// (already loaded) hotkey bindings.
func NewState(bindings Bindings) *State {
	return &State{
		speed:    DefaultSpeed,
		status:   "Ready",
		bindings: bindings,
	}
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		SongPath:    s.songPath,
		SongName:    s.songName,
		Speed:       s.speed,
		Mode:        s.mode,
		ManualMode:  s.manualMode,
		ManualIndex: s.manualIndex,
		Progress:    s.progress,
		Total:       s.total,
		Status:      s.status,
		Capture:     s.capture,
		Bindings:    s.bindings,
	}
}

// Mode returns the current playback mode. Cheaper than Snapshot for the
// scheduler's per-note and pause-poll checks.
func (s *State) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Speed returns the current playback speed.
func (s *State) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

// SetSpeed sets the playback speed, clamped to [MinSpeed, MaxSpeed],
// and returns the value actually stored.
func (s *State) SetSpeed(speed float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speed = clampSpeed(speed)
	return s.speed
}

// AdjustSpeed applies a relative speed change, clamped to
// [MinSpeed, MaxSpeed], and returns the new value. An active automatic
// run keeps the speed it sampled at start; the new value applies from
// the next run.
func (s *State) AdjustSpeed(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.speed = clampSpeed(s.speed + delta)
	return s.speed
}

func clampSpeed(v float64) float64 {
	if v < MinSpeed {
		return MinSpeed
	}
	if v > MaxSpeed {
		return MaxSpeed
	}
	return v
}

// SelectSong records a newly selected song and resets run progress.
// noteCount is surfaced for display; playback re-reads the file when a
// run starts, so it may differ by then.
func (s *State) SelectSong(path, name string, noteCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.songPath = path
	s.songName = name
	s.total = noteCount
	s.progress = 0
	s.manualIndex = 0
	s.status = "Selected: " + name
}

// SetStatus replaces the status line.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// SetManualMode switches between automatic and manual stepping. The
// caller is responsible for stopping any active run first.
func (s *State) SetManualMode(manual bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualMode = manual
}

// StartRun transitions into an active automatic run: the song has been
// loaded, progress restarts at zero and the mode becomes Playing.
func (s *State) StartRun(name string, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.songName = name
	s.total = total
	s.progress = 0
	s.mode = ModePlaying
	s.status = "Playing..."
}

// StartManual arms manual stepping: from Idle, the mode becomes Playing
// with progress and the manual cursor reset. Returns false if a run is
// already active.
func (s *State) StartManual() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeIdle {
		return false
	}
	s.mode = ModePlaying
	s.progress = 0
	s.manualIndex = 0
	s.status = "Playing (manual)..."
	return true
}

// SetProgress records how many notes the automatic run has processed.
func (s *State) SetProgress(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > s.total {
		n = s.total
	}
	s.progress = n
}

// PauseResume toggles between Playing and Paused and returns the
// resulting mode. Idle is returned unchanged; pausing never starts a
// run.
func (s *State) PauseResume() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.mode {
	case ModePlaying:
		s.mode = ModePaused
		s.status = "Paused"
	case ModePaused:
		s.mode = ModePlaying
		if s.manualMode {
			s.status = "Playing (manual)..."
		} else {
			s.status = "Playing..."
		}
	}
	return s.mode
}

// StopRun forces the mode back to Idle, freezing progress at its
// current value. Returns true if a run was actually stopped; stopping
// while already Idle changes nothing, keeping stop idempotent.
func (s *State) StopRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeIdle {
		return false
	}
	s.mode = ModeIdle
	s.status = "Stopped"
	return true
}

// FinishRun marks the natural end of a run.
func (s *State) FinishRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeIdle
	s.progress = s.total
	s.status = "Song finished!"
}

// FailRun aborts a run with a descriptive status. The failure is
// surfaced as status text only; the player never terminates on a bad
// song file.
func (s *State) FailRun(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeIdle
	s.status = status
}

// AdvanceManual records the outcome of one manual tick: the cursor
// moved past a chord (or was found already at the end), and the freshly
// re-read song may have changed the note count.
func (s *State) AdvanceManual(newIndex, total int, finished bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newIndex > total {
		newIndex = total
	}
	s.total = total
	s.manualIndex = newIndex
	s.progress = newIndex
	if finished {
		s.mode = ModeIdle
		s.status = "Song finished!"
	}
}

// BeginCapture suspends normal hotkey dispatch until the next valid key
// press, which will be bound to action.
func (s *State) BeginCapture(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.capture = Capture{Active: true, Action: action}
	s.status = fmt.Sprintf("Press a key to bind %s...", action)
}

// CompleteCapture assigns key to the awaited action and leaves capture
// mode. Returns false if no capture was active.
func (s *State) CompleteCapture(key input.Key) (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capture.Active {
		return 0, false
	}
	action := s.capture.Action
	s.bindings.Set(action, key)
	s.capture = Capture{}
	s.status = fmt.Sprintf("Bound %s to %q", action, key)
	return action, true
}

// Bindings returns a copy of the current hotkey bindings.
func (s *State) Bindings() Bindings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindings
}
