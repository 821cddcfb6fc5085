package input

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// LibinputListener implements Listener by streaming key events from
// `libinput debug-events`, which observes every input device regardless
// of window focus. Reading /dev/input requires membership in the input
// group (or root) on most distributions.
type LibinputListener struct {
	path   string
	logger zerolog.Logger
}

// NewLibinputListener locates the libinput binary and returns a
// listener backed by it.
func NewLibinputListener(logger zerolog.Logger) (*LibinputListener, error) {
	path, err := exec.LookPath("libinput")
	if err != nil {
		return nil, fmt.Errorf("libinput not found in PATH: %w", err)
	}
	return &LibinputListener{
		path:   path,
		logger: logger.With().Str("component", "listener").Logger(),
	}, nil
}

// Run streams global key events into the provided channel until the
// context is cancelled or the libinput process dies. Sends block rather
// than drop: losing a key-up would wedge the manual-advance debounce.
func (l *LibinputListener) Run(ctx context.Context, events chan<- Event) error {
	cmd := exec.CommandContext(ctx, l.path, "debug-events", "--show-keycodes")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("libinput stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start libinput: %w", err)
	}

	l.logger.Info().Msg("Listening for global key events")

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		event, ok := parseKeyEvent(scanner.Text())
		if !ok {
			continue
		}

		select {
		case events <- event:
			l.logger.Debug().
				Str("key", string(event.Key)).
				Str("direction", event.Direction.String()).
				Msg("Key event")
		case <-ctx.Done():
			_ = cmd.Wait()
			return ctx.Err()
		}
	}

	// The pipe closed: either the context was cancelled (CommandContext
	// killed the process) or libinput died on its own.
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		l.logger.Info().Msg("Listener stopped")
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read libinput events: %w", err)
	}
	if waitErr != nil {
		return fmt.Errorf("libinput exited: %w", waitErr)
	}
	return fmt.Errorf("libinput event stream ended unexpectedly")
}

// parseKeyEvent parses one line of `libinput debug-events --show-keycodes`
// output. Key lines look like:
//
//	event4   KEYBOARD_KEY     +1.41s	KEY_Y (21) pressed
//	-event4  KEYBOARD_KEY     +2.03s	KEY_LEFTCTRL (29) released
//
// Every other line (device announcements, pointer motion, ...) is
// ignored.
func parseKeyEvent(line string) (Event, bool) {
	fields := strings.Fields(line)
	if len(fields) < 6 || fields[1] != "KEYBOARD_KEY" {
		return Event{}, false
	}

	key, ok := keyFromLibinput(fields[3])
	if !ok {
		return Event{}, false
	}

	var dir Direction
	switch fields[len(fields)-1] {
	case "pressed":
		dir = Down
	case "released":
		dir = Up
	default:
		return Event{}, false
	}

	return Event{Key: key, Direction: dir}, true
}
