// Package input defines the key event model and the two OS capabilities
// the player consumes: a global key event stream and synthetic key
// injection. Both are expressed as small interfaces so the player core
// never depends on a concrete tool.
package input

import (
	"context"
)

// Key identifies a physical key by its X keysym name ("space", "Escape",
// "semicolon", "F1", ...). Keysym names are used directly as injection
// arguments, so a Key is both the canonical identity for binding lookups
// and the wire form for the injector.
type Key string

// Direction is the half of a key event: press or release.
type Direction int

const (
	Down Direction = iota // key press
	Up                    // key release
)

// String returns a human-readable representation of the Direction.
func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// Event is one observed or injected key transition.
type Event struct {
	Key       Key
	Direction Direction
}

// Commonly referenced keys. Letter and digit keys are spelled directly
// as Key("y") etc. rather than enumerated here.
const (
	KeySpace      Key = "space"
	KeyEscape     Key = "Escape"
	KeyEqual      Key = "equal"
	KeyMinus      Key = "minus"
	KeySemicolon  Key = "semicolon"
	KeyApostrophe Key = "apostrophe"
	KeyComma      Key = "comma"
	KeyPeriod     Key = "period"
	KeySlash      Key = "slash"
	KeyTab        Key = "Tab"
	KeyCapsLock   Key = "Caps_Lock"
)

// Reserved reports whether key may never be assigned as a hotkey binding.
// Function keys, modifiers, Tab and CapsLock are reserved: capturing one
// of them would make normal typing fire player commands.
func Reserved(key Key) bool {
	_, ok := reservedKeys[key]
	return ok
}

// Injector emits synthetic key transitions to the operating system.
// Injection is synchronous; callers decide how long to hold a key by
// spacing the Down and Up calls.
type Injector interface {
	Inject(ctx context.Context, key Key, dir Direction) error
}

// Listener produces the system-wide key event stream, regardless of
// which window has focus. Run blocks until the context is cancelled or
// the underlying source fails; events are delivered in order.
type Listener interface {
	Run(ctx context.Context, events chan<- Event) error
}
