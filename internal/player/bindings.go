package player

import (
	"fmt"

	"github.com/jfmyers9/keyplay/internal/input"
)

// Bindings maps each player action to the global key that triggers it.
// The zero value is not usable; start from DefaultBindings.
type Bindings struct {
	PlayPause input.Key
	Stop      input.Key
	SpeedUp   input.Key
	SpeedDown input.Key
}

// DefaultBindings returns the stock hotkey layout.
func DefaultBindings() Bindings {
	return Bindings{
		PlayPause: input.KeySpace,
		Stop:      input.KeyEscape,
		SpeedUp:   input.KeyEqual,
		SpeedDown: input.KeyMinus,
	}
}

// Key returns the key currently bound to action.
func (b Bindings) Key(action Action) input.Key {
	switch action {
	case ActionPlayPause:
		return b.PlayPause
	case ActionStop:
		return b.Stop
	case ActionSpeedUp:
		return b.SpeedUp
	case ActionSpeedDown:
		return b.SpeedDown
	default:
		return ""
	}
}

// Set assigns key to action.
func (b *Bindings) Set(action Action, key input.Key) {
	switch action {
	case ActionPlayPause:
		b.PlayPause = key
	case ActionStop:
		b.Stop = key
	case ActionSpeedUp:
		b.SpeedUp = key
	case ActionSpeedDown:
		b.SpeedDown = key
	}
}

// ValidateKey reports whether key may be bound to an action. Reserved
// keys stay free for the capture workflow and for applications the
// player types into.
func ValidateKey(key input.Key) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if input.Reserved(key) {
		return fmt.Errorf("key %q is reserved and cannot be bound", key)
	}
	return nil
}

// Registry resolves a pressed key to its bound action with a single map
// lookup. Rebuild it whenever the bindings change; it is not safe for
// concurrent mutation.
type Registry map[input.Key]Action

// NewRegistry indexes the given bindings by key. If two actions share a
// key, the later action in declaration order wins; the configuration
// loader prevents that from happening in practice.
func NewRegistry(b Bindings) Registry {
	r := make(Registry, len(Actions))
	for _, action := range Actions {
		if key := b.Key(action); key != "" {
			r[key] = action
		}
	}
	return r
}

// Lookup returns the action bound to key, if any.
func (r Registry) Lookup(key input.Key) (Action, bool) {
	action, ok := r[key]
	return action, ok
}

// BindingStore persists hotkey bindings so captures survive restarts.
type BindingStore interface {
	Save(Bindings) error
}
