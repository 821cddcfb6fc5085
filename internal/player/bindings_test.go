package player

import (
	"testing"

	"github.com/jfmyers9/keyplay/internal/input"
)

func TestDefaultBindings(t *testing.T) {
	b := DefaultBindings()

	tests := []struct {
		action Action
		want   input.Key
	}{
		{ActionPlayPause, input.KeySpace},
		{ActionStop, input.KeyEscape},
		{ActionSpeedUp, input.KeyEqual},
		{ActionSpeedDown, input.KeyMinus},
	}

	for _, tt := range tests {
		if got := b.Key(tt.action); got != tt.want {
			t.Errorf("default %s = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestBindingsSet(t *testing.T) {
	b := DefaultBindings()

	for _, action := range Actions {
		key := input.Key("f")
		b.Set(action, key)
		if got := b.Key(action); got != key {
			t.Errorf("Set(%s, %q) not reflected, got %q", action, key, got)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(DefaultBindings())

	if action, ok := r.Lookup(input.KeySpace); !ok || action != ActionPlayPause {
		t.Errorf("Lookup(space) = %v, %v; want play-pause", action, ok)
	}
	if action, ok := r.Lookup(input.KeyEscape); !ok || action != ActionStop {
		t.Errorf("Lookup(Escape) = %v, %v; want stop", action, ok)
	}
	if _, ok := r.Lookup(input.Key("z")); ok {
		t.Error("expected unbound key to miss")
	}
}

func TestRegistryTracksRebinding(t *testing.T) {
	b := DefaultBindings()
	b.Set(ActionStop, input.Key("g"))

	r := NewRegistry(b)
	if action, ok := r.Lookup(input.Key("g")); !ok || action != ActionStop {
		t.Errorf("Lookup(g) = %v, %v; want stop", action, ok)
	}
	if _, ok := r.Lookup(input.KeyEscape); ok {
		t.Error("expected old stop key to be unbound")
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     input.Key
		wantErr bool
	}{
		{"plain letter", input.Key("g"), false},
		{"named key", input.KeySpace, false},
		{"empty", input.Key(""), true},
		{"reserved function key", input.Key("F5"), true},
		{"reserved modifier", input.Key("Alt_L"), true},
		{"reserved tab", input.KeyTab, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
