package input

import (
	"context"
	"fmt"
	"os/exec"
)

// XdotoolInjector implements Injector by shelling out to xdotool, which
// emits synthetic X11 key events system-wide.
type XdotoolInjector struct {
	path string
}

// NewXdotoolInjector locates the xdotool binary and returns an injector
// backed by it.
func NewXdotoolInjector() (*XdotoolInjector, error) {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return nil, fmt.Errorf("xdotool not found in PATH: %w", err)
	}
	return &XdotoolInjector{path: path}, nil
}

// Inject emits one synthetic key transition.
func (c *XdotoolInjector) Inject(ctx context.Context, key Key, dir Direction) error {
	args := injectArgs(key, dir)
	cmd := exec.CommandContext(ctx, c.path, args...)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return fmt.Errorf("xdotool %s %s: %s", args[0], key, exitErr.Stderr)
		}
		return fmt.Errorf("xdotool %s %s: %w", args[0], key, err)
	}
	return nil
}

// injectArgs builds the xdotool argument list for one key transition.
// Keysym names pass through unchanged; xdotool accepts them directly.
func injectArgs(key Key, dir Direction) []string {
	sub := "keydown"
	if dir == Up {
		sub = "keyup"
	}
	return []string{sub, string(key)}
}
