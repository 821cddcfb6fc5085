package input

import (
	"fmt"
	"strings"
)

// libinputKeys maps libinput KEY_* names to keysym names. Letters,
// digits and function keys are filled in by init; this literal covers
// the punctuation and special keys the player cares about.
var libinputKeys = map[string]Key{
	"KEY_SPACE":      KeySpace,
	"KEY_ESC":        KeyEscape,
	"KEY_MINUS":      KeyMinus,
	"KEY_EQUAL":      KeyEqual,
	"KEY_SEMICOLON":  KeySemicolon,
	"KEY_APOSTROPHE": KeyApostrophe,
	"KEY_COMMA":      KeyComma,
	"KEY_DOT":        KeyPeriod,
	"KEY_SLASH":      KeySlash,
	"KEY_BACKSLASH":  "backslash",
	"KEY_GRAVE":      "grave",
	"KEY_LEFTBRACE":  "bracketleft",
	"KEY_RIGHTBRACE": "bracketright",
	"KEY_ENTER":      "Return",
	"KEY_BACKSPACE":  "BackSpace",
	"KEY_TAB":        KeyTab,
	"KEY_CAPSLOCK":   KeyCapsLock,
	"KEY_LEFTSHIFT":  "Shift_L",
	"KEY_RIGHTSHIFT": "Shift_R",
	"KEY_LEFTCTRL":   "Control_L",
	"KEY_RIGHTCTRL":  "Control_R",
	"KEY_LEFTALT":    "Alt_L",
	"KEY_RIGHTALT":   "Alt_R",
	"KEY_LEFTMETA":   "Super_L",
	"KEY_RIGHTMETA":  "Super_R",
	"KEY_UP":         "Up",
	"KEY_DOWN":       "Down",
	"KEY_LEFT":       "Left",
	"KEY_RIGHT":      "Right",
	"KEY_HOME":       "Home",
	"KEY_END":        "End",
	"KEY_PAGEUP":     "Prior",
	"KEY_PAGEDOWN":   "Next",
	"KEY_INSERT":     "Insert",
	"KEY_DELETE":     "Delete",
}

// reservedKeys holds keys that can never be captured as bindings.
// Function keys are added by init.
var reservedKeys = map[Key]struct{}{
	KeyTab:      {},
	KeyCapsLock: {},
	"Alt_L":     {},
	"Alt_R":     {},
	"Control_L": {},
	"Control_R": {},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		libinputKeys["KEY_"+strings.ToUpper(string(c))] = Key(string(c))
	}
	for c := '0'; c <= '9'; c++ {
		libinputKeys["KEY_"+string(c)] = Key(string(c))
	}
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("F%d", i)
		libinputKeys["KEY_"+name] = Key(name)
		reservedKeys[Key(name)] = struct{}{}
	}
}

// keyFromLibinput resolves a libinput KEY_* name to a Key. Names absent
// from the table fall back to the trimmed lowercase form so that any
// physical key remains bindable, even if it cannot be injected.
func keyFromLibinput(name string) (Key, bool) {
	if key, ok := libinputKeys[name]; ok {
		return key, true
	}
	if rest, ok := strings.CutPrefix(name, "KEY_"); ok && rest != "" {
		return Key(strings.ToLower(rest)), true
	}
	return "", false
}
