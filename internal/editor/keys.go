package editor

import "strings"

// Key names a key on the keyboard. Letters are lowercase.
type Key string

const (
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyH      Key = "h"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyO      Key = "o"
	KeyR      Key = "r"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyEscape Key = "escape"
	KeyEnter  Key = "enter"
	KeyTab    Key = "tab"
	KeyDelete Key = "delete"
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
)

// Keypress is a key with its modifiers.
type Keypress struct {
	Key   Key  `json:"key"`
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
}

// ParseKeypress reads the compact form used on the command line and in
// scripts: modifiers joined with "+", e.g. "ctrl+r", "shift+o" or "j". An
// uppercase letter implies shift.
func ParseKeypress(s string) Keypress {
	var kp Keypress
	parts := strings.Split(s, "+")
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "shift":
			kp.Shift = true
		case "ctrl":
			kp.Ctrl = true
		}
	}
	key := parts[len(parts)-1]
	if len(key) == 1 && strings.ToUpper(key) == key && strings.ToLower(key) != key {
		kp.Shift = true
	}
	kp.Key = Key(strings.ToLower(key))
	return kp
}

func (kp Keypress) String() string {
	var b strings.Builder
	if kp.Ctrl {
		b.WriteString("ctrl+")
	}
	if kp.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(string(kp.Key))
	return b.String()
}
