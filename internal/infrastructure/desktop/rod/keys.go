package rod

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod/lib/input"
)

var namedKeys = map[string]input.Key{
	"ctrl":       input.ControlLeft,
	"control":    input.ControlLeft,
	"shift":      input.ShiftLeft,
	"alt":        input.AltLeft,
	"option":     input.AltLeft,
	"cmd":        input.MetaLeft,
	"command":    input.MetaLeft,
	"meta":       input.MetaLeft,
	"win":        input.MetaLeft,
	"enter":      input.Enter,
	"return":     input.Enter,
	"tab":        input.Tab,
	"esc":        input.Escape,
	"escape":     input.Escape,
	"space":      input.Space,
	"backspace":  input.Backspace,
	"delete":     input.Delete,
	"home":       input.Home,
	"end":        input.End,
	"pageup":     input.PageUp,
	"pagedown":   input.PageDown,
	"up":         input.ArrowUp,
	"down":       input.ArrowDown,
	"left":       input.ArrowLeft,
	"right":      input.ArrowRight,
	"arrowup":    input.ArrowUp,
	"arrowdown":  input.ArrowDown,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"f1":         input.F1,
	"f2":         input.F2,
	"f3":         input.F3,
	"f4":         input.F4,
	"f5":         input.F5,
	"f6":         input.F6,
	"f7":         input.F7,
	"f8":         input.F8,
	"f9":         input.F9,
	"f10":        input.F10,
	"f11":        input.F11,
	"f12":        input.F12,
}

// resolveKeys maps key names such as "ctrl", "Enter" or "c" to CDP keys.
func resolveKeys(names []string) ([]input.Key, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no key given")
	}

	keys := make([]input.Key, 0, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if k, ok := namedKeys[n]; ok {
			keys = append(keys, k)
			continue
		}
		if len(n) == 1 && n[0] >= ' ' && n[0] <= '~' {
			keys = append(keys, input.Key(n[0]))
			continue
		}
		return nil, fmt.Errorf("unsupported key %q", name)
	}
	return keys, nil
}
