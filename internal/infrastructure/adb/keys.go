package adb

import "strings"

var keycodes = map[string]string{
	"home":        "KEYCODE_HOME",
	"back":        "KEYCODE_BACK",
	"enter":       "KEYCODE_ENTER",
	"return":      "KEYCODE_ENTER",
	"backspace":   "KEYCODE_DEL",
	"delete":      "KEYCODE_FORWARD_DEL",
	"del":         "KEYCODE_DEL",
	"tab":         "KEYCODE_TAB",
	"escape":      "KEYCODE_ESCAPE",
	"esc":         "KEYCODE_ESCAPE",
	"space":       "KEYCODE_SPACE",
	"up":          "KEYCODE_DPAD_UP",
	"down":        "KEYCODE_DPAD_DOWN",
	"left":        "KEYCODE_DPAD_LEFT",
	"right":       "KEYCODE_DPAD_RIGHT",
	"volume_up":   "KEYCODE_VOLUME_UP",
	"volumeup":    "KEYCODE_VOLUME_UP",
	"volume_down": "KEYCODE_VOLUME_DOWN",
	"volumedown":  "KEYCODE_VOLUME_DOWN",
	"power":       "KEYCODE_POWER",
	"menu":        "KEYCODE_MENU",
	"app_switch":  "KEYCODE_APP_SWITCH",
	"recent":      "KEYCODE_APP_SWITCH",
	"search":      "KEYCODE_SEARCH",
}

// keycode resolves a key name as written by the model. Unknown names are
// passed through upper-cased so raw KEYCODE_* values still work.
func keycode(name string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(name))
	if k == "" {
		return "", false
	}
	if code, ok := keycodes[k]; ok {
		return code, true
	}
	if strings.HasPrefix(k, "keycode_") {
		return strings.ToUpper(k), true
	}
	return "", false
}

// textSegment is either printable text or a single key event.
type textSegment struct {
	text string
	key  string
}

// splitText breaks content at newlines and tabs. CRLF and lone CR count as a
// newline; other control characters are dropped.
func splitText(content string) []textSegment {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var (
		segs []textSegment
		b    strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			segs = append(segs, textSegment{text: b.String()})
			b.Reset()
		}
	}
	for _, r := range content {
		switch {
		case r == '\n' || r == '\r':
			flush()
			segs = append(segs, textSegment{key: "KEYCODE_ENTER"})
		case r == '\t':
			flush()
			segs = append(segs, textSegment{key: "KEYCODE_TAB"})
		case r < 0x20 || r == 0x7f:
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return segs
}

// needsKeyboard reports text that `input text` cannot type literally: non-ASCII
// runes, and '%' which it reads as an escape.
func needsKeyboard(s string) bool {
	return !isASCII(s) || strings.ContainsRune(s, '%')
}

// escapeText prepares text for `input text`, which splits on spaces and is
// passed through the device shell. Text must not contain control characters
// or '%'.
func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ':
			b.WriteString("%s")
		case '\'', '"', '\\', '&', '|', '<', '>', ';', '(', ')', '$', '`', '*', '?', '#', '~', '!', '[', ']', '{', '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7e {
			return false
		}
	}
	return true
}
