package termui

// Key is one decoded keypress.
type Key struct {
	Code KeyCode
	Rune rune
}

// KeyCode classifies a keypress.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyInterrupt
	KeyEscape
)

// DecodeKeys splits raw terminal input into keys. Arrow keys arrive as
// ESC [ A..D or ESC O A..D. Unknown escape sequences are dropped.
func DecodeKeys(buf []byte) []Key {
	var keys []Key
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch {
		case b == 0x03:
			keys = append(keys, Key{Code: KeyInterrupt})
		case b == 0x1b:
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				if code, ok := arrow(buf[i+2]); ok {
					keys = append(keys, Key{Code: code})
				}
				i += 2
				continue
			}
			if i+1 == len(buf) {
				keys = append(keys, Key{Code: KeyEscape})
			}
		case b >= 0x20 && b < 0x7f:
			keys = append(keys, Key{Code: KeyRune, Rune: rune(b)})
		}
	}
	return keys
}

func arrow(b byte) (KeyCode, bool) {
	switch b {
	case 'A':
		return KeyUp, true
	case 'B':
		return KeyDown, true
	case 'C':
		return KeyRight, true
	case 'D':
		return KeyLeft, true
	}
	return 0, false
}
