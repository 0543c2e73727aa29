package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/autoplay/internal/input/key"
)

// convertKey maps a tcell key event to the physical keys it implies,
// modifiers first. Events with no physical equivalent return nil.
func convertKey(ev *tcell.EventKey) []key.Key {
	var keys []key.Key
	mods := ev.Modifiers()
	if mods&tcell.ModAlt != 0 {
		keys = append(keys, key.KeyAltLeft)
	}
	if mods&tcell.ModMeta != 0 {
		keys = append(keys, key.KeySuperLeft)
	}

	k := ev.Key()
	if k == tcell.KeyRune {
		main, shifted := convertRune(ev.Rune())
		if main == key.KeyNone {
			return nil
		}
		if shifted || mods&tcell.ModShift != 0 {
			keys = append(keys, key.KeyShiftLeft)
		}
		return append(keys, main)
	}

	if mods&tcell.ModShift != 0 {
		keys = append(keys, key.KeyShiftLeft)
	}
	if mods&tcell.ModCtrl != 0 {
		keys = append(keys, key.KeyControlLeft)
	}

	if named := convertNamed(k); named != key.KeyNone {
		return append(keys, named)
	}

	// Control characters arrive without ModCtrl on most terminals.
	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		if mods&tcell.ModCtrl == 0 {
			keys = append(keys, key.KeyControlLeft)
		}
		return append(keys, key.KeyA+key.Key(k-tcell.KeyCtrlA))
	}
	return nil
}

// convertNamed maps the non-rune tcell keys.
func convertNamed(k tcell.Key) key.Key {
	switch k {
	case tcell.KeyEscape:
		return key.KeyEscape
	case tcell.KeyEnter:
		return key.KeyEnter
	case tcell.KeyTab, tcell.KeyBacktab:
		return key.KeyTab
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return key.KeyBackspace
	case tcell.KeyDelete:
		return key.KeyDelete
	case tcell.KeyInsert:
		return key.KeyInsert
	case tcell.KeyHome:
		return key.KeyHome
	case tcell.KeyEnd:
		return key.KeyEnd
	case tcell.KeyPgUp:
		return key.KeyPageUp
	case tcell.KeyPgDn:
		return key.KeyPageDown
	case tcell.KeyUp:
		return key.KeyUp
	case tcell.KeyDown:
		return key.KeyDown
	case tcell.KeyLeft:
		return key.KeyLeft
	case tcell.KeyRight:
		return key.KeyRight
	case tcell.KeyPause:
		return key.KeyPause
	case tcell.KeyPrint:
		return key.KeyPrintScreen
	case tcell.KeyF1:
		return key.KeyF1
	case tcell.KeyF2:
		return key.KeyF2
	case tcell.KeyF3:
		return key.KeyF3
	case tcell.KeyF4:
		return key.KeyF4
	case tcell.KeyF5:
		return key.KeyF5
	case tcell.KeyF6:
		return key.KeyF6
	case tcell.KeyF7:
		return key.KeyF7
	case tcell.KeyF8:
		return key.KeyF8
	case tcell.KeyF9:
		return key.KeyF9
	case tcell.KeyF10:
		return key.KeyF10
	case tcell.KeyF11:
		return key.KeyF11
	case tcell.KeyF12:
		return key.KeyF12
	default:
		return key.KeyNone
	}
}

// shiftedDigits maps the US layout's shifted number row.
var shiftedDigits = map[rune]key.Key{
	'!': key.KeyDigit1,
	'@': key.KeyDigit2,
	'#': key.KeyDigit3,
	'$': key.KeyDigit4,
	'%': key.KeyDigit5,
	'^': key.KeyDigit6,
	'&': key.KeyDigit7,
	'*': key.KeyDigit8,
	'(': key.KeyDigit9,
	')': key.KeyDigit0,
	'_': key.KeyMinus,
	'+': key.KeyEqual,
	'{': key.KeyBracketLeft,
	'}': key.KeyBracketRight,
	'|': key.KeyBackslash,
	':': key.KeySemicolon,
	'"': key.KeyQuote,
	'~': key.KeyBackquote,
	'<': key.KeyComma,
	'>': key.KeyPeriod,
	'?': key.KeySlash,
}

// convertRune maps a typed character to its key and whether Shift was needed.
func convertRune(r rune) (key.Key, bool) {
	if r == ' ' {
		return key.KeySpace, false
	}
	if k, ok := shiftedDigits[r]; ok {
		return k, true
	}
	if r > unicode.MaxASCII || !unicode.IsPrint(r) {
		return key.KeyNone, false
	}
	k := key.KeyFromName(string(unicode.ToLower(r)))
	return k, k != key.KeyNone && unicode.IsUpper(r)
}
