package key

import (
	"fmt"
	"strings"
)

// Key identifies a physical keyboard key.
//
// Key values are written to session files, so the numbering is part of the
// file format. New keys must be appended before keyCount, never inserted.
type Key uint16

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	// Letter keys
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	// Digit row
	KeyDigit0
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9

	// Function keys
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// Special keys
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeySpace

	// Arrow keys
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	// Modifier keys
	KeyShiftLeft
	KeyShiftRight
	KeyControlLeft
	KeyControlRight
	KeyAltLeft
	KeyAltRight
	KeySuperLeft
	KeySuperRight

	// Lock and system keys
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
	KeyPrintScreen
	KeyPause

	// Punctuation
	KeyMinus
	KeyEqual
	KeyBracketLeft
	KeyBracketRight
	KeyBackslash
	KeySemicolon
	KeyQuote
	KeyBackquote
	KeyComma
	KeyPeriod
	KeySlash

	// Keypad keys
	KeyNumpad0
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadAdd
	KeyNumpadSubtract
	KeyNumpadMultiply
	KeyNumpadDivide
	KeyNumpadDecimal
	KeyNumpadEnter

	keyCount
)

var keyNames = [keyCount]string{
	KeyNone:           "None",
	KeyA:              "A",
	KeyB:              "B",
	KeyC:              "C",
	KeyD:              "D",
	KeyE:              "E",
	KeyF:              "F",
	KeyG:              "G",
	KeyH:              "H",
	KeyI:              "I",
	KeyJ:              "J",
	KeyK:              "K",
	KeyL:              "L",
	KeyM:              "M",
	KeyN:              "N",
	KeyO:              "O",
	KeyP:              "P",
	KeyQ:              "Q",
	KeyR:              "R",
	KeyS:              "S",
	KeyT:              "T",
	KeyU:              "U",
	KeyV:              "V",
	KeyW:              "W",
	KeyX:              "X",
	KeyY:              "Y",
	KeyZ:              "Z",
	KeyDigit0:         "Digit0",
	KeyDigit1:         "Digit1",
	KeyDigit2:         "Digit2",
	KeyDigit3:         "Digit3",
	KeyDigit4:         "Digit4",
	KeyDigit5:         "Digit5",
	KeyDigit6:         "Digit6",
	KeyDigit7:         "Digit7",
	KeyDigit8:         "Digit8",
	KeyDigit9:         "Digit9",
	KeyF1:             "F1",
	KeyF2:             "F2",
	KeyF3:             "F3",
	KeyF4:             "F4",
	KeyF5:             "F5",
	KeyF6:             "F6",
	KeyF7:             "F7",
	KeyF8:             "F8",
	KeyF9:             "F9",
	KeyF10:            "F10",
	KeyF11:            "F11",
	KeyF12:            "F12",
	KeyEscape:         "Escape",
	KeyEnter:          "Enter",
	KeyTab:            "Tab",
	KeyBackspace:      "Backspace",
	KeyDelete:         "Delete",
	KeyInsert:         "Insert",
	KeyHome:           "Home",
	KeyEnd:            "End",
	KeyPageUp:         "PageUp",
	KeyPageDown:       "PageDown",
	KeySpace:          "Space",
	KeyUp:             "Up",
	KeyDown:           "Down",
	KeyLeft:           "Left",
	KeyRight:          "Right",
	KeyShiftLeft:      "ShiftLeft",
	KeyShiftRight:     "ShiftRight",
	KeyControlLeft:    "ControlLeft",
	KeyControlRight:   "ControlRight",
	KeyAltLeft:        "AltLeft",
	KeyAltRight:       "AltRight",
	KeySuperLeft:      "SuperLeft",
	KeySuperRight:     "SuperRight",
	KeyCapsLock:       "CapsLock",
	KeyNumLock:        "NumLock",
	KeyScrollLock:     "ScrollLock",
	KeyPrintScreen:    "PrintScreen",
	KeyPause:          "Pause",
	KeyMinus:          "Minus",
	KeyEqual:          "Equal",
	KeyBracketLeft:    "BracketLeft",
	KeyBracketRight:   "BracketRight",
	KeyBackslash:      "Backslash",
	KeySemicolon:      "Semicolon",
	KeyQuote:          "Quote",
	KeyBackquote:      "Backquote",
	KeyComma:          "Comma",
	KeyPeriod:         "Period",
	KeySlash:          "Slash",
	KeyNumpad0:        "Numpad0",
	KeyNumpad1:        "Numpad1",
	KeyNumpad2:        "Numpad2",
	KeyNumpad3:        "Numpad3",
	KeyNumpad4:        "Numpad4",
	KeyNumpad5:        "Numpad5",
	KeyNumpad6:        "Numpad6",
	KeyNumpad7:        "Numpad7",
	KeyNumpad8:        "Numpad8",
	KeyNumpad9:        "Numpad9",
	KeyNumpadAdd:      "NumpadAdd",
	KeyNumpadSubtract: "NumpadSubtract",
	KeyNumpadMultiply: "NumpadMultiply",
	KeyNumpadDivide:   "NumpadDivide",
	KeyNumpadDecimal:  "NumpadDecimal",
	KeyNumpadEnter:    "NumpadEnter",
}

// String returns the canonical name of the key.
func (k Key) String() string {
	if k < keyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint16(k))
}

// Valid reports whether k names a real key. KeyNone is not valid.
func (k Key) Valid() bool {
	return k > KeyNone && k < keyCount
}

// IsLetter returns true for A-Z.
func (k Key) IsLetter() bool {
	return k >= KeyA && k <= KeyZ
}

// IsDigit returns true for the digit row.
func (k Key) IsDigit() bool {
	return k >= KeyDigit0 && k <= KeyDigit9
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsModifier returns true for Shift, Control, Alt and Super keys.
func (k Key) IsModifier() bool {
	return k >= KeyShiftLeft && k <= KeySuperRight
}

// IsNumpadKey returns true if this is a keypad key.
func (k Key) IsNumpadKey() bool {
	return k >= KeyNumpad0 && k <= KeyNumpadEnter
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, uint16(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// keyAliases maps alternative lowercase spellings to keys.
var keyAliases = map[string]Key{
	"esc":        KeyEscape,
	"return":     KeyEnter,
	"cr":         KeyEnter,
	"bs":         KeyBackspace,
	"del":        KeyDelete,
	"ins":        KeyInsert,
	"pgup":       KeyPageUp,
	"pgdn":       KeyPageDown,
	"shift":      KeyShiftLeft,
	"ctrl":       KeyControlLeft,
	"control":    KeyControlLeft,
	"alt":        KeyAltLeft,
	"super":      KeySuperLeft,
	"meta":       KeySuperLeft,
	"-":          KeyMinus,
	"=":          KeyEqual,
	"[":          KeyBracketLeft,
	"]":          KeyBracketRight,
	"\\":         KeyBackslash,
	";":          KeySemicolon,
	"'":          KeyQuote,
	"`":          KeyBackquote,
	",":          KeyComma,
	".":          KeyPeriod,
	"/":          KeySlash,
	"arrowup":    KeyUp,
	"arrowdown":  KeyDown,
	"arrowleft":  KeyLeft,
	"arrowright": KeyRight,
}

// keyNameMap maps lowercase canonical names to keys. Built once from keyNames.
var keyNameMap = func() map[string]Key {
	m := make(map[string]Key, int(keyCount)*2)
	for k := KeyA; k < keyCount; k++ {
		name := strings.ToLower(keyNames[k])
		m[name] = k
		m["key"+name] = k
	}
	for d := KeyDigit0; d <= KeyDigit9; d++ {
		m[string(rune('0'+int(d-KeyDigit0)))] = d
	}
	for name, k := range keyAliases {
		m[name] = k
	}
	return m
}()

// KeyFromName returns the Key for a given name (case-insensitive).
// Returns KeyNone if the name is not recognized.
func KeyFromName(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	if k, ok := keyNameMap[name]; ok {
		return k
	}
	return KeyNone
}

// Parse is KeyFromName with an error for unknown names.
func Parse(name string) (Key, error) {
	k := KeyFromName(name)
	if k == KeyNone {
		return KeyNone, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	return k, nil
}

// All returns every valid key in code order.
func All() []Key {
	keys := make([]Key, 0, keyCount-1)
	for k := KeyA; k < keyCount; k++ {
		keys = append(keys, k)
	}
	return keys
}
