package wizard

import (
	"strings"
	"unicode/utf8"

	"kioskreg/pkg/rut"
)

// KeypadMode - раскладка экранной клавиатуры.
type KeypadMode string

// Раскладки.
const (
	KeypadText    KeypadMode = "text"
	KeypadNumeric KeypadMode = "numeric"
	KeypadEmail   KeypadMode = "email"
	KeypadRUT     KeypadMode = "rut"
)

var keypadLayouts = map[KeypadMode][][]string{
	KeypadText: {
		{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
		{"A", "S", "D", "F", "G", "H", "J", "K", "L", "Ñ"},
		{"Z", "X", "C", "V", "B", "N", "M", "-", " "},
	},
	KeypadNumeric: {
		{"1", "2", "3"},
		{"4", "5", "6"},
		{"7", "8", "9"},
		{"0", "-", "k"},
	},
	KeypadEmail: {
		{"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P"},
		{"A", "S", "D", "F", "G", "H", "J", "K", "L"},
		{"Z", "X", "C", "V", "B", "N", "M", "@", "."},
		{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"},
	},
}

// Keypad - экранная клавиатура для одного поля.
// В режиме RUT значение переформатируется после каждого изменения.
type Keypad struct {
	mode  KeypadMode
	value string
	upper bool
}

// NewKeypad создает клавиатуру с начальным значением поля.
func NewKeypad(mode KeypadMode, value string) *Keypad {
	return &Keypad{mode: mode, value: value, upper: true}
}

// Mode возвращает раскладку.
func (k *Keypad) Mode() KeypadMode { return k.mode }

// Value возвращает текущее значение поля.
func (k *Keypad) Value() string { return k.value }

// Keys возвращает ряды клавиш. Поле RUT использует цифровую раскладку.
func (k *Keypad) Keys() [][]string {
	if k.mode == KeypadRUT {
		return keypadLayouts[KeypadNumeric]
	}
	return keypadLayouts[k.mode]
}

// ToggleCase переключает регистр букв в текстовых раскладках.
func (k *Keypad) ToggleCase() {
	if k.mode == KeypadText || k.mode == KeypadEmail {
		k.upper = !k.upper
	}
}

// Press добавляет символ клавиши.
func (k *Keypad) Press(key string) {
	switch k.mode {
	case KeypadRUT:
		k.value = formatPartialRUT(rut.Clean(k.value) + rut.Sanitize(key))
	case KeypadText, KeypadEmail:
		if k.upper {
			key = strings.ToUpper(key)
		} else {
			key = strings.ToLower(key)
		}
		k.value += key
	default:
		k.value += key
	}
}

// Backspace удаляет последний символ. В режиме RUT удаляется символ без учета разделителей.
func (k *Keypad) Backspace() {
	if k.mode == KeypadRUT {
		k.value = formatPartialRUT(dropLastRune(rut.Clean(k.value)))
		return
	}
	k.value = dropLastRune(k.value)
}

// Paste заменяет значение вставленным текстом. В режиме RUT остаются только цифры и k/K.
func (k *Keypad) Paste(text string) {
	if k.mode == KeypadRUT {
		k.value = formatPartialRUT(rut.Sanitize(text))
		return
	}
	k.value = text
}

// Clear очищает поле.
func (k *Keypad) Clear() {
	k.value = ""
}

func formatPartialRUT(clean string) string {
	if len(clean) < 2 {
		return clean
	}
	return rut.Format(clean)
}

func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
