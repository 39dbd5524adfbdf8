// Package rut реализует проверку и форматирование чилийского RUT
// (Rol Único Tributario) по алгоритму модуля 11.
package rut

import (
	"errors"
	"strings"
)

// ErrInvalidBody возвращается, если тело RUT пустое или содержит не цифры.
var ErrInvalidBody = errors.New("rut body must be a non-empty string of digits")

// Clean удаляет разделители "." и "-".
func Clean(id string) string {
	return strings.NewReplacer(".", "", "-", "").Replace(id)
}

// Sanitize оставляет только символы, допустимые при вводе RUT: цифры и k/K.
func Sanitize(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == 'k' || r == 'K' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CheckDigit вычисляет контрольный символ для тела RUT.
// Множители 2..7 применяются циклически, начиная с младшего разряда.
func CheckDigit(body string) (byte, error) {
	if body == "" || !isDigits(body) {
		return 0, ErrInvalidBody
	}

	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * multiplier
		multiplier++
		if multiplier > 7 {
			multiplier = 2
		}
	}

	switch expected := 11 - sum%11; expected {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + expected), nil
	}
}

// Validate проверяет RUT в любом из форматов: "12.345.678-5", "12345678-5", "123456785".
func Validate(id string) bool {
	clean := Clean(id)
	if len(clean) < 2 {
		return false
	}

	body, dv := clean[:len(clean)-1], strings.ToUpper(clean[len(clean)-1:])

	expected, err := CheckDigit(body)
	if err != nil {
		return false
	}
	return dv == string(expected)
}

// Format приводит RUT к виду "12.345.678-5". Регистр контрольного символа сохраняется.
// Строки короче двух символов после очистки возвращаются без изменений.
func Format(id string) string {
	clean := []rune(Clean(id))
	if len(clean) < 2 {
		return id
	}

	body, dv := clean[:len(clean)-1], clean[len(clean)-1]
	return groupThousands(body) + "-" + string(dv)
}

// groupThousands расставляет точки между тысячами справа налево.
func groupThousands(body []rune) string {
	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
