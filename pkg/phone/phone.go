// Package phone проверяет чилийские номера мобильных телефонов.
package phone

import (
	"regexp"
	"strings"
	"unicode"
)

// mobilePattern: необязательный код страны 56 (с "+" или без), затем 9 и еще 8 цифр.
var mobilePattern = regexp.MustCompile(`^(\+?56)?9\d{8}$`)

// Clean удаляет пробельные символы, дефисы и скобки.
func Clean(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, phone)
}

// Validate проверяет номер вида +569XXXXXXXX, 569XXXXXXXX или 9XXXXXXXX.
func Validate(phone string) bool {
	return mobilePattern.MatchString(Clean(phone))
}
