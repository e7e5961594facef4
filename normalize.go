package minibank

import "strings"

// NormalizeIdentifier strips every character that is not an ASCII digit from a national
// identification number, so "123.456.789-09" and "12345678909" compare equal.
func NormalizeIdentifier(raw string) string {
	return strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, raw)
}
