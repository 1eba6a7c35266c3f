package model

import "strings"

// NormalizeNumber reduces a phone number to its comparable form: everything
// except digits and a leading + is stripped, then the last 10 characters are
// kept. "555-123-4567" and "+15551234567" normalize to the same value.
func NormalizeNumber(number string) string {
	var sb strings.Builder
	for i, r := range number {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		} else if r == '+' && i == 0 {
			sb.WriteRune(r)
		}
	}
	stripped := sb.String()
	if len(stripped) <= 10 {
		return stripped
	}
	return stripped[len(stripped)-10:]
}

// SameNumber reports whether two numbers are equal under normalization.
func SameNumber(a, b string) bool {
	return NormalizeNumber(a) == NormalizeNumber(b)
}
