package detect

import "regexp"

// Pattern families tried in order. The first one producing a usable match
// wins; no checksum or region validation is attempted.
var numberPatterns = []*regexp.Regexp{
	// International: +1 234 567 8901, +44-20-7946-0958
	regexp.MustCompile(`\+?[1-9]\d{0,2}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	// North-American grouped: (234) 567-8901, 234-567-8901, 234.567.8901
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	// Bare digit run, 10-15 digits
	regexp.MustCompile(`\d{10,15}`),
}

var nonNumber = regexp.MustCompile(`[^0-9+]`)

// ExtractNumber pulls a phone number out of free-form notification text.
// The match is stripped to digits plus a leading + and accepted only if at
// least 10 characters remain.
func ExtractNumber(text string) (string, bool) {
	for _, pattern := range numberPatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		number := nonNumber.ReplaceAllString(match, "")
		if len(number) >= 10 {
			return number, true
		}
	}
	return "", false
}
