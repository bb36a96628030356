package common

import (
	"strings"
)

// DetectDelimiter attempts to detect the delimiter from a raw line of text.
// It checks common delimiters and returns the one that produces the most fields.
// Defaults to comma if line is empty or no clear winner.
func DetectDelimiter(line string) rune {
	if line == "" {
		return DefaultDelimiter
	}

	delimiters := []rune{',', '\t', ';', '|'}
	maxCount := 0
	winner := DefaultDelimiter

	for _, delim := range delimiters {
		count := strings.Count(line, string(delim))
		if count > maxCount {
			maxCount = count
			winner = delim
		}
	}

	return winner
}
