package ocr

import (
	"regexp"
	"strings"
)

// namePattern keeps lines that start with a letter followed by 1-50 letters
// or spaces.  Digits and punctuation-heavy OCR noise fail the match.
var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z ]{1,50}$`)

// FilterNames splits raw OCR text into lines, trims whitespace and keeps the
// name-like ones.  Results are deduplicated preserving first-seen order, so
// the same name scanned from multiple images is recorded once.
func FilterNames(text string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !namePattern.MatchString(line) {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		names = append(names, line)
	}
	return names
}
