package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Notes are plain text, so every tag is stripped.
var noteSanitizer = bluemonday.StrictPolicy()

// SanitizeNote strips markup and surrounding whitespace. Empty input, or input
// that is empty once cleaned, yields nil.
func SanitizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	cleaned := strings.TrimSpace(html.UnescapeString(noteSanitizer.Sanitize(*note)))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
