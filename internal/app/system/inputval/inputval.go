// internal/app/system/inputval/inputval.go

// Package inputval validates and sanitizes free-text fields before they are
// stored: request reasons, admin comments, freeze and emergency reasons.
package inputval

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MinReasonLength is the minimum meaningful length for a request reason.
const MinReasonLength = 5

// MaxTextLength caps stored free-text fields.
const MaxTextLength = 1000

var strict = bluemonday.StrictPolicy()

// SanitizeText strips markup, trims whitespace, and truncates to
// MaxTextLength. Stored text never contains HTML.
func SanitizeText(s string) string {
	clean := strings.TrimSpace(strict.Sanitize(s))
	if len(clean) > MaxTextLength {
		clean = clean[:MaxTextLength]
	}
	return clean
}

// ValidReason reports whether a sanitized reason is meaningful enough to
// store with a token request.
func ValidReason(reason string) bool {
	return len(strings.TrimSpace(reason)) >= MinReasonLength
}
