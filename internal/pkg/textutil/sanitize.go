package textutil

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag. bluemonday policies are safe for concurrent use.
var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips markup from user-supplied text and trims surrounding
// whitespace. Entities escaped by the sanitizer are decoded again so that
// "Fish & Chips" is stored as typed rather than as "Fish &amp; Chips".
func PlainText(s string) string {
	cleaned := strictPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// RuneLen returns the number of characters in s
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
