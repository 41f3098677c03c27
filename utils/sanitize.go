package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.UGCPolicy()
	namePolicy = bluemonday.StrictPolicy()
)

// Sanitize strips unsafe markup from user written text. The result is stored
// and served as plain text, so entities bluemonday emits are decoded again.
func Sanitize(input string) string {
	return html.UnescapeString(textPolicy.Sanitize(input))
}

// SanitizeName strips all markup, for file names and labels.
func SanitizeName(input string) string {
	return html.UnescapeString(namePolicy.Sanitize(input))
}
