package web

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips any markup from text that originates outside the application, such as identity
// provider error messages, and collapses whitespace. The result is still escaped by html/template.
func PlainText(s string) string {
	cleaned := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}
