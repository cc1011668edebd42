package engine

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
)

// RenderDescription turns the description markup (**bold**, *italic*, newlines)
// into escaped HTML.
func RenderDescription(text string) string {
	if text == "" {
		return ""
	}
	out := html.EscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	return strings.ReplaceAll(out, "\n", "<br>")
}
