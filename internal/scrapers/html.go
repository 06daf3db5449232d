package scrapers

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripPolicy = bluemonday.StrictPolicy()

	blockBreaks = strings.NewReplacer("<p>", "\n\n", "<P>", "\n\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n")
)

// stripHTML turns an HTML fragment (HN text, RSS descriptions) into plain text
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := stripPolicy.Sanitize(blockBreaks.Replace(s))
	return strings.TrimSpace(html.UnescapeString(text))
}
