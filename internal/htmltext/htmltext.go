// Package htmltext reduces HTML fragments to their visible text.
//
// Remote payload fields such as titles, excerpts and author bios arrive as
// rendered HTML; only the text content is persisted.
package htmltext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips all markup from s, decodes HTML entities and collapses runs of
// whitespace into single spaces.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	stripped := strict.Sanitize(s)
	decoded := html.UnescapeString(stripped)
	return strings.Join(strings.Fields(decoded), " ")
}
