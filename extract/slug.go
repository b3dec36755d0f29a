package extract

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`\W+`)

// Slugify derives a URL-safe slug from a title: every run of non-word
// characters becomes a single separator, with no leading or trailing
// separators. The input is used as-is (already stringified); re-applying
// Slugify to its own output is a no-op.
func Slugify(title string) string {
	return strings.Trim(nonWord.ReplaceAllString(title, "-"), "-")
}
