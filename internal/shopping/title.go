package shopping

import (
	"regexp"
	"strings"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// truncateAt lists the delimiters a raw title is cut at, in the order they apply.
var truncateAt = []string{"...", " - ", " | ", ","}

// CleanTitle shortens a search-result title to its product name. Each
// delimiter in truncateAt keeps only the text before its first occurrence,
// applied one after another; parenthetical groups are then removed and the
// result trimmed.
//
// Removing a parenthetical can expose a new delimiter ("a (x)- b" becomes
// "a - b"), so the pass repeats until the title stops changing. Every pass
// only shortens the string, and CleanTitle(CleanTitle(s)) == CleanTitle(s).
func CleanTitle(title string) string {
	for {
		next := cleanOnce(title)
		if next == title {
			return next
		}
		title = next
	}
}

func cleanOnce(title string) string {
	for _, sep := range truncateAt {
		title, _, _ = strings.Cut(title, sep)
	}
	title = parenthetical.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
