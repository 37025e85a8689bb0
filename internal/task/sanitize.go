package task

import (
	"html"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

// MaxSearchLength is the number of runes of a search term that are kept.
const MaxSearchLength = 100

var (
	searchPolicy = bluemonday.StrictPolicy()
	likeEscaper  = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// SanitizeSearch strips markup from a free-text search term, trims it and
// caps its length. The result is plain text; an empty string means no filter.
func SanitizeSearch(raw string) string {
	text := html.UnescapeString(searchPolicy.Sanitize(raw))
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > MaxSearchLength {
		text = strings.TrimSpace(string(runes[:MaxSearchLength]))
	}
	return text
}

// likePattern builds a case-insensitive substring pattern with LIKE
// metacharacters escaped by backslash.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// Slugify derives the category key used for filtering.
func Slugify(category string) string {
	return slug.Make(category)
}
