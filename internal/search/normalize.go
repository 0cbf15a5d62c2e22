package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NormalizeQuery builds the cache key for a query: NFKC, case folded,
// whitespace collapsed. "  The  MATRIX " and "the matrix" share a key.
func NormalizeQuery(query string) string {
	folded := folder.String(norm.NFKC.String(query))
	return strings.Join(strings.Fields(folded), " ")
}
