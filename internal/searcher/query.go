package searcher

import (
	"strings"
)

// ftsOperators are characters with operator meaning in FTS5 match syntax.
// They are replaced with spaces so free-form input cannot change query
// structure: wildcard, anchor, grouping, column filter, and hyphen.
var ftsOperators = strings.NewReplacer(
	"*", " ",
	"^", " ",
	"(", " ",
	")", " ",
	":", " ",
	"-", " ",
)

// booleanTokens are FTS5 boolean operators stripped when they appear as
// standalone words, compared case-insensitively.
var booleanTokens = map[string]struct{}{
	"and":  {},
	"or":   {},
	"not":  {},
	"near": {},
}

// BuildMatchQuery translates a natural-language query into an FTS5 match
// expression: operator characters become spaces, standalone boolean tokens
// are stripped, and each remaining word is quoted (with literal quotes
// doubled) and given a trailing prefix wildcard. Tokens are joined with
// spaces, which FTS5 treats as implicit AND.
//
// The empty string is the empty-query sentinel: it is returned when nothing
// queryable survives escaping, and callers fall back to a recency listing.
func BuildMatchQuery(query string) string {
	cleaned := ftsOperators.Replace(query)

	words := strings.Fields(cleaned)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, isOperator := booleanTokens[strings.ToLower(word)]; isOperator {
			continue
		}
		escaped := strings.ReplaceAll(word, `"`, `""`)
		terms = append(terms, `"`+escaped+`"*`)
	}

	if len(terms) == 0 {
		return ""
	}
	return strings.Join(terms, " ")
}
