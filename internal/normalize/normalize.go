// Package normalize provides the canonical forms used for dedup keys and
// full-text indexing. All functions are pure and idempotent: applying a
// function to its own output returns the same value.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// ScopeGlobal is the default scope applied when none is supplied.
const ScopeGlobal = "global"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blankLineRun  = regexp.MustCompile(`\n{3,}`)
)

// Title lowercases, trims, and collapses internal whitespace runs to a
// single space. The result pairs with scope as a dedup key.
func Title(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRun.ReplaceAllString(s, " ")
}

// Content trims, converts CRLF/CR line endings to LF, and collapses runs of
// three or more newlines down to two (one blank line).
func Content(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return blankLineRun.ReplaceAllString(s, "\n\n")
}

// HashContent returns the hex-encoded SHA-256 of the normalized content.
// Inputs that differ only in surrounding whitespace or line-ending style
// hash to the same 64-character value.
func HashContent(s string) string {
	sum := sha256.Sum256([]byte(Content(s)))
	return hex.EncodeToString(sum[:])
}

// Tags lowercases and trims each tag, drops empties, and deduplicates
// preserving first-seen order.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Scope returns ScopeGlobal for a blank scope, otherwise the trimmed,
// lowercased form. Scope matching is not case sensitive.
func Scope(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ScopeGlobal
	}
	return s
}
