// Package validate implements field-level and cross-field rules for
// knowledge items and search requests. Rule evaluation is stateless and
// never fails fast: every violated rule is reported at once.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

// Field length bounds applied after trimming.
const (
	TitleMinLen   = 10
	TitleMaxLen   = 100
	ContentMinLen = 50
	ContentMaxLen = 5000
	QueryMinLen   = 3
	QueryMaxLen   = 500
	MaxTags       = 10

	// DefaultLimit is used when a search caller supplies no limit.
	DefaultLimit = 5
	// MaxLimit caps the number of search results a caller may request.
	MaxLimit = 20
)

var (
	tagPattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	scopePattern = regexp.MustCompile(`^(global|project:[A-Za-z0-9_-]+|repo:[A-Za-z0-9_-]+)$`)
)

// genericPhrases rejects low-information content. An entry matches when the
// trimmed content case-insensitively equals or begins with it.
var genericPhrases = []string{
	"todo",
	"to do",
	"fixme",
	"remember this",
	"note to self",
	"don't forget",
	"placeholder",
}

// Violation describes a single violated rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations collects every violated rule for one request.
type Violations []Violation

func (v Violations) OK() bool { return len(v) == 0 }

// Messages returns the individual violation messages in rule order.
func (v Violations) Messages() []string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Message
	}
	return msgs
}

// Summary joins all violation messages with "; " for the human-readable
// error message.
func (v Violations) Summary() string {
	return strings.Join(v.Messages(), "; ")
}

func (v *Violations) add(field, format string, args ...any) {
	*v = append(*v, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// StoreInput carries the raw fields of a store request.
type StoreInput struct {
	Title   string
	Content string
	Tags    []string
	Scope   string
}

// Store validates all fields of a store request.
func Store(in StoreInput) Violations {
	var v Violations
	checkTitle(&v, in.Title)
	checkContent(&v, in.Content)
	checkTags(&v, in.Tags)
	checkScope(&v, in.Scope)
	return v
}

// UpdateInput carries the fields of an update request. Nil pointers mean
// the field was not supplied and its existing value is kept unvalidated.
type UpdateInput struct {
	Title   *string
	Content *string
	Tags    *[]string
	Scope   *string
}

// Update validates only the supplied fields and requires at least one.
func Update(in UpdateInput) Violations {
	var v Violations
	if in.Title == nil && in.Content == nil && in.Tags == nil && in.Scope == nil {
		v.add("update", "at least one of title, content, tags, or scope must be provided")
		return v
	}
	if in.Title != nil {
		checkTitle(&v, *in.Title)
	}
	if in.Content != nil {
		checkContent(&v, *in.Content)
	}
	if in.Tags != nil {
		checkTags(&v, *in.Tags)
	}
	if in.Scope != nil {
		checkScope(&v, *in.Scope)
	}
	return v
}

// Query validates a search query string.
func Query(q string) Violations {
	var v Violations
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		v.add("query", "query is required")
		return v
	}
	if n := len(trimmed); n < QueryMinLen || n > QueryMaxLen {
		v.add("query", "query must be between %d and %d characters, got %d", QueryMinLen, QueryMaxLen, n)
	}
	return v
}

// ClampLimit bounds an explicitly supplied result limit to [1, MaxLimit].
// Out-of-range limits are clamped rather than rejected.
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func checkTitle(v *Violations, title string) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		v.add("title", "title is required")
		return
	}
	if n := len(trimmed); n < TitleMinLen || n > TitleMaxLen {
		v.add("title", "title must be between %d and %d characters, got %d", TitleMinLen, TitleMaxLen, n)
	}
}

func checkContent(v *Violations, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		v.add("content", "content is required")
		return
	}
	if n := len(trimmed); n < ContentMinLen || n > ContentMaxLen {
		v.add("content", "content must be between %d and %d characters, got %d", ContentMinLen, ContentMaxLen, n)
	}
	lowered := strings.ToLower(trimmed)
	for _, phrase := range genericPhrases {
		if strings.HasPrefix(lowered, phrase) {
			v.add("content", "content appears to be a generic note (starts with %q); store specific, self-contained knowledge instead", phrase)
			return
		}
	}
}

func checkTags(v *Violations, tags []string) {
	if len(tags) == 0 {
		return
	}
	if len(tags) > MaxTags {
		v.add("tags", "at most %d tags are allowed, got %d", MaxTags, len(tags))
	}
	for _, tag := range tags {
		candidate := strings.ToLower(strings.TrimSpace(tag))
		if !tagPattern.MatchString(candidate) {
			v.add("tags", "invalid tag %q: tags must be alphanumeric with hyphens", tag)
		}
	}
}

func checkScope(v *Violations, scope string) {
	trimmed := strings.TrimSpace(scope)
	if trimmed == "" {
		return
	}
	if !scopePattern.MatchString(strings.ToLower(trimmed)) {
		v.add("scope", "invalid scope %q: must be global, project:<name>, or repo:<name>", scope)
	}
}
