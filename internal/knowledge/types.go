package knowledge

import (
	"github.com/knowmem/knowmem-mcp/internal/searcher"
)

// StoreRequest carries the raw fields of a store operation.
type StoreRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Scope   string   `json:"scope,omitempty"`
}

// UpdateRequest is a partial update: nil fields keep their stored values.
type UpdateRequest struct {
	ID      string    `json:"id"`
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Scope   *string   `json:"scope,omitempty"`
}

// WriteResult is returned by Store and Update.
type WriteResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SearchRequest carries a validated-later search invocation. A nil Limit
// means the caller supplied none and the default applies; an explicit
// out-of-range limit is clamped, never rejected.
type SearchRequest struct {
	Query       string   `json:"query"`
	ContextTags []string `json:"context_tags,omitempty"`
	Scope       string   `json:"scope,omitempty"`
	Limit       *int     `json:"limit,omitempty"`
}

// SearchResult carries ranked results plus the pre-truncation match count.
type SearchResult struct {
	Results      []searcher.RankedItem `json:"results"`
	TotalMatches int                   `json:"totalMatches"`
	Query        string                `json:"query"`
}
