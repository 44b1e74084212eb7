// Package searcher translates free-text queries into FTS5 match
// expressions, executes them against storage, and applies context boosts
// to the raw lexical relevance. Malformed queries never surface to the
// caller: anything FTS5 rejects falls back to a recency listing.
package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/knowmem/knowmem-mcp/internal/storage"
)

const (
	// DefaultCacheSize bounds the LRU response cache.
	DefaultCacheSize = 256
	// DefaultCacheTTL expires cached responses.
	DefaultCacheTTL = time.Minute
)

// Request contains parameters for a search operation. The query has been
// validated and the limit clamped by the caller.
type Request struct {
	Query       string
	ContextTags []string
	Scope       string
	Limit       int
}

// Response contains ranked results plus the pre-truncation match count.
type Response struct {
	Results      []RankedItem
	TotalMatches int
	Query        string
}

// cacheEntry is a cached response with its expiration time.
type cacheEntry struct {
	response  Response
	expiresAt time.Time
}

// Searcher coordinates query building, execution, and ranking.
type Searcher struct {
	store *storage.Store
	cache *lru.Cache[[32]byte, cacheEntry]
	ttl   time.Duration
}

// New creates a Searcher over the given store. cacheSize and ttl fall back
// to package defaults when zero.
func New(store *storage.Store, cacheSize int, ttl time.Duration) *Searcher {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cache, err := lru.New[[32]byte, cacheEntry](cacheSize)
	if err != nil {
		// Only reachable with a non-positive size, which is guarded above.
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}
	return &Searcher{store: store, cache: cache, ttl: ttl}
}

// Search executes the request: full-text when the query yields a usable
// match expression, recency listing otherwise. Rows are fetched at twice
// the requested limit so ranking can reorder before truncation.
func (s *Searcher) Search(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(req)
	if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
		return entry.response, nil
	}

	breadth := req.Limit * 2

	match := BuildMatchQuery(req.Query)
	var rows []storage.SearchRow
	var err error
	if match == "" {
		rows, err = s.store.ListRecent(ctx, req.Scope, breadth)
	} else {
		rows, err = s.store.SearchFTS(ctx, match, req.Scope, breadth)
		if err != nil && isMatchSyntaxError(err) {
			// Malformed-but-non-empty queries must never surface as an
			// error; callers depend on search accepting arbitrary text.
			rows, err = s.store.ListRecent(ctx, req.Scope, breadth)
		}
	}
	if err != nil {
		return Response{}, fmt.Errorf("search failed: %w", err)
	}

	ranked := Rank(rows, RankContext{ContextTags: req.ContextTags, Scope: req.Scope})
	total := len(ranked)
	if len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	response := Response{Results: ranked, TotalMatches: total, Query: req.Query}
	s.cache.Add(key, cacheEntry{response: response, expiresAt: time.Now().Add(s.ttl)})
	return response, nil
}

// Invalidate drops every cached response. Called after successful writes
// so searches never return stale results.
func (s *Searcher) Invalidate() {
	s.cache.Purge()
}

// isMatchSyntaxError reports whether err is FTS5 rejecting the match
// expression, as opposed to an engine failure.
func isMatchSyntaxError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "fts5") || strings.Contains(msg, "malformed match")
}

func cacheKey(req Request) [32]byte {
	var b strings.Builder
	b.WriteString(req.Query)
	b.WriteByte(0)
	b.WriteString(req.Scope)
	b.WriteByte(0)
	b.WriteString(strings.Join(req.ContextTags, ","))
	b.WriteByte(0)
	fmt.Fprintf(&b, "%d", req.Limit)
	return sha256.Sum256([]byte(b.String()))
}
