package searcher

import (
	"math"
	"sort"

	"github.com/knowmem/knowmem-mcp/internal/storage"
)

// RankedItem is a search result after boosting, ready for the caller.
type RankedItem struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	Scope   string   `json:"scope"`
	Score   float64  `json:"score"`
}

// RankContext carries caller-supplied boosting context.
type RankContext struct {
	// ContextTags boost rows whose stored tags overlap them.
	ContextTags []string
	// Scope is the query scope; rows in the same scope get the largest
	// additive boost, global rows a smaller one.
	Scope string
}

// Rank applies the boost formula to raw engine relevance and sorts
// descending by final score.
//
// For each row:
//
//	tagBoost   = 1 + 0.1 * |contextTags ∩ rowTags|
//	scopeBoost = 0.5 if rowScope == queryScope (both non-empty), else
//	             0.2 if rowScope == "global", else 0
//	baseScore  = -rawScore   (FTS5 bm25 is more-negative-is-better)
//	finalScore = round3(baseScore*tagBoost + scopeBoost)
//
// Ties keep upstream (relevance) order: the sort is stable.
func Rank(rows []storage.SearchRow, rctx RankContext) []RankedItem {
	contextTags := make(map[string]struct{}, len(rctx.ContextTags))
	for _, tag := range rctx.ContextTags {
		contextTags[tag] = struct{}{}
	}

	items := make([]RankedItem, len(rows))
	for i, row := range rows {
		tags := storage.DecodeTags(row.TagsJSON)

		overlap := 0
		for _, tag := range tags {
			if _, ok := contextTags[tag]; ok {
				overlap++
			}
		}
		tagBoost := 1 + 0.1*float64(overlap)

		var scopeBoost float64
		switch {
		case rctx.Scope != "" && row.Scope == rctx.Scope:
			scopeBoost = 0.5
		case row.Scope == "global":
			scopeBoost = 0.2
		}

		baseScore := -row.Score
		items[i] = RankedItem{
			ID:      row.ID,
			Title:   row.Title,
			Content: row.Content,
			Tags:    tags,
			Scope:   row.Scope,
			Score:   round3(baseScore*tagBoost + scopeBoost),
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	return items
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
