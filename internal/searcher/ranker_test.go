package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowmem/knowmem-mcp/internal/storage"
)

func row(id, tagsJSON, scope string, score float64) storage.SearchRow {
	return storage.SearchRow{
		ID:       id,
		Title:    "Title for " + id,
		Content:  "Content for " + id,
		TagsJSON: tagsJSON,
		Scope:    scope,
		Score:    score,
	}
}

func TestRankNegatesEngineScore(t *testing.T) {
	// bm25 relevance is more negative for better matches; ranking must
	// flip the sign so larger is better.
	items := Rank([]storage.SearchRow{
		row("worse", `[]`, "other", -1.0),
		row("better", `[]`, "other", -3.0),
	}, RankContext{})

	assert.Equal(t, "better", items[0].ID)
	assert.InDelta(t, 3.0, items[0].Score, 1e-9)
	assert.InDelta(t, 1.0, items[1].Score, 1e-9)
}

func TestRankTagBoost(t *testing.T) {
	items := Rank([]storage.SearchRow{
		row("no-overlap", `["db"]`, "other", -2.0),
		row("two-overlap", `["api","security","db"]`, "other", -2.0),
		row("one-overlap", `["api"]`, "other", -2.0),
	}, RankContext{ContextTags: []string{"api", "security"}})

	assert.Equal(t, "two-overlap", items[0].ID)
	assert.Equal(t, "one-overlap", items[1].ID)
	assert.Equal(t, "no-overlap", items[2].ID)

	// 2.0 * (1 + 0.1*2) = 2.4
	assert.InDelta(t, 2.4, items[0].Score, 1e-9)
	assert.InDelta(t, 2.2, items[1].Score, 1e-9)
	assert.InDelta(t, 2.0, items[2].Score, 1e-9)
}

func TestRankScopeBoost(t *testing.T) {
	items := Rank([]storage.SearchRow{
		row("unrelated", `[]`, "project:other", -1.0),
		row("global", `[]`, "global", -1.0),
		row("same-scope", `[]`, "project:alpha", -1.0),
	}, RankContext{Scope: "project:alpha"})

	assert.Equal(t, "same-scope", items[0].ID)
	assert.Equal(t, "global", items[1].ID)
	assert.Equal(t, "unrelated", items[2].ID)

	assert.InDelta(t, 1.5, items[0].Score, 1e-9)
	assert.InDelta(t, 1.2, items[1].Score, 1e-9)
	assert.InDelta(t, 1.0, items[2].Score, 1e-9)
}

func TestRankNoQueryScopeMeansNoExactBoost(t *testing.T) {
	// A global row still gets the global boost even without a query scope.
	items := Rank([]storage.SearchRow{
		row("scoped", `[]`, "project:alpha", -1.0),
		row("global", `[]`, "global", -1.0),
	}, RankContext{})

	assert.Equal(t, "global", items[0].ID)
	assert.InDelta(t, 1.2, items[0].Score, 1e-9)
	assert.InDelta(t, 1.0, items[1].Score, 1e-9)
}

func TestRankUnparsableTags(t *testing.T) {
	items := Rank([]storage.SearchRow{
		row("bad-tags", `{{{`, "global", -1.0),
	}, RankContext{ContextTags: []string{"api"}})

	assert.Empty(t, items[0].Tags)
	assert.InDelta(t, 1.2, items[0].Score, 1e-9)
}

func TestRankRoundsToThreeDecimals(t *testing.T) {
	items := Rank([]storage.SearchRow{
		row("a", `["x"]`, "other", -1.2345678),
	}, RankContext{ContextTags: []string{"x"}})

	// 1.2345678 * 1.1 = 1.35802458 -> 1.358
	assert.Equal(t, 1.358, items[0].Score)
}

func TestRankStableOnTies(t *testing.T) {
	rows := []storage.SearchRow{
		row("first", `[]`, "other", -1.0),
		row("second", `[]`, "other", -1.0),
	}
	items := Rank(rows, RankContext{})
	assert.Equal(t, "first", items[0].ID)
	assert.Equal(t, "second", items[1].ID)
}
