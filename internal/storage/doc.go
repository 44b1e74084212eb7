// Package storage provides SQLite-based persistence for knowledge items.
//
// The storage layer manages:
//   - The knowledge table (title, content, tags, scope, derived dedup keys)
//   - The knowledge_fts FTS5 index, kept in lockstep via triggers
//   - Versioned schema migrations tracked in PRAGMA user_version
//
// # Basic Usage
//
//	store, err := storage.Open("~/.knowmem/knowledge.db", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Transactions
//
// Multi-step mutations (collision check + insert/update) run inside one
// transaction so partial writes are never observable:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if _, err := tx.FindIDByNormalizedTitle(ctx, scope, normTitle, ""); err != storage.ErrNotFound {
//	    // collision or failure
//	}
//	if err := tx.InsertItem(ctx, item); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Full-Text Search
//
// SearchFTS joins the FTS5 index to the base table and orders by
// bm25(knowledge_fts, 10.0, 5.0, 1.0) so title matches dominate content
// matches, which dominate tag matches. FTS5 bm25 scores are negative with
// more negative meaning better; callers negate before applying boosts.
//
// # Build Tags
//
// The package supports two build configurations:
//
// CGO build (sqlite_cgo tag): github.com/mattn/go-sqlite3, requires a C
// compiler and the fts5 tag.
//
// Pure Go build (default): modernc.org/sqlite, no C compiler needed.
package storage
