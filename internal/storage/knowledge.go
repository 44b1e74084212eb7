package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Item is a persisted knowledge row. Tags are stored as a JSON array in a
// single column; NormalizedTitle and ContentHash are derived fields used as
// dedup keys together with Scope.
type Item struct {
	ID              string
	Title           string
	Content         string
	Tags            []string
	Scope           string
	NormalizedTitle string
	ContentHash     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SearchRow is a raw full-text match before ranking. Score carries the
// engine's native relevance (FTS5 bm25: more negative is better) or 0 for
// the recency fallback. TagsJSON is the stored tag column, parsed by the
// ranker.
type SearchRow struct {
	ID       string
	Title    string
	Content  string
	TagsJSON string
	Scope    string
	Score    float64
}

const itemColumns = `id, title, content, tags, scope, normalized_title, content_hash, created_at, updated_at`

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(raw), nil
}

// DecodeTags parses a stored tag column. Unparsable values decode to an
// empty set rather than an error.
func DecodeTags(raw string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

// insertItemWithQuerier is the internal implementation that uses a querier
func insertItemWithQuerier(ctx context.Context, q querier, item *Item) error {
	tagsJSON, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO knowledge (id, title, content, tags, scope, normalized_title, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		item.ID, item.Title, item.Content, tagsJSON, item.Scope,
		item.NormalizedTitle, item.ContentHash, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge item: %w", err)
	}
	return nil
}

func (s *Store) InsertItem(ctx context.Context, item *Item) error {
	return insertItemWithQuerier(ctx, s.querier(), item)
}

func (t *Tx) InsertItem(ctx context.Context, item *Item) error {
	return insertItemWithQuerier(ctx, t.querier(), item)
}

// getItemWithQuerier is the internal implementation that uses a querier
func getItemWithQuerier(ctx context.Context, q querier, id string) (*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM knowledge WHERE id = ?`
	var item Item
	var tagsJSON string
	err := q.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.Title, &item.Content, &tagsJSON, &item.Scope,
		&item.NormalizedTitle, &item.ContentHash, &item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.Tags = DecodeTags(tagsJSON)
	return &item, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*Item, error) {
	return getItemWithQuerier(ctx, s.querier(), id)
}

func (t *Tx) GetItem(ctx context.Context, id string) (*Item, error) {
	return getItemWithQuerier(ctx, t.querier(), id)
}

// updateItemWithQuerier is the internal implementation that uses a querier
func updateItemWithQuerier(ctx context.Context, q querier, item *Item) error {
	tagsJSON, err := encodeTags(item.Tags)
	if err != nil {
		return err
	}
	query := `
		UPDATE knowledge
		SET title = ?, content = ?, tags = ?, scope = ?,
		    normalized_title = ?, content_hash = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query,
		item.Title, item.Content, tagsJSON, item.Scope,
		item.NormalizedTitle, item.ContentHash, item.UpdatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update knowledge item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	return updateItemWithQuerier(ctx, s.querier(), item)
}

func (t *Tx) UpdateItem(ctx context.Context, item *Item) error {
	return updateItemWithQuerier(ctx, t.querier(), item)
}

// findIDWithQuerier resolves a dedup-key lookup to the colliding item id.
// excludeID carves out the row being updated; pass "" for inserts.
func findIDWithQuerier(ctx context.Context, q querier, column, scope, value, excludeID string) (string, error) {
	query := `SELECT id FROM knowledge WHERE scope = ? AND ` + column + ` = ? AND id != ?`
	var id string
	err := q.QueryRowContext(ctx, query, scope, value, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) FindIDByNormalizedTitle(ctx context.Context, scope, normalizedTitle, excludeID string) (string, error) {
	return findIDWithQuerier(ctx, s.querier(), "normalized_title", scope, normalizedTitle, excludeID)
}

func (t *Tx) FindIDByNormalizedTitle(ctx context.Context, scope, normalizedTitle, excludeID string) (string, error) {
	return findIDWithQuerier(ctx, t.querier(), "normalized_title", scope, normalizedTitle, excludeID)
}

func (s *Store) FindIDByContentHash(ctx context.Context, scope, contentHash, excludeID string) (string, error) {
	return findIDWithQuerier(ctx, s.querier(), "content_hash", scope, contentHash, excludeID)
}

func (t *Tx) FindIDByContentHash(ctx context.Context, scope, contentHash, excludeID string) (string, error) {
	return findIDWithQuerier(ctx, t.querier(), "content_hash", scope, contentHash, excludeID)
}

// SearchFTS runs a full-text MATCH query joined to the base table,
// weighting title matches over content over tags. Results come back in
// engine relevance order (bm25 ascending: best first). A scope filter
// restricts rows to that scope or global; an empty scope matches all.
//
// Note: in FTS5, bm25() returns negative values where more negative means
// a better match. The ranker negates before boosting.
func (s *Store) SearchFTS(ctx context.Context, match, scope string, limit int) ([]SearchRow, error) {
	query := `
		SELECT k.id, k.title, k.content, k.tags, k.scope,
		       bm25(knowledge_fts, 10.0, 5.0, 1.0) AS score
		FROM knowledge_fts
		JOIN knowledge k ON k.rowid = knowledge_fts.rowid
		WHERE knowledge_fts MATCH ?
	`
	args := []interface{}{match}
	if scope != "" {
		query += " AND (k.scope = ? OR k.scope = 'global')"
		args = append(args, scope)
	}
	query += " ORDER BY score LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSearchRows(rows)
}

// ListRecent is the no-query fallback: most recent items first, same scope
// semantics as SearchFTS, neutral zero score on every row.
func (s *Store) ListRecent(ctx context.Context, scope string, limit int) ([]SearchRow, error) {
	query := `
		SELECT id, title, content, tags, scope, 0.0 AS score
		FROM knowledge
	`
	args := []interface{}{}
	if scope != "" {
		query += " WHERE scope = ? OR scope = 'global'"
		args = append(args, scope)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSearchRows(rows)
}

// CountItems returns the number of stored knowledge items.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM knowledge").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanSearchRows(rows *sql.Rows) ([]SearchRow, error) {
	results := make([]SearchRow, 0)
	for rows.Next() {
		var row SearchRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Content, &row.TagsJSON, &row.Scope, &row.Score); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
