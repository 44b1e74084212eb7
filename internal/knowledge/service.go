// Package knowledge orchestrates the store, update, and search operations:
// validation and normalization up front, then transactional
// read-modify-write against storage, with collision checks enforcing the
// per-scope dedup invariants.
package knowledge

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/knowmem/knowmem-mcp/internal/normalize"
	"github.com/knowmem/knowmem-mcp/internal/searcher"
	"github.com/knowmem/knowmem-mcp/internal/storage"
	"github.com/knowmem/knowmem-mcp/internal/validate"
)

// Service exposes the three boundary operations over an injected store.
type Service struct {
	store    *storage.Store
	searcher *searcher.Searcher
	logger   *slog.Logger
}

// NewService wires a Service. A nil logger falls back to slog.Default().
func NewService(store *storage.Store, search *searcher.Searcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, searcher: search, logger: logger}
}

// Store validates, normalizes, and inserts a new knowledge item. Both
// dedup keys are checked inside the insert transaction; the title check
// runs first, so a double collision reports the title.
func (s *Service) Store(ctx context.Context, req StoreRequest) (WriteResult, error) {
	violations := validate.Store(validate.StoreInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Scope:   req.Scope,
	})
	if !violations.OK() {
		return WriteResult{}, newValidationError(violations)
	}

	now := time.Now().UTC()
	item := &storage.Item{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(req.Title),
		Content:         strings.TrimSpace(req.Content),
		Tags:            normalize.Tags(req.Tags),
		Scope:           normalize.Scope(req.Scope),
		NormalizedTitle: normalize.Title(req.Title),
		ContentHash:     normalize.HashContent(req.Content),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return WriteResult{}, newStorageError("store", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkCollisions(ctx, tx, item, ""); err != nil {
		return WriteResult{}, err
	}
	if err := tx.InsertItem(ctx, item); err != nil {
		return WriteResult{}, newStorageError("store", err)
	}
	if err := tx.Commit(); err != nil {
		return WriteResult{}, newStorageError("store", err)
	}

	s.searcher.Invalidate()
	s.logger.Info("knowledge stored", "id", item.ID, "scope", item.Scope)
	return WriteResult{Success: true, ID: item.ID, Message: "knowledge item stored"}, nil
}

// Update applies a partial update to an existing item. Supplied fields
// override stored values; derived fields are recomputed from the merged
// title/content; createdAt is never touched.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (WriteResult, error) {
	violations := validate.Update(validate.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Scope:   req.Scope,
	})
	if !violations.OK() {
		return WriteResult{}, newValidationError(violations)
	}

	existing, err := s.store.GetItem(ctx, req.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return WriteResult{}, newNotFoundError(req.ID)
	}
	if err != nil {
		return WriteResult{}, newStorageError("update", err)
	}

	merged := *existing
	if req.Title != nil {
		merged.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		merged.Content = strings.TrimSpace(*req.Content)
	}
	if req.Tags != nil {
		merged.Tags = normalize.Tags(*req.Tags)
	}
	if req.Scope != nil {
		merged.Scope = normalize.Scope(*req.Scope)
	}
	merged.NormalizedTitle = normalize.Title(merged.Title)
	merged.ContentHash = normalize.HashContent(merged.Content)
	merged.UpdatedAt = time.Now().UTC()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return WriteResult{}, newStorageError("update", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkCollisions(ctx, tx, &merged, merged.ID); err != nil {
		return WriteResult{}, err
	}
	if err := tx.UpdateItem(ctx, &merged); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return WriteResult{}, newNotFoundError(req.ID)
		}
		return WriteResult{}, newStorageError("update", err)
	}
	if err := tx.Commit(); err != nil {
		return WriteResult{}, newStorageError("update", err)
	}

	s.searcher.Invalidate()
	s.logger.Info("knowledge updated", "id", merged.ID, "scope", merged.Scope)
	return WriteResult{Success: true, ID: merged.ID, Message: "knowledge item updated"}, nil
}

// Search validates the query and limit, then delegates to the searcher.
// Out-of-range limits are clamped, never rejected.
func (s *Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	violations := validate.Query(req.Query)
	if !violations.OK() {
		return SearchResult{}, newValidationError(violations)
	}

	limit := validate.DefaultLimit
	if req.Limit != nil {
		limit = validate.ClampLimit(*req.Limit)
	}

	// An absent scope means no filter at all; only a supplied scope is
	// canonicalized and restricted to itself plus global.
	scope := strings.TrimSpace(req.Scope)
	if scope != "" {
		scope = normalize.Scope(scope)
	}

	resp, err := s.searcher.Search(ctx, searcher.Request{
		Query:       strings.TrimSpace(req.Query),
		ContextTags: normalize.Tags(req.ContextTags),
		Scope:       scope,
		Limit:       limit,
	})
	if err != nil {
		return SearchResult{}, newStorageError("search", err)
	}

	return SearchResult{Results: resp.Results, TotalMatches: resp.TotalMatches, Query: resp.Query}, nil
}

// checkCollisions enforces both per-scope dedup invariants against any row
// other than excludeID. Title collisions are checked, and reported, first.
func checkCollisions(ctx context.Context, tx *storage.Tx, item *storage.Item, excludeID string) error {
	existingID, err := tx.FindIDByNormalizedTitle(ctx, item.Scope, item.NormalizedTitle, excludeID)
	if err == nil {
		return newDuplicateError(CollisionTitle, existingID)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return newStorageError("collision check", err)
	}

	existingID, err = tx.FindIDByContentHash(ctx, item.Scope, item.ContentHash, excludeID)
	if err == nil {
		return newDuplicateError(CollisionContent, existingID)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return newStorageError("collision check", err)
	}
	return nil
}
