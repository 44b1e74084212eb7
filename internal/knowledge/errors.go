package knowledge

import (
	"errors"
	"fmt"

	"github.com/knowmem/knowmem-mcp/internal/validate"
)

// Kind is the stable machine-readable error code surfaced to callers.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindDuplicate  Kind = "duplicate_error"
	KindNotFound   Kind = "not_found_error"
	KindStorage    Kind = "storage_error"
)

// CollisionTitle and CollisionContent identify which dedup key a duplicate
// write collided on.
const (
	CollisionTitle   = "title"
	CollisionContent = "content"
)

// Error is the domain error carried across the service boundary: a stable
// kind, a human message, and a structured detail payload. Raw engine error
// text appears only in the storage kind.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// IsClientError reports whether the error is the caller's fault
// (validation, duplicate, not-found) rather than an operational failure.
// Client errors are never worth retrying with the same input.
func (e *Error) IsClientError() bool {
	return e.Kind != KindStorage
}

// AsError unwraps err to a domain *Error if it carries one.
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

func newValidationError(violations validate.Violations) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: violations.Summary(),
		Detail:  map[string]any{"violations": violations},
	}
}

func newDuplicateError(collision, existingID string) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Message: fmt.Sprintf("an item with the same %s already exists in this scope (id %s)", collision, existingID),
		Detail:  map[string]any{"collision": collision, "existing_id": existingID},
	}
}

func newNotFoundError(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("no knowledge item with id %s", id),
		Detail:  map[string]any{"id": id},
	}
}

func newStorageError(op string, cause error) *Error {
	return &Error{
		Kind:    KindStorage,
		Message: fmt.Sprintf("%s failed: %v", op, cause),
		Detail:  map[string]any{"op": op, "cause": cause.Error()},
		cause:   cause,
	}
}
