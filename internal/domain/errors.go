package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrSizeExceeded marks a file over the upload limit
	ErrSizeExceeded = errors.New("file size limit exceeded")

	// ErrPartialAccessDenied is returned by bulk operations when at least one
	// id does not resolve to a node owned by the caller. Nothing is applied.
	ErrPartialAccessDenied = errors.New("some nodes not found or access denied")

	// ErrStorageFailure wraps blob store read/write errors
	ErrStorageFailure = errors.New("storage failure")

	// Share resolution failures. Both are not-found conditions.
	ErrShareNotFound         = fmt.Errorf("share link %w", ErrNotFound)
	ErrFolderNotFoundInScope = fmt.Errorf("folder %w", ErrNotFound)
)

// ConflictError represents a sibling name collision with details about the existing node
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // folder, file, dataroom
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewNameConflict builds the conflict returned when a sibling already uses name
func NewNameConflict(name, resourceType, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a file or folder named %q already exists in this location", name),
		ResourceType: resourceType,
		ResourceID:   existingID,
	}
}
