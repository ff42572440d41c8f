// Package services implements the repository contract over gorm: durable
// storage for simulations, analyses, and pipeline runs.
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors returned by the service layer.
var (
	// ErrNotFound means the requested row does not exist (or storage is
	// degraded and reads fall back to not-found).
	ErrNotFound = errors.New("resource not found")
	// ErrStorageUnavailable means the backing store cannot accept writes.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports an invalid input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// missingTable reports whether err indicates the backing table is absent.
// Postgres reports undefined tables as SQLSTATE 42P01; SQLite says
// "no such table". Either way the repository degrades to read-only
// not-found semantics instead of failing the process.
func missingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "42P01") ||
		strings.Contains(msg, "no such table")
}

// readErr maps storage read failures to service errors.
func readErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || missingTable(err) {
		return ErrNotFound
	}
	return err
}
