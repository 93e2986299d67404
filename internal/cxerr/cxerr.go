// Package cxerr classifies the error kinds the indexing and query core
// reports to its callers. Callers use errors.Is against
// the sentinel Kind values; wrapped errors retain %w-unwrapping to the
// underlying cause.
package cxerr

import (
	"errors"
	"fmt"
)

// Kind is a sentinel error classifying how a caller should react.
type Kind error

var (
	// InputInvalid marks malformed query parameters or missing
	// required input. Surfaced to callers as a client-side error.
	InputInvalid Kind = errors.New("input invalid")

	// NotFound marks an unknown repository or symbol. Callers should
	// render this as an empty result set, not an error, unless a
	// required input was missing (which is InputInvalid instead).
	NotFound Kind = errors.New("not found")

	// ParseDegraded marks an AST with parse errors; indexing proceeds
	// on the partially-recovered tree. Never surfaced to callers.
	ParseDegraded Kind = errors.New("parse degraded")

	// FileSkipped marks a read or decode failure on a single file.
	// Logged at warn, counted, never fails the run.
	FileSkipped Kind = errors.New("file skipped")

	// EmbedFailure marks an embedding batch failure after the single
	// halved-batch retry has also failed.
	EmbedFailure Kind = errors.New("embed failure")

	// CacheFailure marks an embedding cache operation failure. Never
	// propagates past the cache boundary; advisory only.
	CacheFailure Kind = errors.New("cache failure")

	// StoreConflict marks a relationship insert whose endpoints no
	// longer exist (a late race with concurrent deletion). Dropped
	// silently by the caller.
	StoreConflict Kind = errors.New("store conflict")

	// MigrationFailure marks a schema creation error. Fatal: the
	// process should exit non-zero.
	MigrationFailure Kind = errors.New("migration failure")

	// Cancelled marks a context cancellation observed by a worker.
	Cancelled Kind = errors.New("cancelled")
)

// Wrap attaches kind to err for errors.Is matching while preserving
// the original error in the chain via %w.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// New builds a new kind-classified error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
