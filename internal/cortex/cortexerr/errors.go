// Package cortexerr defines the sentinel error taxonomy shared across
// CORTEX components, following the wrap/sentinel idiom of
// internal/storage/sqlite's wrapDBError.
package cortexerr

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageIO covers I/O failures from the engram store.
	ErrStorageIO = errors.New("storage I/O error")

	// ErrChainLocked is returned by Put when a concurrent append holds
	// the per-tenant chain lock. Callers must retry.
	ErrChainLocked = errors.New("chain locked: concurrent append in progress")

	// ErrUnknownID is returned by get/confirm/contradict for an id that
	// does not exist. Not an exceptional condition.
	ErrUnknownID = errors.New("unknown engram id")

	// ErrWindowExpired is returned by confirm/contradict when the
	// labile window already swept out.
	ErrWindowExpired = errors.New("labile window expired")

	// ErrTimeout is returned when a caller-supplied deadline is missed.
	// No partial mutation occurs.
	ErrTimeout = errors.New("operation deadline exceeded")

	// ErrIndexUnavailable is returned by search operations when the
	// vector index cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrInvalidConfig is a construction-time failure: bad vigilance,
	// wrong vector dimension, etc. Fails loudly at construction, never
	// at request time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidation covers request-shape failures (empty content,
	// wrong vector dimension on store).
	ErrValidation = errors.New("validation error")

	// ErrChainBroken is returned by put when the tenant's latest chain
	// row no longer matches its recomputed hash. verify_chain reports a
	// break as valid=false plus the first broken id instead.
	ErrChainBroken = errors.New("hash chain integrity broken")
)

// Wrap adds operation context to an error, preserving errors.Is/As
// against the sentinel.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Wrapf adds formatted operation context to an error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether err is or wraps target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
