package core

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across the store and the HTTP layer.
var (
	// ErrNotFound means a referenced user or record does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated
	// (currently only the user remotejid).
	ErrConflict = errors.New("conflict")
)

// ValidationError marks malformed input that was rejected before
// reaching the store.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %v", e.Err)
	}
	return fmt.Sprintf("validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PremiumExpiredError is the premium gate rejection. It carries the
// expiration timestamp and plan tag so the caller can render an
// actionable access-denied response.
type PremiumExpiredError struct {
	PremiumUntil *time.Time
	PlanType     PlanType
}

func (e *PremiumExpiredError) Error() string {
	if e.PremiumUntil == nil {
		return "premium expired: no active subscription"
	}
	return fmt.Sprintf("premium expired at %s", e.PremiumUntil.Format(time.RFC3339))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
