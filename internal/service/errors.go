package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrEmptyInput          = errors.New("input text is empty")
	ErrNoTargetLanguages   = errors.New("at least one target language is required")
	ErrProvider            = errors.New("external provider error")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrLedgerWriteConflict = errors.New("ledger write conflict")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("email already exists")
)

// InsufficientCreditsError reports the shortfall. It matches ErrInsufficientCredits.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

func providerError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProvider, op, err)
}
