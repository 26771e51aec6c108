package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAccountRequired = errors.New("account required")

	// ErrAdmissionDenied is the parent of every admission gate refusal, so
	// callers can match the whole class with errors.Is.
	ErrAdmissionDenied = errors.New("admission denied")
	ErrQuotaExhausted  = fmt.Errorf("%w: quota exhausted", ErrAdmissionDenied)
	ErrTrialExhausted  = fmt.Errorf("%w: guest trial exhausted", ErrAdmissionDenied)
	ErrProfileMissing  = fmt.Errorf("%w: profile missing", ErrAdmissionDenied)

	ErrNoCredential      = errors.New("no api key configured")
	ErrInvalidCredential = errors.New("invalid api key")
	ErrProviderFailure   = errors.New("provider failure")
)
