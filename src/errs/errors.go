// Package errs holds the error taxonomy shared by the relay components.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a trading pair (or any keyed record) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record with the same key already exists.
	ErrConflict = errors.New("conflict")
)

// Error codes written to ActivityLog.ErrorCode.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeConfigResolution = "CONFIG_RESOLUTION_ERROR"
	CodeCredential       = "CREDENTIAL_ERROR"
	CodeSignature        = "SIGNATURE_ERROR"
	CodeExchange         = "EXCHANGE_ERROR"
	CodePersistence      = "PERSISTENCE_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
)

// ValidationError is a client fault: the inbound payload is malformed.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigResolutionError wraps a trading-pair lookup failure. It is recovered by
// falling back to the global configuration and never reaches a caller.
type ConfigResolutionError struct {
	Symbol string
	Err    error
}

func (e *ConfigResolutionError) Error() string {
	return fmt.Sprintf("resolve trading pair %s: %v", e.Symbol, e.Err)
}

func (e *ConfigResolutionError) Unwrap() error { return e.Err }

// CredentialError means no usable exchange key pair could be loaded.
type CredentialError struct {
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credential error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("credential error: %s", e.Message)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// SignatureError means the request could not be signed with the loaded key.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("failed to generate API signature: %v", e.Err)
}

func (e *SignatureError) Unwrap() error { return e.Err }

// ExchangeError is raised when the exchange rejected a request or was unreachable.
type ExchangeError struct {
	StatusCode int
	Body       string
	Reason     string
	Err        error
}

func (e *ExchangeError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("exchange error: %v", e.Err)
	case e.Reason != "":
		return fmt.Sprintf("exchange error: HTTP %d: %s", e.StatusCode, e.Reason)
	default:
		return fmt.Sprintf("exchange error: HTTP %d: %s", e.StatusCode, e.Body)
	}
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// PersistenceError is returned by durable stores when a write or read fails.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Code classifies err into one of the Code* constants.
func Code(err error) string {
	var (
		validationErr  *ValidationError
		resolutionErr  *ConfigResolutionError
		credentialErr  *CredentialError
		signatureErr   *SignatureError
		exchangeErr    *ExchangeError
		persistenceErr *PersistenceError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return CodeValidation
	case errors.As(err, &credentialErr):
		return CodeCredential
	case errors.As(err, &signatureErr):
		return CodeSignature
	case errors.As(err, &exchangeErr):
		return CodeExchange
	case errors.As(err, &resolutionErr):
		return CodeConfigResolution
	case errors.As(err, &persistenceErr):
		return CodePersistence
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}
