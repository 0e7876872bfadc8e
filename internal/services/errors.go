package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every service. Handlers map these to HTTP statuses.
var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrDuplicateIdentity        = errors.New("identity already registered")
	ErrNotFound                 = errors.New("not found")
	ErrUpstreamProcessingFailed = errors.New("upstream processing failed")
	ErrUnauthenticated          = errors.New("could not validate credentials")
	ErrDeliveryFailed           = errors.New("message delivery failed")
)

// Specific input errors. Each one wraps ErrInvalidInput.
var (
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	ErrNoInput          = fmt.Errorf("%w: provide either input_text or audio", ErrInvalidInput)
	ErrBothInputs       = fmt.Errorf("%w: provide only one of input_text or audio", ErrInvalidInput)
	ErrUnknownProvider  = fmt.Errorf("%w: unknown oauth provider", ErrInvalidInput)
	ErrMissingCode      = fmt.Errorf("%w: authorization code is required", ErrInvalidInput)
)

// Token failures. Each one wraps ErrUnauthenticated so callers outside the
// token service see a single outcome.
var (
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenMalformed        = fmt.Errorf("%w: token malformed", ErrUnauthenticated)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: token signature invalid", ErrUnauthenticated)
)
