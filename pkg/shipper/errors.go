package shipper

import (
	"errors"
	"fmt"
)

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError.
func (e *ShipperError) Is(target error) bool {
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// Sentinel errors for common fulfillment scenarios.
var (
	// ErrTransport indicates the HTTP exchange with the carrier failed.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse indicates the carrier response could not be understood.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrCarrierRejected indicates the carrier answered with an error status.
	ErrCarrierRejected = errors.New("carrier rejected request")

	// ErrNotSupported indicates the carrier does not offer the operation.
	ErrNotSupported = errors.New("operation not supported")

	// ErrInvalidRequest indicates the request failed validation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// Error types used as metric labels.
const (
	ErrorTypeTransport = "transport"
	ErrorTypeMalformed = "malformed_response"
	ErrorTypeCarrier   = "carrier"
	ErrorTypeInvalid   = "invalid_request"
	ErrorTypeNotFound  = "not_found"
	ErrorTypeUnknown   = "unknown"
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return false
}

// ErrorType classifies err for metrics and logs.
func ErrorType(err error) string {
	switch {
	case errors.Is(err, ErrTransport):
		return ErrorTypeTransport
	case errors.Is(err, ErrMalformedResponse):
		return ErrorTypeMalformed
	case errors.Is(err, ErrCarrierRejected):
		return ErrorTypeCarrier
	case errors.Is(err, ErrInvalidRequest):
		return ErrorTypeInvalid
	case errors.Is(err, ErrCarrierNotFound):
		return ErrorTypeNotFound
	default:
		return ErrorTypeUnknown
	}
}
