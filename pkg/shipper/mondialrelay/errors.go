package mondialrelay

import (
	"fmt"

	"github.com/tournevent/mondialrelay/pkg/shipper"
)

// Error codes used for failures that don't come from a carrier status entry.
const (
	CodeTransport = "TRANSPORT"
	CodeHTTP      = "HTTP_STATUS"
	CodeMalformed = "MALFORMED_RESPONSE"
)

func transportError(message string, cause error) *shipper.ShipperError {
	wrapped := shipper.ErrTransport
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", shipper.ErrTransport, cause)
	}
	return shipper.NewShipperError(carrierName, CodeTransport, message).WithCause(wrapped)
}

func httpStatusError(status int, body string) *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, CodeHTTP, fmt.Sprintf("unexpected HTTP status %d", status)).
		WithStatusCode(status).
		WithCause(fmt.Errorf("%w: %s", shipper.ErrTransport, body))
}

func malformedError(message string, cause error) *shipper.ShipperError {
	wrapped := shipper.ErrMalformedResponse
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", shipper.ErrMalformedResponse, cause)
	}
	return shipper.NewShipperError(carrierName, CodeMalformed, message).WithCause(wrapped)
}

func carrierError(s Status) *shipper.ShipperError {
	return shipper.NewShipperError(carrierName, s.Code, s.Message).WithCause(shipper.ErrCarrierRejected)
}
