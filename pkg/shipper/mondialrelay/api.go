package mondialrelay

import (
	"context"
)

// APIClient defines the interface for Mondial Relay API operations.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type APIClient interface {
	// CreateShipment registers shipments and returns the decoded carrier response.
	// Status entries are returned unclassified; HTTP and decoding failures are errors.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)
}

// VersionAPI is the API version sent in every request context.
const VersionAPI = "1.0"

// WeightUnitGrams is the only weight unit used on the wire.
const WeightUnitGrams = "gr"

// ============================================================================
// API Request/Response Types (match Mondial Relay shipment API structure)
// ============================================================================

// RequestContext carries credentials and locale for one request.
type RequestContext struct {
	Login      string
	Password   string
	CustomerID string
	Culture    string
	VersionAPI string
}

// ShipmentRequest represents a Mondial Relay shipment creation request.
type ShipmentRequest struct {
	Context   RequestContext
	Output    OutputOptions
	Shipments []Shipment
}

// Shipment is one shipment inside a creation request.
type Shipment struct {
	OrderNo             string
	CustomerNo          string
	ParcelCount         int
	DeliveryMode        DeliveryMode
	CollectionMode      CollectionMode
	Parcels             []Parcel
	DeliveryInstruction string
	Sender              Address
	Recipient           Address
}

// Parcel is a single physical package.
type Parcel struct {
	Content string
	Weight  Weight
}

// Weight is a parcel weight with its unit.
type Weight struct {
	Value int
	Unit  string
}

// Address represents a Mondial Relay address. Every field is always serialized.
type Address struct {
	Title       string
	Firstname   string
	Lastname    string
	Streetname  string
	AddressAdd1 string
	AddressAdd2 string
	CountryCode string
	PostCode    string
	City        string
	MobileNo    string
	Email       string
}

// ShipmentResponse is a decoded shipment creation response.
type ShipmentResponse struct {
	Statuses  []Status
	Shipments []ShipmentResult
}

// ShipmentResult is what the carrier returns for one created shipment.
type ShipmentResult struct {
	ShipmentNumber string
	// Label is the printable reference: a PDF URL or a QR/ZPL/IPL payload.
	Label string
	// RawContent is the opaque label payload as text, entities and CDATA resolved.
	RawContent string
}

// Result returns the first shipment of the response.
// A response without shipments means the carrier did not create anything.
func (r *ShipmentResponse) Result() (*ShipmentResult, error) {
	if r == nil || len(r.Shipments) == 0 {
		return nil, malformedError("shipment not created: response has no ShipmentsList/Shipment", nil)
	}
	res := r.Shipments[0]
	return &res, nil
}
