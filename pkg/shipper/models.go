package shipper

import (
	"github.com/shopspring/decimal"
)

// DeliveryType is the delivery family chosen on the shipping option.
type DeliveryType string

const (
	DeliveryHome        DeliveryType = "home"
	DeliveryPickupPoint DeliveryType = "pickup_point"
)

// IsHome reports whether the parcel goes to the recipient's door.
func (t DeliveryType) IsHome() bool {
	return t == DeliveryHome
}

// CancelStatus is the outcome of a cancellation request.
type CancelStatus string

const (
	CancelStatusCancelled    CancelStatus = "cancelled"
	CancelStatusNotSupported CancelStatus = "not_supported"
)

// DocumentType identifies the kind of printable document requested.
type DocumentType string

const (
	DocumentFulfillment DocumentType = "fulfillment"
	DocumentReturn      DocumentType = "return"
	DocumentShipment    DocumentType = "shipment"
)

// Keys written into fulfillment data by carriers.
const (
	DataShipmentNumber     = "shipment_number"
	DataShipmentLabel      = "shipment_label"
	DataShipmentRawContent = "shipment_raw_content"
)

// Address represents a customer shipping address.
type Address struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Company     string `json:"company,omitempty"`
	Address1    string `json:"address_1"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code" validate:"omitempty,len=2,alpha"` // ISO 3166-1 alpha-2, any case
	Phone       string `json:"phone,omitempty"`
	// Locker marks a pickup-point address that is an automated locker.
	Locker bool `json:"is_locker,omitempty"`
}

// LineItem is a single order line.
type LineItem struct {
	ID       string `json:"id,omitempty"`
	Quantity int    `json:"quantity" validate:"gte=0"`
	// VariantWeight is the unit weight in grams; zero means unknown.
	VariantWeight float64 `json:"variant_weight,omitempty" validate:"gte=0"`
}

// Order is the subset of order state a carrier needs.
type Order struct {
	ID              string     `json:"id,omitempty"`
	DisplayID       string     `json:"display_id"`
	Email           string     `json:"email,omitempty"`
	ShippingAddress Address    `json:"shipping_address"`
	Items           []LineItem `json:"items,omitempty" validate:"dive"`
}

// ShippingOption is the shipping option selected for a fulfillment.
type ShippingOption struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"name,omitempty"`
	DeliveryType DeliveryType `json:"delivery_type" validate:"omitempty,oneof=home pickup_point"`
	PrintInStore bool         `json:"print_in_store,omitempty"`
}

// FulfillmentOption is an option a carrier exposes to the storefront.
type FulfillmentOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsReturn bool   `json:"is_return,omitempty"`
}

// Label is a carrier label attached to a fulfillment.
type Label struct {
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
	LabelURL       string `json:"label_url"`
}

// Document is a printable artifact attached to a fulfillment.
type Document struct {
	Type DocumentType `json:"type"`
	URL  string       `json:"url,omitempty"`
	Data string       `json:"data,omitempty"`
}

// ============================================================================
// Request/Response Types
// ============================================================================

// PriceRequest is the request for quoting a delivery price.
type PriceRequest struct {
	ShippingOption ShippingOption `json:"shipping_option"`
	Items          []LineItem     `json:"items" validate:"dive"`
	CountryCode    string         `json:"country_code" validate:"omitempty,len=2,alpha"`
}

// PriceResponse is a computed delivery price.
type PriceResponse struct {
	Carrier      string          `json:"carrier"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	TaxInclusive bool            `json:"tax_inclusive"`
	Source       string          `json:"source"`
	WeightGrams  int             `json:"weight_grams"`
}

// FulfillmentRequest carries everything needed to register a shipment.
type FulfillmentRequest struct {
	FulfillmentID  string         `json:"fulfillment_id" validate:"required"`
	Order          Order          `json:"order"`
	Items          []LineItem     `json:"items" validate:"dive"`
	ShippingOption ShippingOption `json:"shipping_option"`
	// PickupPointID is the relay point picked on the storefront, if any.
	PickupPointID string `json:"pickup_point_id,omitempty"`
	// Data is the fulfillment data already stored by the caller.
	Data map[string]string `json:"data,omitempty"`
}

// ShipmentItems returns the items being shipped, falling back to the
// order's items when the fulfillment lists none.
func (r *FulfillmentRequest) ShipmentItems() []LineItem {
	if len(r.Items) > 0 {
		return r.Items
	}
	return r.Order.Items
}

// FulfillmentResponse is the result of a shipment registration.
type FulfillmentResponse struct {
	Data   map[string]string `json:"data"`
	Labels []Label           `json:"labels"`
}

// CancelRequest is the request for cancelling a fulfillment.
type CancelRequest struct {
	FulfillmentID string            `json:"fulfillment_id"`
	Data          map[string]string `json:"data,omitempty"`
}

// CancelResponse is the outcome of a cancellation.
type CancelResponse struct {
	FulfillmentID string       `json:"fulfillment_id"`
	Status        CancelStatus `json:"status"`
	Message       string       `json:"message,omitempty"`
}

// DocumentsRequest asks for documents attached to a fulfillment.
type DocumentsRequest struct {
	Type DocumentType      `json:"type"`
	Data map[string]string `json:"data,omitempty"`
}
