// Package shipper provides an abstraction layer for fulfillment carriers.
package shipper

import (
	"context"
)

// Shipper defines the interface that all fulfillment carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "mondialrelay").
	Name() string

	// FulfillmentOptions lists the shipping options the carrier offers.
	FulfillmentOptions(ctx context.Context) ([]FulfillmentOption, error)

	// CanCalculate reports whether the carrier computes prices itself.
	CanCalculate(ctx context.Context, opt *FulfillmentOption) bool

	// CalculatePrice quotes a delivery price for a cart.
	CalculatePrice(ctx context.Context, req *PriceRequest) (*PriceResponse, error)

	// CreateFulfillment registers an outbound shipment with the carrier.
	CreateFulfillment(ctx context.Context, req *FulfillmentRequest) (*FulfillmentResponse, error)

	// CreateReturnFulfillment registers a customer-to-merchant return shipment.
	CreateReturnFulfillment(ctx context.Context, req *FulfillmentRequest) (*FulfillmentResponse, error)

	// CancelFulfillment cancels a shipment, where the carrier allows it.
	CancelFulfillment(ctx context.Context, req *CancelRequest) (*CancelResponse, error)

	// Documents returns printable documents attached to a fulfillment.
	Documents(ctx context.Context, req *DocumentsRequest) ([]Document, error)
}
