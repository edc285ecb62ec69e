// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tournevent/mondialrelay/pkg/shipper"
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// PriceErr, when set, is returned by CalculatePrice.
	PriceErr error
	// Amount is the quoted price; defaults to 9.90.
	Amount decimal.Decimal
}

var _ shipper.Shipper = (*Client)(nil)

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name, Amount: decimal.RequireFromString("9.90")}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// FulfillmentOptions returns a single mock option.
func (c *Client) FulfillmentOptions(ctx context.Context) ([]shipper.FulfillmentOption, error) {
	return []shipper.FulfillmentOption{
		{ID: c.name + "-fulfillment", Name: fmt.Sprintf("%s Standard", c.name)},
	}, nil
}

// CanCalculate always returns true.
func (c *Client) CanCalculate(ctx context.Context, opt *shipper.FulfillmentOption) bool {
	return true
}

// CalculatePrice returns the configured mock price.
func (c *Client) CalculatePrice(ctx context.Context, req *shipper.PriceRequest) (*shipper.PriceResponse, error) {
	if c.PriceErr != nil {
		return nil, c.PriceErr
	}
	return &shipper.PriceResponse{
		Carrier:      c.name,
		Amount:       c.Amount,
		Currency:     "EUR",
		TaxInclusive: true,
		Source:       "mock",
	}, nil
}

// CreateFulfillment creates a mock shipment.
func (c *Client) CreateFulfillment(ctx context.Context, req *shipper.FulfillmentRequest) (*shipper.FulfillmentResponse, error) {
	number := fmt.Sprintf("%s-%d", c.name, time.Now().UnixNano()%100000000)
	label := fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, number)
	return &shipper.FulfillmentResponse{
		Data: map[string]string{
			shipper.DataShipmentNumber: number,
			shipper.DataShipmentLabel:  label,
		},
		Labels: []shipper.Label{{TrackingNumber: number, LabelURL: label}},
	}, nil
}

// CreateReturnFulfillment creates a mock return shipment.
func (c *Client) CreateReturnFulfillment(ctx context.Context, req *shipper.FulfillmentRequest) (*shipper.FulfillmentResponse, error) {
	return c.CreateFulfillment(ctx, req)
}

// CancelFulfillment cancels a mock shipment.
func (c *Client) CancelFulfillment(ctx context.Context, req *shipper.CancelRequest) (*shipper.CancelResponse, error) {
	return &shipper.CancelResponse{
		FulfillmentID: req.FulfillmentID,
		Status:        shipper.CancelStatusCancelled,
	}, nil
}

// Documents returns no documents.
func (c *Client) Documents(ctx context.Context, req *shipper.DocumentsRequest) ([]shipper.Document, error) {
	return []shipper.Document{}, nil
}
