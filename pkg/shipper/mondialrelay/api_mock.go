package mondialrelay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration
	// Warnings are added to the status list of every default response.
	Warnings []Status

	OnCreateShipment func(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error)

	mu       sync.Mutex
	requests []*ShipmentRequest
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateShipment returns a mock shipment.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return nil, transportError("request cancelled", ctx.Err())
		}
	}

	if m.SimulateErrors {
		return nil, transportError("simulated API error", nil)
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	number := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	label := fmt.Sprintf("https://www.mondialrelay.fr/etiquette/%s.pdf", number)
	if req.Output.Type() == OutputQRCode {
		label = "MR-QR-" + number
	}

	return &ShipmentResponse{
		Statuses: append([]Status(nil), m.Warnings...),
		Shipments: []ShipmentResult{
			{
				ShipmentNumber: number,
				Label:          label,
				RawContent:     "mock-label-" + number,
			},
		},
	}, nil
}

// Requests returns the requests received so far.
func (m *MockAPIClient) Requests() []*ShipmentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*ShipmentRequest(nil), m.requests...)
}

var _ APIClient = (*MockAPIClient)(nil)
