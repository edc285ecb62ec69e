package mondialrelay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/mondialrelay/pkg/shipper"
	"github.com/tournevent/mondialrelay/pkg/shipper/mondialrelay"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

type recordingMetrics struct {
	warnings []string
	sources  []string
}

func (m *recordingMetrics) RecordCarrierWarning(carrier, code string) {
	m.warnings = append(m.warnings, code)
}

func (m *recordingMetrics) RecordPriceSource(carrier, source string) {
	m.sources = append(m.sources, source)
}

func (m *recordingMetrics) RecordBreakerState(carrier, state string) {}

func testConfig() mondialrelay.Config {
	return mondialrelay.Config{
		Login:      "BDTEST@business-api.mondialrelay.com",
		Password:   "secret",
		CustomerID: "BDTEST",
		Culture:    "fr-FR",
		Business: mondialrelay.BusinessAddress{
			Firstname:      "Boutique",
			Streetname:     "1 rue de la Paix",
			CountryCode:    "FR",
			PostCode:       "75002",
			City:           "Paris",
			Email:          "shop@example.com",
			ReturnLocation: "FR-066974",
		},
	}
}

func newTestClient(mockClient *mondialrelay.MockAPIClient, opts ...mondialrelay.Option) *mondialrelay.Client {
	logger := otelzap.New(zap.NewNop())
	return mondialrelay.NewWithAPIClient(testConfig(), mockClient, logger, nil, opts...)
}

func fulfillmentRequest() *shipper.FulfillmentRequest {
	return &shipper.FulfillmentRequest{
		FulfillmentID: "ful_01HX",
		Order: shipper.Order{
			ID:        "order_01",
			DisplayID: "1042",
			Email:     "jeanne@example.com",
			ShippingAddress: shipper.Address{
				FirstName:   "Jeanne",
				LastName:    "Dupont",
				Address1:    "12 avenue Foch",
				Address2:    "020340",
				City:        "Lyon",
				PostalCode:  "69006",
				CountryCode: "fr",
				Phone:       "+33600000000",
			},
		},
		Items: []shipper.LineItem{
			{ID: "item_1", Quantity: 2, VariantWeight: 600},
			{ID: "item_2", Quantity: 1},
		},
		ShippingOption: shipper.ShippingOption{DeliveryType: shipper.DeliveryPickupPoint},
		Data:           map[string]string{"parcel_shop_name": "Tabac du Centre"},
	}
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(mondialrelay.NewMockAPIClient())
	assert.Equal(t, "mondialrelay", client.Name())
}

func TestClient_FulfillmentOptions(t *testing.T) {
	client := newTestClient(mondialrelay.NewMockAPIClient())

	opts, err := client.FulfillmentOptions(context.Background())
	require.NoError(t, err)
	require.Len(t, opts, 2)
	assert.Equal(t, mondialrelay.OptionFulfillment, opts[0].ID)
	assert.False(t, opts[0].IsReturn)
	assert.Equal(t, mondialrelay.OptionReturn, opts[1].ID)
	assert.True(t, opts[1].IsReturn)

	assert.True(t, client.CanCalculate(context.Background(), &opts[0]))
}

func TestClient_CreateFulfillment_PickupPoint(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	resp, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())
	require.NoError(t, err)

	number := resp.Data[shipper.DataShipmentNumber]
	assert.NotEmpty(t, number)
	assert.NotEmpty(t, resp.Data[shipper.DataShipmentLabel])
	assert.NotEmpty(t, resp.Data[shipper.DataShipmentRawContent])
	assert.Equal(t, "Tabac du Centre", resp.Data["parcel_shop_name"], "existing data is kept")

	require.Len(t, resp.Labels, 1)
	assert.Equal(t, number, resp.Labels[0].TrackingNumber)
	assert.Empty(t, resp.Labels[0].TrackingURL)
	assert.Equal(t, resp.Data[shipper.DataShipmentLabel], resp.Labels[0].LabelURL)

	requests := mockAPI.Requests()
	require.Len(t, requests, 1)
	req := requests[0]

	assert.Equal(t, "BDTEST", req.Context.CustomerID)
	assert.Equal(t, "1.0", req.Context.VersionAPI)
	assert.Equal(t, "PdfUrl", req.Output.Type())
	assert.Equal(t, "A4", req.Output.Format())

	require.Len(t, req.Shipments, 1)
	s := req.Shipments[0]
	assert.Equal(t, "1042", s.OrderNo)
	assert.Empty(t, s.CustomerNo)
	assert.Equal(t, 1, s.ParcelCount)
	assert.Equal(t, "24R", s.DeliveryMode.Mode())
	assert.Equal(t, "FR-020340", s.DeliveryMode.Location(), "pickup point recovered from address line 2")
	assert.Equal(t, "REL", s.CollectionMode.Mode())

	require.Len(t, s.Parcels, 1)
	assert.Equal(t, "ful_01HX", s.Parcels[0].Content)
	assert.Equal(t, mondialrelay.Weight{Value: 1700, Unit: "gr"}, s.Parcels[0].Weight)

	assert.Equal(t, "Boutique", s.Sender.Firstname)
	assert.Equal(t, "Jeanne", s.Recipient.Firstname)
	assert.Equal(t, "12 avenue Foch", s.Recipient.Streetname)
	assert.Equal(t, "jeanne@example.com", s.Recipient.Email)
	assert.Equal(t, "+33600000000", s.Recipient.MobileNo)
}

func TestClient_CreateFulfillment_StorefrontPickupPointWins(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.PickupPointID = "BE-112233"

	_, err := client.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "BE-112233", mockAPI.Requests()[0].Shipments[0].DeliveryMode.Location())
}

func TestClient_CreateFulfillment_Locker(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.Order.ShippingAddress.Locker = true

	_, err := client.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)

	mode := mockAPI.Requests()[0].Shipments[0].DeliveryMode
	assert.Equal(t, "24C", mode.Mode())
	assert.Equal(t, "FR-020340", mode.Location())
}

func TestClient_CreateFulfillment_HomeDeliveryInStore(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.ShippingOption = shipper.ShippingOption{DeliveryType: shipper.DeliveryHome, PrintInStore: true}

	resp, err := client.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)

	sent := mockAPI.Requests()[0]
	assert.Equal(t, "QRCode", sent.Output.Type())
	assert.Empty(t, sent.Output.Format())
	assert.Equal(t, "HOM", sent.Shipments[0].DeliveryMode.Mode())
	assert.Empty(t, sent.Shipments[0].DeliveryMode.Location())
	assert.Contains(t, resp.Labels[0].LabelURL, "MR-QR-")
}

func TestClient_CreateFulfillment_WarningsAreNotFatal(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.Warnings = []mondialrelay.Status{{Code: "20001", Level: "Warning", Message: "Adresse approximative"}}
	metrics := &recordingMetrics{}
	client := newTestClient(mockAPI, mondialrelay.WithMetrics(metrics))

	resp, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Data[shipper.DataShipmentNumber])
	assert.Equal(t, []string{"20001"}, metrics.warnings)
}

func TestClient_CreateFulfillment_CarrierError(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *mondialrelay.ShipmentRequest) (*mondialrelay.ShipmentResponse, error) {
		return &mondialrelay.ShipmentResponse{
			Statuses: []mondialrelay.Status{
				{Code: "10001", Level: "Error", Message: "Invalid postcode"},
			},
			Shipments: []mondialrelay.ShipmentResult{{ShipmentNumber: "SHOULD-NOT-LEAK"}},
		}, nil
	}
	client := newTestClient(mockAPI)

	resp, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, shipper.ErrCarrierRejected)
	assert.Contains(t, err.Error(), "Invalid postcode")
}

func TestClient_CreateFulfillment_MissingShipmentsList(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *mondialrelay.ShipmentRequest) (*mondialrelay.ShipmentResponse, error) {
		return &mondialrelay.ShipmentResponse{}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrMalformedResponse)
}

func TestClient_CreateFulfillment_NoLabel(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *mondialrelay.ShipmentRequest) (*mondialrelay.ShipmentResponse, error) {
		return &mondialrelay.ShipmentResponse{
			Shipments: []mondialrelay.ShipmentResult{{ShipmentNumber: "99"}},
		}, nil
	}
	client := newTestClient(mockAPI)

	resp, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.NoError(t, err)
	assert.Equal(t, "99", resp.Data[shipper.DataShipmentNumber])
	assert.Empty(t, resp.Labels)
}

func TestClient_CreateFulfillment_APIError(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrTransport)
}

func TestClient_CreateFulfillment_InvalidRequest(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.FulfillmentID = ""

	_, err := client.CreateFulfillment(context.Background(), req)

	assert.ErrorIs(t, err, shipper.ErrInvalidRequest)
	assert.Empty(t, mockAPI.Requests(), "invalid requests never reach the carrier")
}

func TestClient_CreateReturnFulfillment(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.PickupPointID = "FR-999999"

	resp, err := client.CreateReturnFulfillment(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Data[shipper.DataShipmentNumber])
	assert.Len(t, resp.Labels, 1)

	s := mockAPI.Requests()[0].Shipments[0]
	assert.Equal(t, "Jeanne", s.Sender.Firstname, "customer sends the return")
	assert.Equal(t, "Boutique", s.Recipient.Firstname)
	assert.Equal(t, "24R", s.DeliveryMode.Mode())
	assert.Equal(t, "FR-066974", s.DeliveryMode.Location(), "returns go to the configured location")
}

func TestClient_CreateReturnFulfillment_Home(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockAPI)

	req := fulfillmentRequest()
	req.ShippingOption.DeliveryType = shipper.DeliveryHome

	_, err := client.CreateReturnFulfillment(context.Background(), req)
	require.NoError(t, err)

	mode := mockAPI.Requests()[0].Shipments[0].DeliveryMode
	assert.Equal(t, "HOM", mode.Mode())
	assert.Empty(t, mode.Location())
}

func TestClient_CancelFulfillment_NeverCallsCarrier(t *testing.T) {
	mockAPI := mondialrelay.NewMockAPIClient()
	mockAPI.OnCreateShipment = func(ctx context.Context, req *mondialrelay.ShipmentRequest) (*mondialrelay.ShipmentResponse, error) {
		t.Fatal("cancel must not reach the carrier")
		return nil, errors.New("unreachable")
	}
	client := newTestClient(mockAPI)

	for _, req := range []*shipper.CancelRequest{
		{FulfillmentID: "ful_01"},
		{},
		{FulfillmentID: "ful_02", Data: map[string]string{shipper.DataShipmentNumber: "123"}},
	} {
		resp, err := client.CancelFulfillment(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, shipper.CancelStatusNotSupported, resp.Status)
		assert.Equal(t, req.FulfillmentID, resp.FulfillmentID)
	}
	assert.Empty(t, mockAPI.Requests())
}

func TestClient_Documents(t *testing.T) {
	client := newTestClient(mondialrelay.NewMockAPIClient())

	for _, typ := range []shipper.DocumentType{shipper.DocumentFulfillment, shipper.DocumentReturn, shipper.DocumentShipment} {
		docs, err := client.Documents(context.Background(), &shipper.DocumentsRequest{Type: typ})
		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	}
}

func TestClient_CalculatePrice(t *testing.T) {
	tests := []struct {
		name   string
		option shipper.ShippingOption
		items  []shipper.LineItem
		want   string
	}{
		{
			name:   "pickup point 400g",
			option: shipper.ShippingOption{DeliveryType: shipper.DeliveryPickupPoint},
			items:  []shipper.LineItem{{Quantity: 1, VariantWeight: 400}},
			want:   "4.95",
		},
		{
			name:   "pickup point 1800g",
			option: shipper.ShippingOption{DeliveryType: shipper.DeliveryPickupPoint},
			items:  []shipper.LineItem{{Quantity: 3, VariantWeight: 600}},
			want:   "6.95",
		},
		{
			name:   "home 1800g",
			option: shipper.ShippingOption{DeliveryType: shipper.DeliveryHome},
			items:  []shipper.LineItem{{Quantity: 3, VariantWeight: 600}},
			want:   "9.95",
		},
		{
			name:   "option named domicile is home",
			option: shipper.ShippingOption{Name: "Mondial Relay Domicile"},
			items:  []shipper.LineItem{{Quantity: 3, VariantWeight: 600}},
			want:   "9.95",
		},
		{
			name:   "empty cart defaults to 500g",
			option: shipper.ShippingOption{},
			want:   "4.95",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordingMetrics{}
			client := newTestClient(mondialrelay.NewMockAPIClient(), mondialrelay.WithMetrics(metrics))

			resp, err := client.CalculatePrice(context.Background(), &shipper.PriceRequest{
				ShippingOption: tt.option,
				Items:          tt.items,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Amount.StringFixed(2))
			assert.Equal(t, "EUR", resp.Currency)
			assert.True(t, resp.TaxInclusive)
			assert.Equal(t, "fallback", resp.Source)
			assert.Equal(t, []string{"fallback"}, metrics.sources)
		})
	}
}

func TestClient_CalculatePrice_ExternalLookup(t *testing.T) {
	lookup := &stubLookup{price: decimal.RequireFromString("4.40"), ok: true}
	client := newTestClient(mondialrelay.NewMockAPIClient(), mondialrelay.WithPriceLookup(lookup))

	resp, err := client.CalculatePrice(context.Background(), &shipper.PriceRequest{
		ShippingOption: shipper.ShippingOption{DeliveryType: shipper.DeliveryHome},
		Items:          []shipper.LineItem{{Quantity: 1, VariantWeight: 400}},
		CountryCode:    "fr",
	})

	require.NoError(t, err)
	assert.Equal(t, "7.40", resp.Amount.StringFixed(2))
	assert.Equal(t, "external", resp.Source)
	assert.Equal(t, 400, resp.WeightGrams)
}

func TestClient_CalculatePrice_InvalidItems(t *testing.T) {
	client := newTestClient(mondialrelay.NewMockAPIClient())

	_, err := client.CalculatePrice(context.Background(), &shipper.PriceRequest{
		Items: []shipper.LineItem{{Quantity: 1, VariantWeight: -10}},
	})

	assert.ErrorIs(t, err, shipper.ErrInvalidRequest)
}

func TestNew_UseMock(t *testing.T) {
	cfg := testConfig()
	cfg.UseMock = true
	client := mondialrelay.New(cfg, otelzap.New(zap.NewNop()), nil)

	resp, err := client.CreateFulfillment(context.Background(), fulfillmentRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Data[shipper.DataShipmentNumber])
	require.Len(t, resp.Labels, 1)
}

func TestClient_CreateFulfillment_OrderItemsFallback(t *testing.T) {
	mockClient := mondialrelay.NewMockAPIClient()
	client := newTestClient(mockClient)
	req := fulfillmentRequest()
	req.Order.Items = req.Items
	req.Items = nil

	_, err := client.CreateFulfillment(context.Background(), req)
	require.NoError(t, err)

	requests := mockClient.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, 1700, requests[0].Shipments[0].Parcels[0].Weight.Value)
}
