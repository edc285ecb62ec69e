// Package mondialrelay provides integration with the Mondial Relay shipment API.
package mondialrelay

import (
	"context"
	"strings"
	"time"

	"github.com/tournevent/mondialrelay/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "mondialrelay"

// Fulfillment option identifiers.
const (
	OptionFulfillment = "mondialrelay-fulfillment"
	OptionReturn      = "mondialrelay-fulfillment-return"
)

// Config holds Mondial Relay configuration.
type Config struct {
	BaseURL    string
	Login      string
	Password   string
	CustomerID string
	Culture    string
	Timeout    time.Duration
	RetryDelay time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration

	Business BusinessAddress
	UseMock  bool
}

// MetricsRecorder receives carrier-level measurements.
type MetricsRecorder interface {
	RecordCarrierWarning(carrier, code string)
	RecordPriceSource(carrier, source string)
	RecordBreakerState(carrier, state string)
}

// Option configures a Client.
type Option func(*Client)

// WithPriceLookup sets the external price table tried before the fallback tiers.
func WithPriceLookup(lookup PriceLookup) Option {
	return func(c *Client) { c.priceLookup = lookup }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// Client is the Mondial Relay shipper client.
type Client struct {
	config      Config
	apiClient   APIClient
	pricing     *PricingEngine
	priceLookup PriceLookup
	metrics     MetricsRecorder
	logger      *otelzap.Logger
	tracer      trace.Tracer
}

var _ shipper.Shipper = (*Client)(nil)

// New creates a new Mondial Relay client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer, opts ...Option) *Client {
	c := newClient(cfg, nil, logger, tracer, opts)

	if cfg.UseMock {
		c.apiClient = NewMockAPIClient()
	} else {
		c.apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:         cfg.BaseURL,
			Timeout:         cfg.Timeout,
			RetryDelay:      cfg.RetryDelay,
			BreakerFailures: cfg.BreakerFailures,
			BreakerTimeout:  cfg.BreakerTimeout,
			OnBreakerStateChange: func(from, to string) {
				logger.Warn("Mondial Relay circuit breaker state changed",
					zap.String("from", from),
					zap.String("to", to),
				)
				if c.metrics != nil {
					c.metrics.RecordBreakerState(carrierName, to)
				}
			},
		})
	}

	return c
}

// NewWithAPIClient creates a new Mondial Relay client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer, opts ...Option) *Client {
	return newClient(cfg, apiClient, logger, tracer, opts)
}

func newClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer, opts []Option) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	c := &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pricing = NewPricingEngine(c.priceLookup, logger)
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// FulfillmentOptions lists the outbound and return options.
func (c *Client) FulfillmentOptions(ctx context.Context) ([]shipper.FulfillmentOption, error) {
	return []shipper.FulfillmentOption{
		{ID: OptionFulfillment, Name: "Mondial Relay - Point Relais"},
		{ID: OptionReturn, Name: "Mondial Relay - Retour", IsReturn: true},
	}, nil
}

// CanCalculate reports that prices are always computed by this carrier.
func (c *Client) CanCalculate(ctx context.Context, opt *shipper.FulfillmentOption) bool {
	return true
}

// CalculatePrice quotes a delivery price for a cart.
func (c *Client) CalculatePrice(ctx context.Context, req *shipper.PriceRequest) (*shipper.PriceResponse, error) {
	ctx, span := c.tracer.Start(ctx, "mondialrelay.CalculatePrice")
	defer span.End()

	if err := shipper.Validate(req); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	home := isHomeDelivery(req.ShippingOption)
	weight := AggregateWeight(req.Items)
	country := NormalizeCountry(req.CountryCode)

	quote := c.pricing.Price(ctx, weight, country, home)
	if c.metrics != nil {
		c.metrics.RecordPriceSource(carrierName, string(quote.Source))
	}

	span.SetAttributes(
		attribute.Int("shipment.weight_grams", weight),
		attribute.String("shipment.country", country),
		attribute.Bool("shipment.home", home),
		attribute.String("price.source", string(quote.Source)),
	)
	c.logger.Info("Mondial Relay price computed",
		zap.Int("weight_grams", weight),
		zap.String("country", country),
		zap.Bool("home_delivery", home),
		zap.String("amount", quote.Amount.StringFixed(2)),
		zap.String("source", string(quote.Source)),
	)

	return &shipper.PriceResponse{
		Carrier:      carrierName,
		Amount:       quote.Amount,
		Currency:     Currency,
		TaxInclusive: quote.TaxInclusive,
		Source:       string(quote.Source),
		WeightGrams:  weight,
	}, nil
}

// CreateFulfillment registers an outbound shipment from the merchant to the customer.
func (c *Client) CreateFulfillment(ctx context.Context, req *shipper.FulfillmentRequest) (*shipper.FulfillmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "mondialrelay.CreateFulfillment")
	defer span.End()

	if err := shipper.Validate(req); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	addr := req.Order.ShippingAddress
	mode := ResolveDeliveryMode(ModeInput{
		Home:          req.ShippingOption.DeliveryType.IsHome(),
		Locker:        addr.Locker,
		PickupPointID: pickupPointID(req),
		CountryCode:   addr.CountryCode,
	})

	c.logger.Info("Creating Mondial Relay shipment",
		zap.String("fulfillment_id", req.FulfillmentID),
		zap.String("order", req.Order.DisplayID),
		zap.String("delivery_mode", mode.Mode()),
		zap.String("location", mode.Location()),
	)

	apiReq := c.buildShipmentRequest(outputFor(req.ShippingOption), shipmentParams{
		orderNo:     req.Order.DisplayID,
		content:     req.FulfillmentID,
		weightGrams: AggregateWeight(req.ShipmentItems()),
		mode:        mode,
		sender:      businessToAPI(c.config.Business),
		recipient:   customerToAPI(addr, req.Order.Email),
	})

	result, err := c.createShipment(ctx, span, apiReq)
	if err != nil {
		return nil, err
	}
	return toFulfillmentResponse(req.Data, result), nil
}

// CreateReturnFulfillment registers a return shipment from the customer to the merchant.
func (c *Client) CreateReturnFulfillment(ctx context.Context, req *shipper.FulfillmentRequest) (*shipper.FulfillmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "mondialrelay.CreateReturnFulfillment")
	defer span.End()

	if err := shipper.Validate(req); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	addr := req.Order.ShippingAddress
	mode := returnDeliveryMode(
		req.ShippingOption.DeliveryType.IsHome(),
		addr.Locker,
		c.config.Business.ReturnLocation,
	)

	c.logger.Info("Creating Mondial Relay return shipment",
		zap.String("fulfillment_id", req.FulfillmentID),
		zap.String("order", req.Order.DisplayID),
		zap.String("delivery_mode", mode.Mode()),
		zap.String("location", mode.Location()),
	)

	apiReq := c.buildShipmentRequest(outputFor(req.ShippingOption), shipmentParams{
		orderNo:     req.Order.DisplayID,
		content:     req.FulfillmentID,
		weightGrams: AggregateWeight(req.ShipmentItems()),
		mode:        mode,
		sender:      customerToAPI(addr, req.Order.Email),
		recipient:   businessToAPI(c.config.Business),
	})

	result, err := c.createShipment(ctx, span, apiReq)
	if err != nil {
		return nil, err
	}
	return toFulfillmentResponse(req.Data, result), nil
}

// CancelFulfillment never reaches the carrier; Mondial Relay has no cancellation API.
func (c *Client) CancelFulfillment(ctx context.Context, req *shipper.CancelRequest) (*shipper.CancelResponse, error) {
	c.logger.Warn("Mondial Relay does not support fulfillment cancellation via API",
		zap.String("fulfillment_id", req.FulfillmentID),
	)
	return &shipper.CancelResponse{
		FulfillmentID: req.FulfillmentID,
		Status:        shipper.CancelStatusNotSupported,
		Message:       "Mondial Relay does not support cancellation",
	}, nil
}

// Documents returns no documents; labels are attached at creation time.
func (c *Client) Documents(ctx context.Context, req *shipper.DocumentsRequest) ([]shipper.Document, error) {
	return []shipper.Document{}, nil
}

// createShipment sends the request, classifies statuses, then extracts the result.
func (c *Client) createShipment(ctx context.Context, span trace.Span, req *ShipmentRequest) (*ShipmentResult, error) {
	resp, err := c.apiClient.CreateShipment(ctx, req)
	if err != nil {
		c.logger.Error("Mondial Relay API error", zap.Error(err))
		recordSpanError(span, err)
		return nil, err
	}

	warnings, err := ClassifyStatuses(resp.Statuses)
	for _, w := range warnings {
		c.logger.Warn("Mondial Relay status",
			zap.String("code", w.Code),
			zap.String("level", w.Level),
			zap.String("message", w.Message),
		)
		if c.metrics != nil {
			c.metrics.RecordCarrierWarning(carrierName, w.Code)
		}
	}
	if err != nil {
		c.logger.Error("Mondial Relay rejected shipment", zap.Error(err))
		recordSpanError(span, err)
		return nil, err
	}

	result, err := resp.Result()
	if err != nil {
		c.logger.Error("Failed to create Mondial Relay shipment", zap.Error(err))
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("shipment.number", result.ShipmentNumber))
	c.logger.Info("Mondial Relay shipment created",
		zap.String("shipment_number", result.ShipmentNumber),
		zap.String("label", result.Label),
	)
	return result, nil
}

// ============================================================================
// Helpers
// ============================================================================

// isHomeDelivery also treats options named "... domicile" as home delivery.
func isHomeDelivery(opt shipper.ShippingOption) bool {
	return opt.DeliveryType.IsHome() || strings.Contains(strings.ToLower(opt.Name), "domicile")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
