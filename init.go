package main

import (
	"context"

	"github.com/tournevent/mondialrelay/internal/config"
	"github.com/tournevent/mondialrelay/internal/telemetry"
	"github.com/tournevent/mondialrelay/pkg/shipper"
	"github.com/tournevent/mondialrelay/pkg/shipper/mondialrelay"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel,
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.Version),
	)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes())
}

// initPriceLookup loads the optional price grid. A nil lookup means
// fallback tiers only.
func initPriceLookup(cfg *config.Config) (mondialrelay.PriceLookup, error) {
	if cfg.MondialRelayPriceGrid == "" {
		return nil, nil
	}
	grid, err := mondialrelay.LoadPriceGrid(cfg.MondialRelayPriceGrid)
	if err != nil {
		return nil, err
	}
	return grid, nil
}

func mondialrelayConfig(cfg *config.Config) mondialrelay.Config {
	return mondialrelay.Config{
		BaseURL:         cfg.MondialRelayBaseURL,
		Login:           cfg.MondialRelayLogin,
		Password:        cfg.MondialRelayPassword,
		CustomerID:      cfg.MondialRelayCustomerID,
		Culture:         cfg.MondialRelayCulture,
		Timeout:         cfg.MondialRelayTimeout,
		RetryDelay:      cfg.MondialRelayRetryDelay,
		BreakerFailures: cfg.MondialRelayBreakerFailures,
		BreakerTimeout:  cfg.MondialRelayBreakerTimeout,
		UseMock:         cfg.MondialRelayUseMock,
		Business: mondialrelay.BusinessAddress{
			Title:          cfg.BusinessTitle,
			Firstname:      cfg.BusinessFirstname,
			Lastname:       cfg.BusinessLastname,
			Streetname:     cfg.BusinessStreetname,
			AddressAdd1:    cfg.BusinessAddressAdd1,
			AddressAdd2:    cfg.BusinessAddressAdd2,
			CountryCode:    cfg.BusinessCountryCode,
			PostCode:       cfg.BusinessPostCode,
			City:           cfg.BusinessCity,
			MobileNo:       cfg.BusinessMobileNo,
			Email:          cfg.BusinessEmail,
			ReturnLocation: cfg.BusinessReturnLocation,
		},
	}
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, metrics *telemetry.Metrics) (*shipper.Registry, error) {
	registry := shipper.NewRegistry()

	if !cfg.MondialRelayEnabled {
		logger.Warn("Mondial Relay carrier disabled")
		return registry, nil
	}

	lookup, err := initPriceLookup(cfg)
	if err != nil {
		return nil, err
	}
	if lookup != nil {
		logger.Info("Loaded Mondial Relay price grid", zap.String("path", cfg.MondialRelayPriceGrid))
	}

	tracer := otel.Tracer(cfg.ServiceName)
	mr := mondialrelay.New(mondialrelayConfig(cfg), logger, tracer,
		mondialrelay.WithPriceLookup(lookup),
		mondialrelay.WithMetrics(metrics),
	)
	registry.Register(mr)

	return registry, nil
}
