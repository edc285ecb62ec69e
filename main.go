package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/mondialrelay/internal/config"
	"github.com/tournevent/mondialrelay/internal/server"
	"github.com/tournevent/mondialrelay/internal/telemetry"
	"github.com/tournevent/mondialrelay/pkg/shipper"
	"github.com/tournevent/mondialrelay/pkg/shipper/mondialrelay"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "mondialrelay",
	Short:   "Mondial Relay fulfillment bridge - shipment registration and delivery pricing",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute a delivery price for a parcel weight and destination",
	RunE:  runQuote,
}

var quoteFlags struct {
	weight  int
	country string
	home    bool
}

func init() {
	quoteCmd.Flags().IntVar(&quoteFlags.weight, "weight", mondialrelay.DefaultItemWeightGrams, "parcel weight in grams")
	quoteCmd.Flags().StringVar(&quoteFlags.country, "country", mondialrelay.DefaultCountry, "destination country code")
	quoteCmd.Flags().BoolVar(&quoteFlags.home, "home", false, "home delivery instead of pickup point")

	rootCmd.AddCommand(serveCmd, quoteCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	registry, err := initShipperRegistry(cfg, logger, metrics)
	if err != nil {
		return err
	}

	logger.Info("Starting Mondial Relay fulfillment bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("carriers", registry.Names()),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: cfg.Port}, registry, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read()
	if err != nil {
		return err
	}

	logger, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	lookup, err := initPriceLookup(cfg)
	if err != nil {
		return err
	}

	deliveryType := shipper.DeliveryPickupPoint
	if quoteFlags.home {
		deliveryType = shipper.DeliveryHome
	}
	client := mondialrelay.NewWithAPIClient(mondialrelayConfig(cfg), mondialrelay.NewMockAPIClient(), logger, nil,
		mondialrelay.WithPriceLookup(lookup))

	resp, err := client.CalculatePrice(cmd.Context(), &shipper.PriceRequest{
		ShippingOption: shipper.ShippingOption{DeliveryType: deliveryType},
		Items:          []shipper.LineItem{{Quantity: 1, VariantWeight: float64(quoteFlags.weight)}},
		CountryCode:    quoteFlags.country,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %d g, %s)\n",
		resp.Amount.StringFixed(2), resp.Currency, resp.Source, resp.WeightGrams,
		mondialrelay.NormalizeCountry(quoteFlags.country))
	return nil
}
