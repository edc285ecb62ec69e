package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Mondial Relay
	MondialRelayBaseURL         string        `envconfig:"MONDIALRELAY_API_BASE_URL" default:"https://connect-api.mondialrelay.com/api/shipment"`
	MondialRelayLogin           string        `envconfig:"MONDIALRELAY_LOGIN"`
	MondialRelayPassword        string        `envconfig:"MONDIALRELAY_PASSWORD"`
	MondialRelayCustomerID      string        `envconfig:"MONDIALRELAY_CUSTOMER_ID"`
	MondialRelayCulture         string        `envconfig:"MONDIALRELAY_CULTURE" default:"fr-FR"`
	MondialRelayTimeout         time.Duration `envconfig:"MONDIALRELAY_TIMEOUT" default:"30s"`
	MondialRelayRetryDelay      time.Duration `envconfig:"MONDIALRELAY_RETRY_DELAY" default:"250ms"`
	MondialRelayBreakerFailures uint32        `envconfig:"MONDIALRELAY_BREAKER_FAILURES" default:"5"`
	MondialRelayBreakerTimeout  time.Duration `envconfig:"MONDIALRELAY_BREAKER_TIMEOUT" default:"30s"`
	MondialRelayPriceGrid       string        `envconfig:"MONDIALRELAY_PRICE_GRID"`
	MondialRelayEnabled         bool          `envconfig:"MONDIALRELAY_ENABLED" default:"true"`
	MondialRelayUseMock         bool          `envconfig:"MONDIALRELAY_USE_MOCK" default:"false"`

	// Business (sender) address
	BusinessTitle          string `envconfig:"BUSINESS_TITLE"`
	BusinessFirstname      string `envconfig:"BUSINESS_FIRSTNAME"`
	BusinessLastname       string `envconfig:"BUSINESS_LASTNAME"`
	BusinessStreetname     string `envconfig:"BUSINESS_STREETNAME"`
	BusinessAddressAdd1    string `envconfig:"BUSINESS_ADDRESS_ADD1"`
	BusinessAddressAdd2    string `envconfig:"BUSINESS_ADDRESS_ADD2"`
	BusinessCountryCode    string `envconfig:"BUSINESS_COUNTRY_CODE" default:"FR"`
	BusinessPostCode       string `envconfig:"BUSINESS_POSTCODE"`
	BusinessCity           string `envconfig:"BUSINESS_CITY"`
	BusinessMobileNo       string `envconfig:"BUSINESS_MOBILE_NO"`
	BusinessEmail          string `envconfig:"BUSINESS_EMAIL"`
	BusinessReturnLocation string `envconfig:"BUSINESS_RETURN_LOCATION"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"mondialrelay-fulfillment"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read reads configuration from environment variables without validating
// carrier credentials. Offline commands use it.
func Read() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that envconfig cannot express.
func (c *Config) Validate() error {
	if !c.MondialRelayEnabled || c.MondialRelayUseMock {
		return nil
	}
	if c.MondialRelayBaseURL == "" {
		return fmt.Errorf("loading config: MONDIALRELAY_API_BASE_URL is required")
	}
	if c.MondialRelayLogin == "" || c.MondialRelayCustomerID == "" {
		return fmt.Errorf("loading config: MONDIALRELAY_LOGIN and MONDIALRELAY_CUSTOMER_ID are required unless MONDIALRELAY_USE_MOCK is set")
	}
	return nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("mondialrelay.enabled", c.MondialRelayEnabled),
		attribute.Bool("mondialrelay.mock", c.MondialRelayUseMock),
		attribute.String("mondialrelay.culture", c.MondialRelayCulture),
	}
}
