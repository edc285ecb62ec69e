package mondialrelay

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Currency of every Mondial Relay price.
const Currency = "EUR"

// PriceSource tells where a quoted price came from.
type PriceSource string

const (
	PriceSourceExternal PriceSource = "external"
	PriceSourceFallback PriceSource = "fallback"
)

// HomeSurcharge is added to external prices for home delivery.
var HomeSurcharge = decimal.NewFromInt(3)

// PriceLookup is an external price table keyed by weight and destination.
// ok is false when the table has no price for the combination.
type PriceLookup interface {
	DeliveryPrice(ctx context.Context, weightGrams int, countryCode string) (price decimal.Decimal, ok bool, err error)
}

// Quote is a computed delivery price.
type Quote struct {
	Amount       decimal.Decimal
	TaxInclusive bool
	Source       PriceSource
}

type priceTier struct {
	maxGrams int
	price    decimal.Decimal
}

var pointTiers = []priceTier{
	{500, decimal.RequireFromString("4.95")},
	{1000, decimal.RequireFromString("5.95")},
	{2000, decimal.RequireFromString("6.95")},
	{3000, decimal.RequireFromString("7.95")},
	{5000, decimal.RequireFromString("8.95")},
	{10000, decimal.RequireFromString("10.95")},
	{20000, decimal.RequireFromString("14.95")},
}

var homeTiers = []priceTier{
	{500, decimal.RequireFromString("7.95")},
	{1000, decimal.RequireFromString("8.95")},
	{2000, decimal.RequireFromString("9.95")},
	{3000, decimal.RequireFromString("10.95")},
	{5000, decimal.RequireFromString("12.95")},
	{10000, decimal.RequireFromString("15.95")},
	{20000, decimal.RequireFromString("19.95")},
}

var (
	pointOverweight = decimal.RequireFromString("19.95")
	homeOverweight  = decimal.RequireFromString("24.95")
)

// FallbackPrice returns the tier price for a weight. Tier bounds are inclusive.
func FallbackPrice(weightGrams int, home bool) decimal.Decimal {
	tiers, overweight := pointTiers, pointOverweight
	if home {
		tiers, overweight = homeTiers, homeOverweight
	}
	for _, t := range tiers {
		if weightGrams <= t.maxGrams {
			return t.price
		}
	}
	return overweight
}

// PricingEngine computes delivery prices.
type PricingEngine struct {
	lookup PriceLookup
	logger *otelzap.Logger
}

// NewPricingEngine creates a pricing engine. lookup may be nil.
func NewPricingEngine(lookup PriceLookup, logger *otelzap.Logger) *PricingEngine {
	return &PricingEngine{lookup: lookup, logger: logger}
}

// Price quotes a delivery. Lookup failures are absorbed by the fallback table.
func (e *PricingEngine) Price(ctx context.Context, weightGrams int, countryCode string, home bool) Quote {
	country := NormalizeCountry(countryCode)

	if e.lookup != nil {
		price, ok, err := e.lookup.DeliveryPrice(ctx, weightGrams, country)
		switch {
		case err != nil:
			e.logger.Warn("Price lookup failed, using fallback pricing",
				zap.Int("weight_grams", weightGrams),
				zap.String("country", country),
				zap.Error(err),
			)
		case !ok:
			e.logger.Info("No external price for shipment, using fallback pricing",
				zap.Int("weight_grams", weightGrams),
				zap.String("country", country),
			)
		default:
			if home {
				price = price.Add(HomeSurcharge)
			}
			return Quote{Amount: price, TaxInclusive: true, Source: PriceSourceExternal}
		}
	}

	return Quote{
		Amount:       FallbackPrice(weightGrams, home),
		TaxInclusive: true,
		Source:       PriceSourceFallback,
	}
}
