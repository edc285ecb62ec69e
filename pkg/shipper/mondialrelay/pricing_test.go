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

type stubLookup struct {
	price decimal.Decimal
	ok    bool
	err   error
	calls int
}

func (s *stubLookup) DeliveryPrice(ctx context.Context, weightGrams int, countryCode string) (decimal.Decimal, bool, error) {
	s.calls++
	return s.price, s.ok, s.err
}

func TestAggregateWeight(t *testing.T) {
	tests := []struct {
		name  string
		items []shipper.LineItem
		want  int
	}{
		{"empty", nil, 500},
		{"single item with weight", []shipper.LineItem{{Quantity: 1, VariantWeight: 400}}, 400},
		{"quantity multiplies", []shipper.LineItem{{Quantity: 3, VariantWeight: 600}}, 1800},
		{"missing weight defaults to 500g", []shipper.LineItem{{Quantity: 2}}, 1000},
		{"mixed", []shipper.LineItem{{Quantity: 1, VariantWeight: 250}, {Quantity: 2}}, 1250},
		{"zero quantity only", []shipper.LineItem{{Quantity: 0, VariantWeight: 300}}, 500},
		{"fractional grams are rounded", []shipper.LineItem{{Quantity: 3, VariantWeight: 100.4}}, 301},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mondialrelay.AggregateWeight(tt.items))
		})
	}
}

func TestFallbackPrice(t *testing.T) {
	tests := []struct {
		weight int
		home   bool
		want   string
	}{
		{400, false, "4.95"},
		{500, false, "4.95"},
		{501, false, "5.95"},
		{1800, false, "6.95"},
		{3000, false, "7.95"},
		{4999, false, "8.95"},
		{10000, false, "10.95"},
		{20000, false, "14.95"},
		{20001, false, "19.95"},
		{400, true, "7.95"},
		{1000, true, "8.95"},
		{1800, true, "9.95"},
		{2500, true, "10.95"},
		{5000, true, "12.95"},
		{9000, true, "15.95"},
		{15000, true, "19.95"},
		{30000, true, "24.95"},
	}

	for _, tt := range tests {
		got := mondialrelay.FallbackPrice(tt.weight, tt.home)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
			"weight=%d home=%v: want %s, got %s", tt.weight, tt.home, tt.want, got)
	}
}

func newTestEngine(lookup mondialrelay.PriceLookup) *mondialrelay.PricingEngine {
	return mondialrelay.NewPricingEngine(lookup, otelzap.New(zap.NewNop()))
}

func TestPricingEngine_NoLookupUsesFallback(t *testing.T) {
	engine := newTestEngine(nil)

	quote := engine.Price(context.Background(), 1800, "FR", true)

	assert.Equal(t, "9.95", quote.Amount.StringFixed(2))
	assert.True(t, quote.TaxInclusive)
	assert.Equal(t, mondialrelay.PriceSourceFallback, quote.Source)
}

func TestPricingEngine_ExternalPickupPoint(t *testing.T) {
	lookup := &stubLookup{price: decimal.RequireFromString("4.40"), ok: true}
	engine := newTestEngine(lookup)

	quote := engine.Price(context.Background(), 400, "FR", false)

	assert.Equal(t, "4.40", quote.Amount.StringFixed(2))
	assert.Equal(t, mondialrelay.PriceSourceExternal, quote.Source)
	assert.Equal(t, 1, lookup.calls)
}

func TestPricingEngine_ExternalHomeSurchargeOnce(t *testing.T) {
	lookup := &stubLookup{price: decimal.RequireFromString("4.40"), ok: true}
	engine := newTestEngine(lookup)

	quote := engine.Price(context.Background(), 400, "FR", true)

	assert.Equal(t, "7.40", quote.Amount.StringFixed(2))
	assert.True(t, quote.TaxInclusive)
}

func TestPricingEngine_NoResultFallsBack(t *testing.T) {
	engine := newTestEngine(&stubLookup{ok: false})

	quote := engine.Price(context.Background(), 1800, "DE", false)

	assert.Equal(t, "6.95", quote.Amount.StringFixed(2))
	assert.Equal(t, mondialrelay.PriceSourceFallback, quote.Source)
}

func TestPricingEngine_LookupErrorIsAbsorbed(t *testing.T) {
	engine := newTestEngine(&stubLookup{err: errors.New("price service down")})

	quote := engine.Price(context.Background(), 1800, "FR", true)

	// No surcharge on the fallback path.
	assert.Equal(t, "9.95", quote.Amount.StringFixed(2))
	assert.Equal(t, mondialrelay.PriceSourceFallback, quote.Source)
}

const testGrid = `
countries:
  FR:
    - max_weight: 1000
      price: "4.90"
    - max_weight: 500
      price: "4.40"
  be:
    - max_weight: 2000
      price: "6.10"
`

func TestParsePriceGrid(t *testing.T) {
	grid, err := mondialrelay.ParsePriceGrid([]byte(testGrid))
	require.NoError(t, err)
	assert.Equal(t, []string{"BE", "FR"}, grid.Countries())

	ctx := context.Background()

	price, ok, err := grid.DeliveryPrice(ctx, 400, "FR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4.40", price.StringFixed(2))

	price, ok, err = grid.DeliveryPrice(ctx, 800, "fr")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4.90", price.StringFixed(2))

	_, ok, err = grid.DeliveryPrice(ctx, 5000, "FR")
	require.NoError(t, err)
	assert.False(t, ok, "weight beyond the last band has no price")

	_, ok, err = grid.DeliveryPrice(ctx, 400, "ES")
	require.NoError(t, err)
	assert.False(t, ok, "unknown country has no price")
}

func TestParsePriceGrid_Invalid(t *testing.T) {
	_, err := mondialrelay.ParsePriceGrid([]byte("countries:\n  FR:\n    - max_weight: 500\n      price: abc\n"))
	assert.Error(t, err)

	_, err = mondialrelay.ParsePriceGrid([]byte("countries:\n  FR:\n    - max_weight: 0\n      price: \"1\"\n"))
	assert.Error(t, err)

	_, err = mondialrelay.ParsePriceGrid([]byte("countries: [unclosed"))
	assert.Error(t, err)
}

func TestPricingEngine_WithPriceGrid(t *testing.T) {
	grid, err := mondialrelay.ParsePriceGrid([]byte(testGrid))
	require.NoError(t, err)
	engine := newTestEngine(grid)

	quote := engine.Price(context.Background(), 1500, "BE", true)
	assert.Equal(t, "9.10", quote.Amount.StringFixed(2))
	assert.Equal(t, mondialrelay.PriceSourceExternal, quote.Source)

	quote = engine.Price(context.Background(), 1500, "ES", false)
	assert.Equal(t, "6.95", quote.Amount.StringFixed(2))
	assert.Equal(t, mondialrelay.PriceSourceFallback, quote.Source)
}
