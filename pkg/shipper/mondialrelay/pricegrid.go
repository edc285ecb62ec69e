package mondialrelay

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PriceGrid is a carrier price table loaded from YAML:
//
//	countries:
//	  FR:
//	    - max_weight: 500
//	      price: "4.40"
//	    - max_weight: 1000
//	      price: "4.90"
type PriceGrid struct {
	bands map[string][]gridBand
}

type gridBand struct {
	maxGrams int
	price    decimal.Decimal
}

type priceGridFile struct {
	Countries map[string][]struct {
		MaxWeight int    `yaml:"max_weight"`
		Price     string `yaml:"price"`
	} `yaml:"countries"`
}

var _ PriceLookup = (*PriceGrid)(nil)

// LoadPriceGrid reads a price grid file.
func LoadPriceGrid(path string) (*PriceGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading price grid: %w", err)
	}
	grid, err := ParsePriceGrid(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return grid, nil
}

// ParsePriceGrid decodes a YAML price grid.
func ParsePriceGrid(data []byte) (*PriceGrid, error) {
	var raw priceGridFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	grid := &PriceGrid{bands: make(map[string][]gridBand, len(raw.Countries))}
	for country, rows := range raw.Countries {
		bands := make([]gridBand, 0, len(rows))
		for _, row := range rows {
			if row.MaxWeight <= 0 {
				return nil, fmt.Errorf("country %s: max_weight must be positive", country)
			}
			price, err := decimal.NewFromString(row.Price)
			if err != nil {
				return nil, fmt.Errorf("country %s: invalid price %q: %w", country, row.Price, err)
			}
			if price.IsNegative() {
				return nil, fmt.Errorf("country %s: negative price %s", country, row.Price)
			}
			bands = append(bands, gridBand{maxGrams: row.MaxWeight, price: price})
		}
		sort.Slice(bands, func(i, j int) bool { return bands[i].maxGrams < bands[j].maxGrams })
		grid.bands[strings.ToUpper(country)] = bands
	}
	return grid, nil
}

// DeliveryPrice returns the price of the first band that fits the weight.
func (g *PriceGrid) DeliveryPrice(ctx context.Context, weightGrams int, countryCode string) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, false, err
	}
	for _, b := range g.bands[strings.ToUpper(countryCode)] {
		if weightGrams <= b.maxGrams {
			return b.price, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// Countries returns the destinations covered by the grid.
func (g *PriceGrid) Countries() []string {
	out := make([]string, 0, len(g.bands))
	for c := range g.bands {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
