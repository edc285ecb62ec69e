package mondialrelay

import (
	"math"

	"github.com/tournevent/mondialrelay/pkg/shipper"
)

// DefaultItemWeightGrams is used for items without a known weight, and as
// the total when nothing else can be computed.
const DefaultItemWeightGrams = 500

// AggregateWeight returns the total shipment weight in grams.
// It never returns zero.
func AggregateWeight(items []shipper.LineItem) int {
	var total float64
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		weight := item.VariantWeight
		if weight <= 0 {
			weight = DefaultItemWeightGrams
		}
		total += float64(item.Quantity) * weight
	}

	grams := int(math.Round(total))
	if grams <= 0 {
		return DefaultItemWeightGrams
	}
	return grams
}
