package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rgehrsitz/flipcalc/internal/domain"
	"github.com/shopspring/decimal"
)

// SuggestionMethod selects the statistic used to price a sale from
// reference properties.
type SuggestionMethod string

const (
	SuggestMean   SuggestionMethod = "mean"
	SuggestMedian SuggestionMethod = "median"
)

// PricePerSqM returns price / area.
func PricePerSqM(price, area float64) (decimal.Decimal, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return decimal.Zero, invalidParameter("price", price, "value must be finite")
	}
	if math.IsNaN(area) || math.IsInf(area, 0) || area <= 0 {
		return decimal.Zero, invalidParameter("area", area, "area must be positive")
	}
	return decimal.NewFromFloat(price).Div(decimal.NewFromFloat(area)), nil
}

// ReferencePriceStats summarizes the price per square meter of the given
// reference properties. References without a usable area are skipped.
func ReferencePriceStats(refs []domain.Property) (domain.PriceStats, error) {
	values := make([]decimal.Decimal, 0, len(refs))
	for _, ref := range refs {
		ppsm, err := PricePerSqM(ref.Price, ref.Area)
		if err != nil {
			continue
		}
		values = append(values, ppsm)
	}
	if len(values) == 0 {
		return domain.PriceStats{}, fmt.Errorf("no reference properties with a positive area")
	}

	sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })

	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(v)
	}

	n := len(values)
	median := values[n/2]
	if n%2 == 0 {
		median = values[n/2-1].Add(values[n/2]).Div(decimal.NewFromInt(2))
	}

	return domain.PriceStats{
		Count:  n,
		Mean:   sum.Div(decimal.NewFromInt(int64(n))),
		Median: median,
		Min:    values[0],
		Max:    values[n-1],
	}, nil
}

// SuggestSalePrice prices a property of the given area at the reference
// price per square meter.
func SuggestSalePrice(area float64, refs []domain.Property, method SuggestionMethod) (decimal.Decimal, error) {
	if math.IsNaN(area) || math.IsInf(area, 0) || area <= 0 {
		return decimal.Zero, invalidParameter("area", area, "area must be positive")
	}
	stats, err := ReferencePriceStats(refs)
	if err != nil {
		return decimal.Zero, err
	}

	switch method {
	case SuggestMedian:
		return stats.Median.Mul(decimal.NewFromFloat(area)), nil
	case SuggestMean, "":
		return stats.Mean.Mul(decimal.NewFromFloat(area)), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown suggestion method: %s", method)
	}
}
