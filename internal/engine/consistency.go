package engine

import (
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"btq-insights/internal/models"
)

// weakOutletRatio is the fraction of the mean below which an outlet is weak.
const weakOutletRatio = 0.6

// Consistency scores how evenly an item sells across its outlets. The input
// is an outlet summary as returned by AggregateByOutlet; the weak and strong
// lists keep its order.
//
// The score is (1 - stdDev/mean) * 100 rounded to two decimals, using the
// sample standard deviation. It is not clamped and goes negative when the
// spread exceeds the mean. With fewer than two outlets stdDev is 0.
func Consistency(outlets []models.ItemOutletSummary) models.ConsistencyResult {
	result := models.ConsistencyResult{
		WeakOutlets:   []string{},
		StrongOutlets: []string{},
	}
	if len(outlets) == 0 {
		return result
	}

	quantities := make(stats.Float64Data, 0, len(outlets))
	for _, o := range outlets {
		quantities = append(quantities, o.Quantity)
	}
	// summation order must not depend on outlet order
	slices.Sort(quantities)

	mean, _ := stats.Mean(quantities)
	var stdDev float64
	if len(quantities) >= 2 {
		stdDev, _ = stats.StandardDeviationSample(quantities)
	}

	result.Mean = mean
	result.StdDev = stdDev
	if mean > 0 {
		result.Score = roundHalfEven((1-stdDev/mean)*100, 2)
	}

	// a zero mean gives a zero threshold, so every outlet is strong
	result.Threshold = mean * weakOutletRatio
	for _, o := range outlets {
		if o.Quantity < result.Threshold {
			result.WeakOutlets = append(result.WeakOutlets, o.Outlet)
		} else {
			result.StrongOutlets = append(result.StrongOutlets, o.Outlet)
		}
	}
	return result
}

func roundHalfEven(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(x*scale) / scale
}
