package engine

import (
	"math"

	"btq-insights/internal/models"
)

const (
	forecastUplift = 1.1
	batchUnit      = 10
)

// Forecast projects next period's demand as a flat 10% uplift on the
// quantity sold and rounds it to the nearest batch of 10.
func Forecast(totalQty float64) models.ForecastResult {
	forecast := totalQty * forecastUplift
	return models.ForecastResult{
		Quantity: forecast,
		Batch:    BatchRecommendation(forecast),
	}
}

// BatchRecommendation rounds half to even, so 25 becomes 20 and 35 becomes 40.
func BatchRecommendation(forecast float64) int64 {
	return int64(math.RoundToEven(forecast/batchUnit)) * batchUnit
}
