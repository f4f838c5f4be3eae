package engine

import (
	"time"

	"btq-insights/internal/models"
)

const monthLayout = "2006-01"

// MonthlyTotals buckets quantity by calendar month, oldest first. Every month
// between the first and last sale gets a bucket, empty months included.
func MonthlyTotals(txs []models.Transaction) []models.MonthlyQuantity {
	if len(txs) == 0 {
		return nil
	}

	totals := make(map[time.Time]float64)
	first, last := monthStart(txs[0].Date), monthStart(txs[0].Date)
	for _, tx := range txs {
		m := monthStart(tx.Date)
		totals[m] += tx.Quantity
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	var months []models.MonthlyQuantity
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		months = append(months, models.MonthlyQuantity{
			Month:    m.Format(monthLayout),
			Quantity: totals[m],
		})
	}
	return months
}

// Trend compares the two most recent monthly buckets.
func Trend(txs []models.Transaction) models.TrendResult {
	months := MonthlyTotals(txs)

	result := models.TrendResult{Direction: models.TrendStable, Months: months}
	if len(months) < 2 {
		return result
	}

	result.Value = months[len(months)-1].Quantity - months[len(months)-2].Quantity
	switch {
	case result.Value > 0:
		result.Direction = models.TrendIncreasing
	case result.Value < 0:
		result.Direction = models.TrendDecreasing
	}
	return result
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
