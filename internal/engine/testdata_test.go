package engine

import (
	"time"

	"btq-insights/internal/models"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func tx(region, category, item, outlet string, qty, value float64, date time.Time) models.Transaction {
	return models.Transaction{
		Date:     date,
		Region:   region,
		Category: category,
		ItemCode: item,
		Outlet:   outlet,
		Quantity: qty,
		Value:    value,
	}
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		tx("West", "Rings", "A1", "X", 60, 600, day(2024, 1, 3)),
		tx("West", "Rings", "A1", "X", 40, 400, day(2024, 2, 9)),
		tx("West", "Rings", "A1", "Y", 40, 380, day(2024, 2, 11)),
		tx("West", "Chains", "B2", "X", 90, 1800, day(2024, 1, 20)),
		tx("West", "Chains", "C3", "Z", 30, 300, day(2024, 2, 1)),
		tx("East", "Rings", "A1", "K", 25, 250, day(2024, 1, 5)),
		tx("East", "Rings", "D4", "K", 70, 700, day(2024, 1, 6)),
		tx("East", "Chains", "B2", "L", 70, 1400, day(2024, 2, 6)),
	}
}
