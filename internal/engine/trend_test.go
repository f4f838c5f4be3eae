package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"btq-insights/internal/models"
)

func TestTrend(t *testing.T) {
	tests := []struct {
		name      string
		txs       []models.Transaction
		wantValue float64
		wantDir   models.TrendDirection
	}{
		{
			name:    "no data",
			wantDir: models.TrendStable,
		},
		{
			name: "single month",
			txs: []models.Transaction{
				tx("W", "R", "A1", "X", 10, 0, day(2024, 3, 1)),
				tx("W", "R", "A1", "X", 90, 0, day(2024, 3, 31)),
			},
			wantDir: models.TrendStable,
		},
		{
			name: "decreasing",
			txs: []models.Transaction{
				tx("W", "R", "A1", "X", 100, 0, day(2024, 1, 15)),
				tx("W", "R", "A1", "X", 80, 0, day(2024, 2, 15)),
			},
			wantValue: -20,
			wantDir:   models.TrendDecreasing,
		},
		{
			name: "decreasing across a year boundary",
			txs: []models.Transaction{
				tx("W", "R", "A1", "X", 5, 0, day(2024, 1, 2)),
				tx("W", "R", "A1", "X", 40, 0, day(2023, 12, 20)),
				tx("W", "R", "A1", "X", 30, 0, day(2023, 11, 20)),
			},
			wantValue: -35,
			wantDir:   models.TrendDecreasing,
		},
		{
			name: "equal months",
			txs: []models.Transaction{
				tx("W", "R", "A1", "X", 50, 0, day(2024, 4, 1)),
				tx("W", "R", "A1", "Y", 50, 0, day(2024, 5, 1)),
			},
			wantDir: models.TrendStable,
		},
		{
			name: "gap month counts as zero",
			txs: []models.Transaction{
				tx("W", "R", "A1", "X", 50, 0, day(2024, 1, 10)),
				tx("W", "R", "A1", "X", 20, 0, day(2024, 3, 10)),
			},
			wantValue: 20,
			wantDir:   models.TrendIncreasing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Trend(tt.txs)
			assert.Equal(t, tt.wantValue, got.Value)
			assert.Equal(t, tt.wantDir, got.Direction)
		})
	}
}

func TestMonthlyTotals(t *testing.T) {
	txs := []models.Transaction{
		tx("W", "R", "A1", "X", 3, 0, day(2024, 3, 31)),
		tx("W", "R", "A1", "X", 1, 0, day(2024, 1, 1)),
		tx("W", "R", "A1", "X", 2, 0, time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC)),
	}

	got := MonthlyTotals(txs)

	assert.Equal(t, []models.MonthlyQuantity{
		{Month: "2024-01", Quantity: 3},
		{Month: "2024-02", Quantity: 0},
		{Month: "2024-03", Quantity: 3},
	}, got)
}
