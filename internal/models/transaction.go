package models

import "time"

// Transaction is one validated sales row. Values reaching the engine have
// already passed store.ParseTransaction.
type Transaction struct {
	Date     time.Time `json:"date" validate:"required"`
	Region   string    `json:"region" validate:"required"`
	Category string    `json:"category"`
	ItemCode string    `json:"itemcode" validate:"required"`
	Outlet   string    `json:"btq" validate:"required"`
	Quantity float64   `json:"qty" validate:"gte=0"`
	Value    float64   `json:"value"`
}

type RegionItemAggregate struct {
	Region   string  `json:"region"`
	ItemCode string  `json:"itemcode"`
	Quantity float64 `json:"qty"`
	Value    float64 `json:"value"`
}

// ItemAggregate is the single-region collapse of RegionItemAggregate.
type ItemAggregate struct {
	ItemCode string  `json:"itemcode"`
	Quantity float64 `json:"qty"`
	Value    float64 `json:"value"`
}

type ItemOutletSummary struct {
	ItemCode string  `json:"itemcode"`
	Outlet   string  `json:"btq"`
	Quantity float64 `json:"qty"`
}

type ConsistencyResult struct {
	Mean          float64  `json:"mean"`
	StdDev        float64  `json:"std_dev"`
	Score         float64  `json:"consistency_score"`
	Threshold     float64  `json:"threshold"`
	WeakOutlets   []string `json:"weak_btqs"`
	StrongOutlets []string `json:"strong_btqs"`
}

type MonthlyQuantity struct {
	Month    string  `json:"month"`
	Quantity float64 `json:"qty"`
}

type TrendResult struct {
	Value     float64           `json:"trend"`
	Direction TrendDirection    `json:"direction"`
	Months    []MonthlyQuantity `json:"months,omitempty"`
}

type ForecastResult struct {
	Quantity float64 `json:"forecast_qty"`
	Batch    int64   `json:"batch_recommendation"`
}

// ItemReport is regenerated on every query; it has no identity of its own.
type ItemReport struct {
	Rank        int                 `json:"rank"`
	ItemCode    string              `json:"itemcode"`
	Category    string              `json:"category"`
	Region      string              `json:"region"`
	Quantity    float64             `json:"total_qty"`
	Value       float64             `json:"total_value"`
	TopOutlets  []ItemOutletSummary `json:"top_btqs"`
	Consistency ConsistencyResult   `json:"consistency"`
	Trend       TrendResult         `json:"trend"`
	Forecast    ForecastResult      `json:"forecast"`
	Summary     string              `json:"summary"`
}

// ItemSummary is one row of the per-item forecast table.
type ItemSummary struct {
	No       int            `json:"no"`
	ItemCode string         `json:"itemcode"`
	Quantity float64        `json:"total_qty"`
	Value    float64        `json:"total_value"`
	Forecast ForecastResult `json:"forecast"`
}
