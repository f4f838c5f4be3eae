package models

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Advice is the restocking hint shown next to an item's trend.
func (d TrendDirection) Advice() string {
	switch d {
	case TrendIncreasing:
		return "Sales are increasing, consider producing more for high-performing BTQs."
	case TrendDecreasing:
		return "Sales are decreasing, reduce production for underperforming BTQs."
	default:
		return "Sales stable, maintain current stock levels."
	}
}

// Recommendation is the clause appended to an item's summary sentence.
func (d TrendDirection) Recommendation() string {
	switch d {
	case TrendIncreasing:
		return "Sales are trending upwards, consider producing more."
	case TrendDecreasing:
		return "Sales are trending downwards, reduce extra production."
	default:
		return "Sales are stable, maintain current stock levels."
	}
}
