package engine

import (
	"fmt"
	"strings"

	"btq-insights/internal/models"
)

// AssembleReport builds the report of one item from the filtered
// transactions. It fails with *MissingCategoryError when the item has no
// transactions there.
func AssembleReport(txs []models.Transaction, itemCode, region string, topOutlets int) (models.ItemReport, error) {
	itemTxs := ItemTransactions(txs, itemCode)
	if len(itemTxs) == 0 {
		return models.ItemReport{}, &MissingCategoryError{ItemCode: itemCode}
	}

	var qty, value float64
	for _, tx := range itemTxs {
		qty += tx.Quantity
		value += tx.Value
	}

	outlets := AggregateByOutlet(itemTxs)
	report := models.ItemReport{
		ItemCode:    itemCode,
		Category:    itemTxs[0].Category,
		Region:      region,
		Quantity:    qty,
		Value:       value,
		TopOutlets:  TopOutlets(outlets, topOutlets),
		Consistency: Consistency(outlets),
		Trend:       Trend(itemTxs),
		Forecast:    Forecast(qty),
	}
	report.Summary = Summarize(report)
	return report, nil
}

// Summarize renders the fixed one-paragraph description of a report.
func Summarize(r models.ItemReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Itemcode %s in category %s is performing well in region %s, strong in BTQs: %s. ",
		r.ItemCode, r.Category, r.Region, strings.Join(r.Consistency.StrongOutlets, ", "))
	if len(r.Consistency.WeakOutlets) > 0 {
		fmt.Fprintf(&b, "However, weaker performance in BTQs: %s. ", strings.Join(r.Consistency.WeakOutlets, ", "))
	}
	b.WriteString(r.Trend.Direction.Recommendation())
	return b.String()
}

// OutletNotice tells whether an item underperforms anywhere.
func OutletNotice(c models.ConsistencyResult) string {
	if len(c.WeakOutlets) == 0 {
		return "This item is performing well across all BTQs."
	}
	return fmt.Sprintf("This item is performing poorly in %d BTQs: %s",
		len(c.WeakOutlets), strings.Join(c.WeakOutlets, ", "))
}
