package engine

import (
	"cmp"
	"slices"

	"btq-insights/internal/models"
)

type regionItemKey struct {
	region   string
	itemCode string
}

// AggregateByRegionItem sums quantity and value per (region, itemCode).
// Rows come out in ascending key order, one per distinct pair.
func AggregateByRegionItem(txs []models.Transaction) []models.RegionItemAggregate {
	groups := make(map[regionItemKey]*models.RegionItemAggregate)
	for _, tx := range txs {
		key := regionItemKey{region: tx.Region, itemCode: tx.ItemCode}
		agg, ok := groups[key]
		if !ok {
			agg = &models.RegionItemAggregate{Region: tx.Region, ItemCode: tx.ItemCode}
			groups[key] = agg
		}
		agg.Quantity += tx.Quantity
		agg.Value += tx.Value
	}

	result := make([]models.RegionItemAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, *agg)
	}
	slices.SortFunc(result, func(a, b models.RegionItemAggregate) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemCode, b.ItemCode)
	})
	return result
}

// AggregateByItem collapses the grouping to itemCode alone.
func AggregateByItem(txs []models.Transaction) []models.ItemAggregate {
	groups := make(map[string]*models.ItemAggregate)
	for _, tx := range txs {
		agg, ok := groups[tx.ItemCode]
		if !ok {
			agg = &models.ItemAggregate{ItemCode: tx.ItemCode}
			groups[tx.ItemCode] = agg
		}
		agg.Quantity += tx.Quantity
		agg.Value += tx.Value
	}

	result := make([]models.ItemAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, *agg)
	}
	slices.SortFunc(result, func(a, b models.ItemAggregate) int {
		return cmp.Compare(a.ItemCode, b.ItemCode)
	})
	return result
}

// AggregateByOutlet sums an item's quantity per outlet, sorted by quantity
// descending. Outlets with equal quantity keep name order.
func AggregateByOutlet(itemTxs []models.Transaction) []models.ItemOutletSummary {
	groups := make(map[string]*models.ItemOutletSummary)
	for _, tx := range itemTxs {
		summary, ok := groups[tx.Outlet]
		if !ok {
			summary = &models.ItemOutletSummary{ItemCode: tx.ItemCode, Outlet: tx.Outlet}
			groups[tx.Outlet] = summary
		}
		summary.Quantity += tx.Quantity
	}

	result := make([]models.ItemOutletSummary, 0, len(groups))
	for _, summary := range groups {
		result = append(result, *summary)
	}
	slices.SortFunc(result, func(a, b models.ItemOutletSummary) int {
		return cmp.Compare(a.Outlet, b.Outlet)
	})
	slices.SortStableFunc(result, func(a, b models.ItemOutletSummary) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	return result
}
