package engine

import "btq-insights/internal/models"

// Filter keeps the transactions whose region and category are both in the
// allowed sets. An empty set allows nothing.
func Filter(txs []models.Transaction, regions, categories []string) []models.Transaction {
	if len(regions) == 0 || len(categories) == 0 {
		return nil
	}

	allowedRegions := toSet(regions)
	allowedCategories := toSet(categories)

	var filtered []models.Transaction
	for _, tx := range txs {
		if _, ok := allowedRegions[tx.Region]; !ok {
			continue
		}
		if _, ok := allowedCategories[tx.Category]; !ok {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// ItemTransactions returns the transactions of a single item, in input order.
func ItemTransactions(txs []models.Transaction, itemCode string) []models.Transaction {
	var out []models.Transaction
	for _, tx := range txs {
		if tx.ItemCode == itemCode {
			out = append(out, tx)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
