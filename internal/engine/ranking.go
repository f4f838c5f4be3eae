package engine

import (
	"cmp"
	"slices"

	"btq-insights/internal/models"
)

// RankByRegion keeps the first n items of each region by quantity descending.
// Regions come out in ascending order and ties keep aggregate order.
func RankByRegion(aggs []models.RegionItemAggregate, n int) []models.RegionItemAggregate {
	ranked := slices.Clone(aggs)
	slices.SortStableFunc(ranked, func(a, b models.RegionItemAggregate) int {
		if c := cmp.Compare(a.Region, b.Region); c != 0 {
			return c
		}
		return cmp.Compare(b.Quantity, a.Quantity)
	})

	taken := make(map[string]int)
	result := make([]models.RegionItemAggregate, 0, len(ranked))
	for _, agg := range ranked {
		if taken[agg.Region] >= n {
			continue
		}
		taken[agg.Region]++
		result = append(result, agg)
	}
	return result
}

// RankItems returns the first n item aggregates by quantity descending.
func RankItems(aggs []models.ItemAggregate, n int) []models.ItemAggregate {
	ranked := slices.Clone(aggs)
	slices.SortStableFunc(ranked, func(a, b models.ItemAggregate) int {
		return cmp.Compare(b.Quantity, a.Quantity)
	})
	return head(ranked, n)
}

// TopOutlets returns the first n entries of an already sorted outlet summary.
func TopOutlets(outlets []models.ItemOutletSummary, n int) []models.ItemOutletSummary {
	return head(slices.Clone(outlets), n)
}

func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) <= n {
		return s
	}
	return s[:n]
}
