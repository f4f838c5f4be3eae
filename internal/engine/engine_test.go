package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btq-insights/internal/models"
)

var allCategories = []string{"Rings", "Chains"}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       Query
		wantErr bool
	}{
		{"valid", Query{TopItems: 5, TopOutlets: 3}, false},
		{"large n is accepted", Query{TopItems: 500, TopOutlets: 500}, false},
		{"zero items", Query{TopItems: 0, TopOutlets: 3}, true},
		{"negative outlets", Query{TopItems: 1, TopOutlets: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTopItems(t *testing.T) {
	q := Query{Regions: []string{"West", "East"}, Categories: allCategories, TopItems: 1}

	got, err := TopItems(sampleTransactions(), q)
	require.NoError(t, err)

	assert.False(t, got.Empty)
	assert.Equal(t, []models.RegionItemAggregate{
		{Region: "East", ItemCode: "B2", Quantity: 70, Value: 1400},
		{Region: "West", ItemCode: "A1", Quantity: 140, Value: 1380},
	}, got.Rows)
}

func TestTopItems_EmptyCategorySelection(t *testing.T) {
	q := Query{Regions: []string{"West", "East"}, Categories: []string{}, TopItems: 5}

	got, err := TopItems(sampleTransactions(), q)
	require.NoError(t, err)

	assert.True(t, got.Empty)
	assert.Equal(t, EmptyNotice, got.Notice)
	assert.Empty(t, got.Rows)
}

func TestTopItems_InvalidN(t *testing.T) {
	_, err := TopItems(sampleTransactions(), Query{Regions: []string{"West"}, Categories: allCategories})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestItemReports_RankOrder(t *testing.T) {
	q := Query{Regions: []string{"West"}, Categories: allCategories, TopItems: 2, TopOutlets: 3}

	batch, err := ItemReports(context.Background(), sampleTransactions(), q, 2)
	require.NoError(t, err)

	require.Len(t, batch.Reports, 2)
	assert.Empty(t, batch.Failures)
	assert.Equal(t, "A1", batch.Reports[0].ItemCode)
	assert.Equal(t, 1, batch.Reports[0].Rank)
	assert.Equal(t, "B2", batch.Reports[1].ItemCode)
	assert.Equal(t, 2, batch.Reports[1].Rank)
	assert.Equal(t, "West", batch.Reports[0].Region)
}

func TestItemReports_MissingItemIsIsolated(t *testing.T) {
	q := Query{
		Regions:    []string{"West"},
		Categories: allCategories,
		Items:      []string{"C3", "D4", "A1"},
		TopItems:   5,
		TopOutlets: 5,
	}

	batch, err := ItemReports(context.Background(), sampleTransactions(), q, 0)
	require.NoError(t, err)

	require.Len(t, batch.Reports, 2)
	assert.Equal(t, "C3", batch.Reports[0].ItemCode)
	assert.Equal(t, "A1", batch.Reports[1].ItemCode)
	assert.Equal(t, 3, batch.Reports[1].Rank)

	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "D4", batch.Failures[0].ItemCode)
	assert.Equal(t, 2, batch.Failures[0].Rank)
	var missing *MissingCategoryError
	assert.True(t, errors.As(batch.Failures[0].Err, &missing))
}

func TestItemReports_Empty(t *testing.T) {
	q := Query{Regions: []string{"North"}, Categories: allCategories, TopItems: 5, TopOutlets: 5}

	batch, err := ItemReports(context.Background(), sampleTransactions(), q, 4)
	require.NoError(t, err)

	assert.True(t, batch.Empty)
	assert.Equal(t, EmptyNotice, batch.Notice)
	assert.Empty(t, batch.Reports)
}

func TestItemReports_ParallelMatchesSequential(t *testing.T) {
	var txs []models.Transaction
	for i := range 40 {
		item := fmt.Sprintf("I%02d", i)
		for j := range 6 {
			outlet := fmt.Sprintf("B%d", j)
			txs = append(txs, tx("West", "Rings", item, outlet, float64((i*7+j*3)%23), 10, day(2024, time.Month(1+j%3), 1)))
		}
	}
	q := Query{Regions: []string{"West"}, Categories: []string{"Rings"}, TopItems: 40, TopOutlets: 3}

	sequential, err := ItemReports(context.Background(), txs, q, 1)
	require.NoError(t, err)
	parallel, err := ItemReports(context.Background(), txs, q, 16)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestItemReports_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q := Query{Regions: []string{"West"}, Categories: allCategories, TopItems: 5, TopOutlets: 5}

	_, err := ItemReports(ctx, sampleTransactions(), q, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestItemSummaries(t *testing.T) {
	q := Query{Regions: []string{"West", "East"}, Categories: []string{"Rings"}}

	got := ItemSummaries(sampleTransactions(), q)

	require.Len(t, got.Rows, 2)
	assert.Equal(t, 1, got.Rows[0].No)
	assert.Equal(t, "A1", got.Rows[0].ItemCode)
	assert.Equal(t, 165.0, got.Rows[0].Quantity)
	assert.Equal(t, Forecast(165), got.Rows[0].Forecast)
	assert.Equal(t, 2, got.Rows[1].No)
	assert.Equal(t, "D4", got.Rows[1].ItemCode)
}

func TestItemSummaries_Empty(t *testing.T) {
	got := ItemSummaries(sampleTransactions(), Query{Regions: []string{"West"}})

	assert.True(t, got.Empty)
	assert.Empty(t, got.Rows)
}

func BenchmarkItemReports(b *testing.B) {
	var txs []models.Transaction
	for i := range 5000 {
		txs = append(txs, tx("West", "Rings", fmt.Sprintf("I%03d", i%200), fmt.Sprintf("B%d", i%17), float64(i%31), 1, day(2024, time.Month(1+i%12), 1)))
	}
	q := Query{Regions: []string{"West"}, Categories: []string{"Rings"}, TopItems: 10, TopOutlets: 5}

	b.ResetTimer()
	for b.Loop() {
		_, _ = ItemReports(context.Background(), txs, q, 8)
	}
}
