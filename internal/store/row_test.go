package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() RowFields {
	return RowFields{
		Line:     2,
		DocDate:  "2024-03-15",
		Qty:      "4",
		Value:    "1250.50",
		Region:   "Colombo",
		Category: "Rings",
		ItemCode: "RG-001",
		Outlet:   "BTQ-07",
	}
}

func TestParseTransaction_Valid(t *testing.T) {
	tx, err := ParseTransaction(validRow())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	assert.Equal(t, "Colombo", tx.Region)
	assert.Equal(t, "Rings", tx.Category)
	assert.Equal(t, "RG-001", tx.ItemCode)
	assert.Equal(t, "BTQ-07", tx.Outlet)
	assert.Equal(t, 4.0, tx.Quantity)
	assert.Equal(t, 1250.5, tx.Value)
}

func TestParseTransaction_DateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"2024-03-15", "2024/03/15", "03/15/2024", "3/15/2024", "2024-3-15", "2024-03-15 00:00:00", "20240315", "45366"} {
		row := validRow()
		row.DocDate = raw

		tx, err := ParseTransaction(row)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(tx.Date), "%s parsed as %s", raw, tx.Date)
	}
}

func TestParseTransaction_DatesAreMonthFirst(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"03/04/2024", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"01/13/2024", time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)},
		{"1/5/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"12-31-2023", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"2024-01-05T10:00:00", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-01-05 10:00", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"2024-01-05T10:00:00Z", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"20240105", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			row := validRow()
			row.DocDate = tt.raw

			tx, err := ParseTransaction(row)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(tx.Date), "parsed as %s", tx.Date)
		})
	}
}

func TestParseTransaction_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RowFields)
		field string
	}{
		{"bad date", func(r *RowFields) { r.DocDate = "not-a-date" }, ColDate},
		{"empty date", func(r *RowFields) { r.DocDate = "" }, ColDate},
		{"day first date", func(r *RowFields) { r.DocDate = "13/01/2024" }, ColDate},
		{"serial out of range", func(r *RowFields) { r.DocDate = "20241399" }, ColDate},
		{"non numeric qty", func(r *RowFields) { r.Qty = "four" }, ColQty},
		{"nan qty", func(r *RowFields) { r.Qty = "NaN" }, ColQty},
		{"non numeric value", func(r *RowFields) { r.Value = "" }, ColValue},
		{"negative qty", func(r *RowFields) { r.Qty = "-2" }, "quantity"},
		{"missing region", func(r *RowFields) { r.Region = "  " }, "region"},
		{"missing item", func(r *RowFields) { r.ItemCode = "" }, "itemcode"},
		{"missing outlet", func(r *RowFields) { r.Outlet = "" }, "outlet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.edit(&row)

			_, err := ParseTransaction(row)

			var rowErr *RowError
			require.True(t, errors.As(err, &rowErr), "got %v", err)
			assert.Equal(t, tt.field, rowErr.Field)
			assert.Equal(t, 2, rowErr.Line)
		})
	}
}

func TestParseTransaction_CategoryCoercedToText(t *testing.T) {
	row := validRow()
	row.Category = ""

	tx, err := ParseTransaction(row)
	require.NoError(t, err)
	assert.Equal(t, "nan", tx.Category)

	row.Category = " 101 "
	tx, err = ParseTransaction(row)
	require.NoError(t, err)
	assert.Equal(t, "101", tx.Category)
}
