package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"btq-insights/internal/models"
)

// Column names of the transaction export, matched case-insensitively.
const (
	ColDate     = "docdate"
	ColQty      = "qty"
	ColValue    = "value"
	ColRegion   = "region"
	ColCategory = "categories"
	ColItemCode = "itemcode"
	ColOutlet   = "btq"
)

var requiredColumns = []string{ColDate, ColQty, ColValue, ColRegion, ColCategory, ColItemCode, ColOutlet}

// dateLayouts are tried in order. Slash and dash dates with the year last
// are month first. Single-digit months and days parse as well.
var dateLayouts = []string{
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"20060102",
}

// maxExcelSerial is 9999-12-31 in the 1900 date system.
const maxExcelSerial = 2958465

// missingCategory is how an empty category cell reads once coerced to text.
const missingCategory = "nan"

var validate = validator.New()

// RowFields holds the raw cells of one input row.
type RowFields struct {
	Line     int
	DocDate  string
	Qty      string
	Value    string
	Region   string
	Category string
	ItemCode string
	Outlet   string
}

// RowError describes why a row was rejected.
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParseTransaction turns raw cells into a valid Transaction or a *RowError.
func ParseTransaction(f RowFields) (models.Transaction, error) {
	date, err := parseDate(f.DocDate)
	if err != nil {
		return models.Transaction{}, &RowError{Line: f.Line, Field: ColDate, Err: err}
	}

	qty, err := parseNumber(f.Qty)
	if err != nil {
		return models.Transaction{}, &RowError{Line: f.Line, Field: ColQty, Err: err}
	}

	value, err := parseNumber(f.Value)
	if err != nil {
		return models.Transaction{}, &RowError{Line: f.Line, Field: ColValue, Err: err}
	}

	category := strings.TrimSpace(f.Category)
	if category == "" {
		category = missingCategory
	}

	tx := models.Transaction{
		Date:     date,
		Region:   strings.TrimSpace(f.Region),
		Category: category,
		ItemCode: strings.TrimSpace(f.ItemCode),
		Outlet:   strings.TrimSpace(f.Outlet),
		Quantity: qty,
		Value:    value,
	}

	if err := validate.Struct(tx); err != nil {
		field := "row"
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field = strings.ToLower(verrs[0].Field())
		}
		return models.Transaction{}, &RowError{Line: f.Line, Field: field, Err: err}
	}

	return tx, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	// spreadsheet cells read raw carry the date as a serial number
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial <= maxExcelSerial {
		return excelize.ExcelDateToTime(serial, false)
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func parseNumber(raw string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number: %q", raw)
	}
	return n, nil
}
