// Package store reads transaction exports into validated, typed records.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"btq-insights/internal/models"
)

const (
	batchSize       = 10000
	maxWorkers      = 10
	maxRejectSample = 10
)

var ErrNoValidRecords = errors.New("no valid records found")

// Dataset is the immutable result of one load.
type Dataset struct {
	Transactions []models.Transaction
	Rejected     int
	Samples      []string
	Source       string
	LoadedAt     time.Time
	FromCache    bool
}

type Options struct {
	Sheet    string
	CacheDir string
}

type Loader struct {
	opts   Options
	logger *slog.Logger
}

func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

// Load reads a .csv or .xlsx file. Invalid rows are dropped and counted; the
// load fails only when the file cannot be read or no valid row remains.
func (l *Loader) Load(ctx context.Context, filename string) (*Dataset, error) {
	if cached, err := l.loadFromCache(filename); err == nil {
		info, err := os.Stat(filename)
		if err == nil && info.ModTime().Before(cached.LastModified) {
			l.logger.Info("loaded from cache", "records", len(cached.Dataset.Transactions))
			ds := cached.Dataset
			ds.FromCache = true
			return &ds, nil
		}
	}

	start := time.Now()
	l.logger.Info("processing transaction file", "filename", filename)

	var (
		ds  *Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		ds, err = l.loadXLSX(ctx, filename)
	default:
		ds, err = l.loadCSV(ctx, filename)
	}
	if err != nil {
		return nil, err
	}

	if err := l.saveToCache(filename, ds); err != nil {
		l.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	l.logger.Info("transaction file processed",
		"records", len(ds.Transactions),
		"rejected", ds.Rejected,
		"duration", duration,
	)
	for _, sample := range ds.Samples {
		l.logger.Debug("rejected row", "reason", sample)
	}

	return ds, nil
}

func (l *Loader) loadCSV(ctx context.Context, filename string) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	acc := newAccumulator(filename)
	batch := make([]RowFields, 0, batchSize)
	line := 1
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			acc.reject(&RowError{Line: line, Field: "row", Err: err})
			continue
		}

		batch = append(batch, cols.fields(line, record))
		if len(batch) >= batchSize {
			if err := acc.parseBatch(ctx, batch); err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
	}

	if err := acc.parseBatch(ctx, batch); err != nil {
		return nil, err
	}
	return acc.dataset()
}

func (l *Loader) loadXLSX(ctx context.Context, filename string) (*Dataset, error) {
	f, err := excelize.OpenFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := l.opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	acc := newAccumulator(filename)
	for start := 1; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := make([]RowFields, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, cols.fields(i+1, rows[i]))
		}
		if err := acc.parseBatch(ctx, batch); err != nil {
			return nil, err
		}
	}
	return acc.dataset()
}

type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) fields(line int, record []string) RowFields {
	cell := func(name string) string {
		if i := c[name]; i < len(record) {
			return record[i]
		}
		return ""
	}
	return RowFields{
		Line:     line,
		DocDate:  cell(ColDate),
		Qty:      cell(ColQty),
		Value:    cell(ColValue),
		Region:   cell(ColRegion),
		Category: cell(ColCategory),
		ItemCode: cell(ColItemCode),
		Outlet:   cell(ColOutlet),
	}
}

type accumulator struct {
	source   string
	txs      []models.Transaction
	rejected int
	samples  []string
}

func newAccumulator(source string) *accumulator {
	return &accumulator{source: source}
}

func (a *accumulator) reject(err error) {
	a.rejected++
	if len(a.samples) < maxRejectSample {
		a.samples = append(a.samples, err.Error())
	}
}

// parseBatch parses rows concurrently and appends them in input order.
func (a *accumulator) parseBatch(ctx context.Context, batch []RowFields) error {
	if len(batch) == 0 {
		return nil
	}

	txs := make([]models.Transaction, len(batch))
	errs := make([]error, len(batch))

	var wg errgroup.Group
	wg.SetLimit(maxWorkers)
	for i, row := range batch {
		wg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			txs[i], errs[i] = ParseTransaction(row)
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return err
	}

	for i := range batch {
		if errs[i] != nil {
			a.reject(errs[i])
			continue
		}
		a.txs = append(a.txs, txs[i])
	}
	return nil
}

func (a *accumulator) dataset() (*Dataset, error) {
	if len(a.txs) == 0 {
		return nil, fmt.Errorf("%w (%d rows rejected)", ErrNoValidRecords, a.rejected)
	}
	return &Dataset{
		Transactions: a.txs,
		Rejected:     a.rejected,
		Samples:      a.samples,
		Source:       a.source,
		LoadedAt:     time.Now(),
	}, nil
}
