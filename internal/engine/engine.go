// Package engine holds the sales analytics rules: filtering, aggregation,
// ranking, outlet consistency, trend and forecast, and the per-item report
// assembler. Every function is a pure function of its arguments.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"btq-insights/internal/models"
)

const defaultWorkers = 8

var validate = validator.New()

// Query selects the transactions to analyse and how many ranked rows to keep.
// Items, when set, replaces the ranking for item reports.
type Query struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Items      []string `json:"items,omitempty"`
	TopItems   int      `json:"top_items" validate:"gt=0"`
	TopOutlets int      `json:"top_outlets" validate:"gt=0"`
}

func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

// RegionLabel names the selected regions in summaries.
func (q Query) RegionLabel() string {
	return strings.Join(q.Regions, ", ")
}

type TopItemsResult struct {
	Empty  bool                         `json:"empty"`
	Notice string                       `json:"notice,omitempty"`
	Rows   []models.RegionItemAggregate `json:"rows"`
}

// ItemFailure records an item whose report could not be built.
type ItemFailure struct {
	Rank     int    `json:"rank"`
	ItemCode string `json:"itemcode"`
	Error    string `json:"error"`
	Err      error  `json:"-"`
}

type ReportBatch struct {
	Empty    bool                `json:"empty"`
	Notice   string              `json:"notice,omitempty"`
	Reports  []models.ItemReport `json:"reports"`
	Failures []ItemFailure       `json:"failures,omitempty"`
}

type SummaryResult struct {
	Empty  bool                 `json:"empty"`
	Notice string               `json:"notice,omitempty"`
	Rows   []models.ItemSummary `json:"rows"`
}

// TopItems ranks items per region by quantity sold.
func TopItems(txs []models.Transaction, q Query) (TopItemsResult, error) {
	if err := validate.StructPartial(q, "TopItems"); err != nil {
		return TopItemsResult{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	filtered := Filter(txs, q.Regions, q.Categories)
	if len(filtered) == 0 {
		return TopItemsResult{Empty: true, Notice: EmptyNotice, Rows: []models.RegionItemAggregate{}}, nil
	}

	return TopItemsResult{Rows: RankByRegion(AggregateByRegionItem(filtered), q.TopItems)}, nil
}

// ItemReports builds one report per selected item, in rank order. Reports
// are computed concurrently, at most workers at a time. An item that fails
// is listed in Failures and does not stop the others. The returned error is
// non-nil only for an invalid query or a cancelled context.
func ItemReports(ctx context.Context, txs []models.Transaction, q Query, workers int) (ReportBatch, error) {
	if err := q.Validate(); err != nil {
		return ReportBatch{}, err
	}

	filtered := Filter(txs, q.Regions, q.Categories)
	if len(filtered) == 0 {
		return ReportBatch{Empty: true, Notice: EmptyNotice, Reports: []models.ItemReport{}}, nil
	}

	items := q.Items
	if len(items) == 0 {
		for _, agg := range RankItems(AggregateByItem(filtered), q.TopItems) {
			items = append(items, agg.ItemCode)
		}
	}

	if workers <= 0 {
		workers = defaultWorkers
	}
	region := q.RegionLabel()
	reports := make([]models.ItemReport, len(items))
	errs := make([]error, len(items))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := AssembleReport(filtered, item, region, q.TopOutlets)
			report.Rank = i + 1
			reports[i], errs[i] = report, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ReportBatch{}, err
	}

	batch := ReportBatch{Reports: make([]models.ItemReport, 0, len(items))}
	for i, item := range items {
		if errs[i] != nil {
			batch.Failures = append(batch.Failures, ItemFailure{
				Rank:     i + 1,
				ItemCode: item,
				Error:    errs[i].Error(),
				Err:      errs[i],
			})
			continue
		}
		batch.Reports = append(batch.Reports, reports[i])
	}
	return batch, nil
}

// ItemSummaries tabulates every filtered item with its totals and forecast,
// ordered by item code.
func ItemSummaries(txs []models.Transaction, q Query) SummaryResult {
	filtered := Filter(txs, q.Regions, q.Categories)
	if len(filtered) == 0 {
		return SummaryResult{Empty: true, Notice: EmptyNotice, Rows: []models.ItemSummary{}}
	}

	aggs := AggregateByItem(filtered)
	rows := make([]models.ItemSummary, 0, len(aggs))
	for i, agg := range aggs {
		rows = append(rows, models.ItemSummary{
			No:       i + 1,
			ItemCode: agg.ItemCode,
			Quantity: agg.Quantity,
			Value:    agg.Value,
			Forecast: Forecast(agg.Quantity),
		})
	}
	return SummaryResult{Rows: rows}
}
