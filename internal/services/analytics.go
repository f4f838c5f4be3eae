// Package services owns the loaded dataset and runs engine queries against
// a consistent snapshot of it.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"btq-insights/internal/config"
	"btq-insights/internal/engine"
	"btq-insights/internal/models"
	"btq-insights/internal/observability"
	"btq-insights/internal/store"
)

// ErrNotReady is returned by queries issued before any dataset is loaded.
var ErrNotReady = errors.New("dataset not loaded")

// DatasetLoader reads a transaction file. *store.Loader satisfies it.
type DatasetLoader interface {
	Load(ctx context.Context, filename string) (*store.Dataset, error)
}

type Filters struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
}

type Stats struct {
	Source     string    `json:"source"`
	Records    int       `json:"records"`
	Rejected   int       `json:"rejected"`
	Regions    int       `json:"regions"`
	Categories int       `json:"categories"`
	Items      int       `json:"items"`
	Outlets    int       `json:"btqs"`
	FromCache  bool      `json:"from_cache"`
	LoadedAt   time.Time `json:"loaded_at"`
	SourceMod  time.Time `json:"source_modified"`
	Workers    int       `json:"report_workers"`
}

// snapshot is replaced wholesale on every load and never mutated after.
type snapshot struct {
	dataset    *store.Dataset
	regions    []string
	categories []string
	items      int
	outlets    int
	sourceMod  time.Time
}

type Analytics struct {
	mu      sync.RWMutex
	current *snapshot

	loader  DatasetLoader
	source  string
	cfg     config.EngineConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

func NewAnalytics(loader DatasetLoader, source string, cfg config.EngineConfig, metrics *observability.Metrics, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Analytics{
		loader:  loader,
		source:  source,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Load reads the source file and swaps it in. On failure the previous
// dataset, if any, keeps serving.
func (a *Analytics) Load(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "analytics.load", attribute.String("source", a.source))
	defer span.End()

	var mod time.Time
	if info, err := os.Stat(a.source); err == nil {
		mod = info.ModTime()
	}

	ds, err := a.loader.Load(ctx, a.source)
	if err != nil {
		a.metrics.RecordLoad(0, 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return fmt.Errorf("load %s: %w", a.source, err)
	}

	snap := newSnapshot(ds)
	snap.sourceMod = mod
	a.swap(snap)

	a.metrics.RecordLoad(len(ds.Transactions), ds.Rejected, nil)
	span.SetAttributes(
		attribute.Int("records", len(ds.Transactions)),
		attribute.Int("rejected", ds.Rejected),
	)
	a.logger.Info("dataset loaded",
		"source", a.source,
		"records", len(ds.Transactions),
		"rejected", ds.Rejected,
		"regions", len(snap.regions),
		"from_cache", ds.FromCache,
	)
	return nil
}

// SetData installs an in-memory dataset.
func (a *Analytics) SetData(txs []models.Transaction) {
	a.swap(newSnapshot(&store.Dataset{
		Transactions: txs,
		Source:       "memory",
		LoadedAt:     time.Now(),
	}))
}

func (a *Analytics) swap(s *snapshot) {
	a.mu.Lock()
	a.current = s
	a.mu.Unlock()
}

func (a *Analytics) view() (*snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return nil, ErrNotReady
	}
	return a.current, nil
}

func newSnapshot(ds *store.Dataset) *snapshot {
	regions := make(map[string]struct{})
	categories := make(map[string]struct{})
	items := make(map[string]struct{})
	outlets := make(map[string]struct{})
	for _, tx := range ds.Transactions {
		regions[tx.Region] = struct{}{}
		categories[tx.Category] = struct{}{}
		items[tx.ItemCode] = struct{}{}
		outlets[tx.Outlet] = struct{}{}
	}
	return &snapshot{
		dataset:    ds,
		regions:    sortedKeys(regions),
		categories: sortedKeys(categories),
		items:      len(items),
		outlets:    len(outlets),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (a *Analytics) Ready() bool {
	_, err := a.view()
	return err == nil
}

func (a *Analytics) Source() string {
	return a.source
}

// SourceModTime is the modification time of the source file as seen by the
// last successful Load.
func (a *Analytics) SourceModTime() time.Time {
	snap, err := a.view()
	if err != nil {
		return time.Time{}
	}
	return snap.sourceMod
}

// Filters lists the distinct regions and categories of the current dataset.
func (a *Analytics) Filters() Filters {
	snap, err := a.view()
	if err != nil {
		return Filters{Regions: []string{}, Categories: []string{}}
	}
	return Filters{
		Regions:    slices.Clone(snap.regions),
		Categories: slices.Clone(snap.categories),
	}
}

func (a *Analytics) Stats() (Stats, error) {
	snap, err := a.view()
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Source:     snap.dataset.Source,
		Records:    len(snap.dataset.Transactions),
		Rejected:   snap.dataset.Rejected,
		Regions:    len(snap.regions),
		Categories: len(snap.categories),
		Items:      snap.items,
		Outlets:    snap.outlets,
		FromCache:  snap.dataset.FromCache,
		LoadedAt:   snap.dataset.LoadedAt,
		SourceMod:  snap.sourceMod,
		Workers:    a.cfg.Workers,
	}, nil
}

// Defaults returns the configured top-N values used when a request omits them.
func (a *Analytics) Defaults() (topItems, topOutlets int) {
	return a.cfg.TopItems, a.cfg.TopOutlets
}

func (a *Analytics) TopItems(ctx context.Context, q engine.Query) (engine.TopItemsResult, error) {
	snap, err := a.view()
	if err != nil {
		return engine.TopItemsResult{}, err
	}

	_, span := observability.StartSpan(ctx, "engine.top_items", queryAttrs(q)...)
	defer span.End()

	result, err := engine.TopItems(snap.dataset.Transactions, q)
	if err != nil {
		a.record("top_items", observability.OutcomeInvalid)
		span.RecordError(err)
		return result, err
	}

	a.record("top_items", outcome(result.Empty, 0))
	span.SetAttributes(attribute.Int("rows", len(result.Rows)))
	a.logger.DebugContext(ctx, "top items computed",
		"rows", len(result.Rows),
		"empty", result.Empty,
		"request_id", observability.GetRequestID(ctx),
	)
	return result, nil
}

func (a *Analytics) ItemReports(ctx context.Context, q engine.Query) (engine.ReportBatch, error) {
	snap, err := a.view()
	if err != nil {
		return engine.ReportBatch{}, err
	}

	ctx, span := observability.StartSpan(ctx, "engine.item_reports", queryAttrs(q)...)
	defer span.End()

	batch, err := engine.ItemReports(ctx, snap.dataset.Transactions, q, a.cfg.Workers)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidQuery) {
			a.record("item_reports", observability.OutcomeInvalid)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "item reports failed")
		return batch, err
	}

	a.record("item_reports", outcome(batch.Empty, len(batch.Failures)))
	a.metrics.RecordReportFailures(len(batch.Failures))
	span.SetAttributes(
		attribute.Int("reports", len(batch.Reports)),
		attribute.Int("failures", len(batch.Failures)),
	)
	for _, f := range batch.Failures {
		a.logger.WarnContext(ctx, "item report failed",
			"itemcode", f.ItemCode,
			"rank", f.Rank,
			"error", f.Err,
			"request_id", observability.GetRequestID(ctx),
		)
	}
	return batch, nil
}

func (a *Analytics) ItemSummaries(ctx context.Context, q engine.Query) (engine.SummaryResult, error) {
	snap, err := a.view()
	if err != nil {
		return engine.SummaryResult{}, err
	}

	_, span := observability.StartSpan(ctx, "engine.item_summaries", queryAttrs(q)...)
	defer span.End()

	result := engine.ItemSummaries(snap.dataset.Transactions, q)
	a.record("item_summaries", outcome(result.Empty, 0))
	span.SetAttributes(attribute.Int("rows", len(result.Rows)))
	return result, nil
}

func (a *Analytics) record(query, result string) {
	a.metrics.RecordQuery(query, result)
}

func outcome(empty bool, failures int) string {
	switch {
	case empty:
		return observability.OutcomeEmpty
	case failures > 0:
		return observability.OutcomePartial
	default:
		return observability.OutcomeOK
	}
}

func queryAttrs(q engine.Query) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.StringSlice("query.regions", q.Regions),
		attribute.StringSlice("query.categories", q.Categories),
		attribute.StringSlice("query.items", q.Items),
		attribute.Int("query.top_items", q.TopItems),
		attribute.Int("query.top_outlets", q.TopOutlets),
	}
}
