// Package templates renders the server-side dashboard page. Result panels
// are filled afterwards by datastar SSE fragments.
package templates

//go:generate templ generate

import (
	"encoding/json"
	"fmt"
)

type DashboardOptions struct {
	Regions    []string
	Categories []string
	TopItems   int
	TopOutlets int
}

type initialSignals struct {
	Regions      []string `json:"regions"`
	Categories   []string `json:"categories"`
	Items        []string `json:"items"`
	Top          int      `json:"top"`
	TopBTQ       int      `json:"topBtq"`
	TopItemsData []any    `json:"topItemsData"`
	ReportCharts []any    `json:"reportCharts"`
	SummaryData  []any    `json:"summaryData"`
}

func initialSignalsJSON(opts DashboardOptions) (string, error) {
	signals, err := json.Marshal(initialSignals{
		Regions:      opts.Regions,
		Categories:   opts.Categories,
		Items:        []string{},
		Top:          opts.TopItems,
		TopBTQ:       opts.TopOutlets,
		TopItemsData: []any{},
		ReportCharts: []any{},
		SummaryData:  []any{},
	})
	if err != nil {
		return "", fmt.Errorf("marshal dashboard signals: %w", err)
	}
	return string(signals), nil
}

const dashboardStyle = `<style>
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
.dashboard{max-width:1100px;margin:0 auto;padding:24px}
.filters{display:flex;gap:16px;align-items:flex-end;flex-wrap:wrap;margin-bottom:24px}
.filters select{min-width:160px;min-height:90px}
.panel{background:#fff;border-radius:8px;padding:16px;margin-bottom:24px;box-shadow:0 1px 3px rgba(0,0,0,.08)}
.modern-table{width:100%;border-collapse:collapse}
.modern-table th,.modern-table td{padding:6px 10px;border-bottom:1px solid #e4e7eb;text-align:left}
.category-badge{background:#e0e8f9;border-radius:4px;padding:2px 6px;font-size:.85em}
.report-card{border-top:1px solid #e4e7eb;padding-top:12px;margin-top:12px}
.notice{padding:8px 12px;border-radius:6px}
.notice.warning{background:#fff8e1}
.notice.error{background:#fdecea}
.notice.success{background:#e8f5e9}
.trend-increasing{color:#2e7d32}
.trend-decreasing{color:#c62828}
</style>`
