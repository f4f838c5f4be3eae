package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"btq-insights/internal/engine"
	"btq-insights/internal/models"
	"btq-insights/internal/observability"
	"btq-insights/internal/services"
)

const (
	topItemsTarget = "top-items-content"
	reportsTarget  = "reports-content"
	summaryTarget  = "summary-content"
)

var fragmentFuncs = template.FuncMap{
	"num":          formatNumber,
	"money":        func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"outletNotice": engine.OutletNotice,
	"join":         strings.Join,
}

var topItemsTemplate = template.Must(template.New("topItems").Funcs(fragmentFuncs).Parse(`
<div id="top-items-content">
<table class="modern-table">
<thead><tr><th>Region</th><th>Itemcode</th><th>Qty</th><th>Value</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Region}}</td>
<td><strong>{{.ItemCode}}</strong></td>
<td>{{num .Quantity}}</td>
<td>{{money .Value}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var reportsTemplate = template.Must(template.New("reports").Funcs(fragmentFuncs).Parse(`
<div id="reports-content">
{{range .Reports}}<section class="report-card" id="report-{{.ItemCode}}">
<h3>{{.Rank}}. Itemcode {{.ItemCode}} <span class="category-badge">{{.Category}}</span></h3>
<p class="report-totals">Region {{.Region}} &middot; Qty {{num .Quantity}} &middot; Value {{money .Value}}</p>
<table class="modern-table">
<thead><tr><th>BTQ</th><th>Qty</th></tr></thead>
<tbody>
{{range .TopOutlets}}<tr><td>{{.Outlet}}</td><td>{{num .Quantity}}</td></tr>{{end}}
</tbody>
</table>
<p>Consistency score: <strong>{{printf "%.2f" .Consistency.Score}}</strong> (mean {{printf "%.2f" .Consistency.Mean}}, std dev {{printf "%.2f" .Consistency.StdDev}})</p>
<p class="{{if .Consistency.WeakOutlets}}notice warning{{else}}notice success{{end}}">{{outletNotice .Consistency}}</p>
<p class="trend trend-{{.Trend.Direction}}">{{.Trend.Direction.Advice}}</p>
<p>Forecast next period: {{num .Forecast.Quantity}} &middot; Recommended batch: <strong>{{.Forecast.Batch}}</strong></p>
<p class="summary">{{.Summary}}</p>
</section>{{end}}
{{if .Failures}}<div class="notice error">
<p>Some items could not be reported:</p>
<ul>{{range .Failures}}<li>{{.Rank}}. {{.ItemCode}}: {{.Error}}</li>{{end}}</ul>
</div>{{end}}
</div>`))

var summaryTemplate = template.Must(template.New("summary").Funcs(fragmentFuncs).Parse(`
<div id="summary-content">
<table class="modern-table">
<thead><tr><th>No</th><th>Itemcode</th><th>Qty</th><th>Value</th><th>Forecast</th><th>Batch</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.No}}</td>
<td>{{.ItemCode}}</td>
<td>{{num .Quantity}}</td>
<td>{{money .Value}}</td>
<td>{{num .Forecast.Quantity}}</td>
<td><strong>{{.Forecast.Batch}}</strong></td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var noticeTemplate = template.Must(template.New("notice").Parse(
	`<div id="{{.Target}}"><div class="notice {{.Level}}">{{.Message}}</div></div>`))

type notice struct {
	Target  string
	Level   string
	Message string
}

// reportChart is the chart payload of one report: outlet bars and the
// monthly series behind the trend.
type reportChart struct {
	ItemCode string                     `json:"itemcode"`
	Outlets  []models.ItemOutletSummary `json:"btqs"`
	Months   []models.MonthlyQuantity   `json:"months"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *SSEHandlers) HandleTopItems(w http.ResponseWriter, r *http.Request) {
	q, err := readQuery(r, h.analytics)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patchError(sse, r, topItemsTarget, err)
		return
	}

	result, err := h.analytics.TopItems(r.Context(), q)
	if err != nil {
		h.patchError(sse, r, topItemsTarget, err)
		return
	}
	if result.Empty {
		h.patchNotice(sse, notice{Target: topItemsTarget, Level: "warning", Message: result.Notice})
		return
	}

	html, err := render(topItemsTemplate, result.Rows)
	if err != nil {
		h.logger.Error("render top items", "error", err)
		return
	}
	h.patch(sse, html, map[string]any{"topItemsData": result.Rows})
}

func (h *SSEHandlers) HandleItemReports(w http.ResponseWriter, r *http.Request) {
	q, err := readQuery(r, h.analytics)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patchError(sse, r, reportsTarget, err)
		return
	}

	batch, err := h.analytics.ItemReports(r.Context(), q)
	if err != nil {
		h.patchError(sse, r, reportsTarget, err)
		return
	}
	if batch.Empty {
		h.patchNotice(sse, notice{Target: reportsTarget, Level: "warning", Message: batch.Notice})
		return
	}

	html, err := render(reportsTemplate, batch)
	if err != nil {
		h.logger.Error("render item reports", "error", err)
		return
	}

	charts := make([]reportChart, 0, len(batch.Reports))
	for _, report := range batch.Reports {
		charts = append(charts, reportChart{
			ItemCode: report.ItemCode,
			Outlets:  report.TopOutlets,
			Months:   report.Trend.Months,
		})
	}
	h.patch(sse, html, map[string]any{"reportCharts": charts})
}

func (h *SSEHandlers) HandleItemSummary(w http.ResponseWriter, r *http.Request) {
	q, err := readQuery(r, h.analytics)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		h.patchError(sse, r, summaryTarget, err)
		return
	}

	result, err := h.analytics.ItemSummaries(r.Context(), q)
	if err != nil {
		h.patchError(sse, r, summaryTarget, err)
		return
	}
	if result.Empty {
		h.patchNotice(sse, notice{Target: summaryTarget, Level: "warning", Message: result.Notice})
		return
	}

	html, err := render(summaryTemplate, result.Rows)
	if err != nil {
		h.logger.Error("render item summary", "error", err)
		return
	}
	h.patch(sse, html, map[string]any{"summaryData": result.Rows})
}

func (h *SSEHandlers) patch(sse *datastar.ServerSentEventGenerator, html string, signals map[string]any) {
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch elements", "error", err)
		return
	}

	payload, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal chart signals", "error", err)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func (h *SSEHandlers) patchNotice(sse *datastar.ServerSentEventGenerator, n notice) {
	html, err := render(noticeTemplate, n)
	if err != nil {
		h.logger.Error("render notice", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch elements", "error", err)
	}
}

func (h *SSEHandlers) patchError(sse *datastar.ServerSentEventGenerator, r *http.Request, target string, err error) {
	appErr := toAppError(err)
	level, message := "error", appErr.Message
	if appErr.StatusCode < http.StatusInternalServerError {
		level = "warning"
		if appErr.Details != "" {
			message += ": " + appErr.Details
		}
	}

	h.logger.Warn("sse query failed",
		"target", target,
		"error_code", appErr.Code,
		"cause", appErr.Cause,
		"request_id", observability.GetRequestID(r.Context()),
	)
	h.patchNotice(sse, notice{Target: target, Level: level, Message: message})
}
