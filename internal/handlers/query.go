package handlers

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"btq-insights/internal/engine"
	"btq-insights/internal/errors"
	"btq-insights/internal/services"
)

const (
	paramRegion   = "region"
	paramCategory = "category"
	paramItem     = "item"
	paramTop      = "top"
	paramTopBTQ   = "top_btq"

	// datastar sends signals of GET requests in this query parameter.
	signalsParam = "datastar"
)

// querySignals is the dashboard's filter state as sent by datastar. A nil
// slice means the signal was not sent.
type querySignals struct {
	Regions    []string `json:"regions"`
	Categories []string `json:"categories"`
	Items      []string `json:"items"`
	Top        int      `json:"top"`
	TopBTQ     int      `json:"topBtq"`
}

// parseQuery builds an engine query from repeated URL parameters. An absent
// region or category parameter selects every known value; a present but
// empty one selects nothing.
func parseQuery(values url.Values, analytics *services.Analytics) (engine.Query, error) {
	topItems, topOutlets := analytics.Defaults()
	filters := analytics.Filters()

	q := engine.Query{
		Regions:    filters.Regions,
		Categories: filters.Categories,
		Items:      values[paramItem],
		TopItems:   topItems,
		TopOutlets: topOutlets,
	}
	if values.Has(paramRegion) {
		q.Regions = nonEmpty(values[paramRegion])
	}
	if values.Has(paramCategory) {
		q.Categories = nonEmpty(values[paramCategory])
	}

	var err error
	if q.TopItems, err = intParam(values, paramTop, q.TopItems); err != nil {
		return q, err
	}
	if q.TopOutlets, err = intParam(values, paramTopBTQ, q.TopOutlets); err != nil {
		return q, err
	}
	q.Items = nonEmpty(q.Items)
	return q, nil
}

// readQuery prefers datastar signals and falls back to URL parameters.
func readQuery(r *http.Request, analytics *services.Analytics) (engine.Query, error) {
	if r.Method == http.MethodGet && !r.URL.Query().Has(signalsParam) {
		return parseQuery(r.URL.Query(), analytics)
	}

	var signals querySignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return engine.Query{}, errors.ValidationWrap(err, "Invalid signals")
	}

	topItems, topOutlets := analytics.Defaults()
	filters := analytics.Filters()
	q := engine.Query{
		Regions:    filters.Regions,
		Categories: filters.Categories,
		Items:      nonEmpty(signals.Items),
		TopItems:   topItems,
		TopOutlets: topOutlets,
	}
	if signals.Regions != nil {
		q.Regions = nonEmpty(signals.Regions)
	}
	if signals.Categories != nil {
		q.Categories = nonEmpty(signals.Categories)
	}
	if signals.Top != 0 {
		q.TopItems = signals.Top
	}
	if signals.TopBTQ != 0 {
		q.TopOutlets = signals.TopBTQ
	}
	return q, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	if !values.Has(name) {
		return fallback, nil
	}
	n, err := strconv.Atoi(values.Get(name))
	if err != nil {
		return 0, errors.ValidationWrap(err, fmt.Sprintf("%s must be a positive integer", name))
	}
	return n, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// toAppError maps service and engine errors onto the HTTP envelope.
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, engine.ErrInvalidQuery):
		return errors.ValidationWrap(err, "Invalid query")
	case stderrors.Is(err, services.ErrNotReady):
		return errors.ServiceUnavailable("Dataset is not loaded yet")
	default:
		return errors.InternalWrap(err, "Query failed")
	}
}
