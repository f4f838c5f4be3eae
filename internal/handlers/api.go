package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"btq-insights/internal/errors"
	"btq-insights/internal/observability"
	"btq-insights/internal/services"
)

const queryCacheControl = "private, max-age=60"

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, toAppError(err), observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.Filters(), map[string]string{
		"Cache-Control": queryCacheControl,
	})
}

func (h *APIHandlers) HandleTopItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), h.analytics)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.analytics.TopItems(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, result, map[string]string{
		"Cache-Control": queryCacheControl,
	})
}

func (h *APIHandlers) HandleItemReports(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), h.analytics)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	batch, err := h.analytics.ItemReports(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, batch, map[string]string{
		"Cache-Control": queryCacheControl,
	})
}

func (h *APIHandlers) HandleItemSummary(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query(), h.analytics)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.analytics.ItemSummaries(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccessWithHeaders(w, result, map[string]string{
		"Cache-Control": queryCacheControl,
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.analytics.Ready() {
		status = "loading"
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   observability.ServiceVersion,
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Stats()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	errors.WriteSuccess(w, stats)
}

// HandleReload reloads the dataset from its source file right away.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	h.logger.Info("manual reload requested", "request_id", requestID)

	if err := h.analytics.Load(r.Context()); err != nil {
		errors.WriteError(w, h.logger, errors.Wrap(err, errors.CodeServiceUnavail, "Reload failed"), requestID)
		return
	}

	h.HandleStats(w, r)
}
