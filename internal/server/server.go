package server

import (
	"log/slog"
	"net/http"

	"btq-insights/internal/handlers"
	"btq-insights/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// TemplateHandlers are the page handlers owned by the binary.
type TemplateHandlers struct {
	Dashboard http.HandlerFunc
	Metrics   http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	if templateHandlers.Metrics != nil {
		s.mux.Handle("GET /metrics", templateHandlers.Metrics)
	}

	// Admin
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.HandleFunc("POST /admin/reload", s.apiHandlers.HandleReload)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/filters", s.apiHandlers.HandleFilters)
	s.mux.HandleFunc("GET /api/top-items", s.apiHandlers.HandleTopItems)
	s.mux.HandleFunc("GET /api/item-reports", s.apiHandlers.HandleItemReports)
	s.mux.HandleFunc("GET /api/item-summary", s.apiHandlers.HandleItemSummary)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/top-items", s.sseHandlers.HandleTopItems)
	s.mux.HandleFunc("GET /sse/item-reports", s.sseHandlers.HandleItemReports)
	s.mux.HandleFunc("GET /sse/item-summary", s.sseHandlers.HandleItemSummary)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
