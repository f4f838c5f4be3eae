package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btq-insights/internal/config"
	"btq-insights/internal/models"
	"btq-insights/internal/observability"
	"btq-insights/internal/services"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) *Server {
	t.Helper()
	metrics := observability.NewMetrics()
	a := services.NewAnalytics(nil, "", config.EngineConfig{TopItems: 3, TopOutlets: 3, Workers: 2}, metrics, discard)
	a.SetData([]models.Transaction{
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Region: "West", Category: "Rings", ItemCode: "A1", Outlet: "X", Quantity: 10, Value: 100},
		{Date: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), Region: "West", Category: "Rings", ItemCode: "A1", Outlet: "Y", Quantity: 12, Value: 120},
	})

	return NewServer(a, discard, &TemplateHandlers{
		Dashboard: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("dashboard")) },
		Metrics:   metrics.Handler(),
	})
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/admin/stats", http.StatusOK},
		{http.MethodGet, "/api/filters", http.StatusOK},
		{http.MethodGet, "/api/top-items", http.StatusOK},
		{http.MethodGet, "/api/item-reports", http.StatusOK},
		{http.MethodGet, "/api/item-summary", http.StatusOK},
		{http.MethodGet, "/sse/top-items", http.StatusOK},
		{http.MethodGet, "/sse/item-reports", http.StatusOK},
		{http.MethodGet, "/sse/item-summary", http.StatusOK},
		{http.MethodGet, "/nonexistent", http.StatusNotFound},
		{http.MethodPost, "/api/top-items", http.StatusMethodNotAllowed},
		{http.MethodGet, "/admin/reload", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func testConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{ShutdownTimeout: 2 * time.Second}}
}

func TestGracefulServer_Serve(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	httpServer := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}
	gs := NewGracefulServer(httpServer, discard, testConfig())

	var order []string
	gs.RegisterShutdownHook(func(ctx context.Context) error { order = append(order, "first"); return nil })
	gs.RegisterShutdownHook(func(ctx context.Context) error { order = append(order, "second"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestGracefulServer_HookError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gs := NewGracefulServer(&http.Server{Handler: http.NotFoundHandler()}, discard, testConfig())
	hookErr := errors.New("flush failed")
	gs.RegisterShutdownHook(func(ctx context.Context) error { return hookErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = gs.Serve(ctx, ln)
	assert.ErrorIs(t, err, hookErr)
}
