package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btq-insights/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggerConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "records", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, ServiceName, entry["service"])
	assert.Equal(t, float64(3), entry["records"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggerConfig{Level: "debug", Format: "text"}, &buf)

	logger.Debug("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")

	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestInitTracing(t *testing.T) {
	shutdown, err := InitTracing(config.TracingConfig{Exporter: "none", SampleRatio: 1})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = InitTracing(config.TracingConfig{Exporter: "zipkin"})
	assert.Error(t, err)

	ctx, span := StartSpan(context.Background(), "test")
	span.End()
	assert.NotNil(t, ctx)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest(http.MethodGet, 200, 10*time.Millisecond)
	m.RecordQuery("top_items", OutcomeEmpty)
	m.RecordQuery("top_items", OutcomeEmpty)
	m.RecordReportFailures(2)
	m.RecordLoad(120, 4, nil)
	m.RecordLoad(0, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("top_items", OutcomeEmpty)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportFailures))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.transactions))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.rejectedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "btq_engine_queries_total")
}

func TestNewMetrics_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
