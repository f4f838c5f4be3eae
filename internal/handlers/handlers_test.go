package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"btq-insights/internal/config"
	"btq-insights/internal/models"
	"btq-insights/internal/observability"
	"btq-insights/internal/services"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var engineCfg = config.EngineConfig{TopItems: 2, TopOutlets: 2, Workers: 2}

func tx(region, category, item, outlet string, qty, value float64, month time.Month, day int) models.Transaction {
	return models.Transaction{
		Date:     time.Date(2024, month, day, 0, 0, 0, 0, time.UTC),
		Region:   region,
		Category: category,
		ItemCode: item,
		Outlet:   outlet,
		Quantity: qty,
		Value:    value,
	}
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		tx("West", "Rings", "A1", "X", 60, 600, time.January, 3),
		tx("West", "Rings", "A1", "X", 40, 400, time.February, 9),
		tx("West", "Rings", "A1", "Y", 40, 380, time.February, 11),
		tx("West", "Chains", "B2", "X", 90, 1800, time.January, 20),
		tx("West", "Chains", "C3", "Z", 30, 300, time.February, 1),
		tx("East", "Rings", "A1", "K", 25, 250, time.January, 5),
		tx("East", "Rings", "D4", "K", 70, 700, time.January, 6),
		tx("East", "Chains", "B2", "L", 70, 1400, time.February, 6),
	}
}

func newTestAnalytics(t *testing.T) *services.Analytics {
	t.Helper()
	a := services.NewAnalytics(nil, "", engineCfg, observability.NewMetrics(), discard)
	a.SetData(sampleTransactions())
	return a
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) (T, envelope) {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))

	var data T
	if env.Success {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return data, env
}

func serve(h http.HandlerFunc, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(method, target, nil))
	return w
}
