package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hearthealth/hearthealth/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncPrediction("heart", metrics.OutcomeSuccess)
	rec.IncPrediction("heart", metrics.OutcomeSuccess)
	rec.IncPredictionPersisted()
	rec.IncLogin(metrics.OutcomeFailure)
	rec.IncGeneration("chat", metrics.OutcomeSuccess)
	rec.IncGenerationCacheHit()

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, line := range []string{
		`hearthealth_predictions_total{model="heart",outcome="success"} 2`,
		`hearthealth_predictions_persisted_total 1`,
		`hearthealth_logins_total{outcome="failure"} 1`,
		`hearthealth_generations_total{kind="chat",outcome="success"} 1`,
		`hearthealth_generation_cache_hits_total 1`,
		`hearthealth_generation_cache_misses_total 0`,
		`hearthealth_registrations_total 0`,
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("missing metric line %q in:\n%s", line, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	w := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
