package handler

import (
	"fmt"
	"net/http"

	"github.com/hearthealth/hearthealth/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	for _, c := range snap.Predictions {
		writeMetric(w, "hearthealth_predictions_total{model=%q,outcome=%q} %d\n", c.Labels[0], c.Labels[1], c.Value)
	}
	writeMetric(w, "hearthealth_predictions_persisted_total %d\n", snap.PredictionsPersisted)
	for _, c := range snap.ModelReloads {
		writeMetric(w, "hearthealth_model_reloads_total{outcome=%q} %d\n", c.Labels[0], c.Value)
	}

	writeMetric(w, "hearthealth_registrations_total %d\n", snap.Registrations)
	for _, c := range snap.Logins {
		writeMetric(w, "hearthealth_logins_total{outcome=%q} %d\n", c.Labels[0], c.Value)
	}

	for _, c := range snap.Generations {
		writeMetric(w, "hearthealth_generations_total{kind=%q,outcome=%q} %d\n", c.Labels[0], c.Labels[1], c.Value)
	}
	writeMetric(w, "hearthealth_generation_cache_hits_total %d\n", snap.GenerationCacheHits)
	writeMetric(w, "hearthealth_generation_cache_misses_total %d\n", snap.GenerationCacheMiss)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
