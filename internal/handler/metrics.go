package handler

import (
	"fmt"
	"net/http"

	"github.com/ticklist/ticklist/internal/metrics"
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

	writeMetric(w, "ticklist_sign_ups_total %d\n", snap.SignUps)
	writeMetric(w, "ticklist_sign_ins_total{status=\"success\"} %d\n", snap.SignIns)
	writeMetric(w, "ticklist_sign_ins_total{status=\"failed\"} %d\n", snap.SignInsFailed)
	writeMetric(w, "ticklist_sessions_resolved_total{status=\"success\"} %d\n", snap.SessionsResolved)
	writeMetric(w, "ticklist_sessions_resolved_total{status=\"rejected\"} %d\n", snap.SessionsRejected)

	writeMetric(w, "ticklist_todos_created_total %d\n", snap.TodosCreated)
	writeMetric(w, "ticklist_todos_updated_total %d\n", snap.TodosUpdated)
	writeMetric(w, "ticklist_todos_deleted_total %d\n", snap.TodosDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
