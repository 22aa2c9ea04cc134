package api

import (
	"fmt"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/AaronLay10/InnerVoice/internal/version"
)

type metricsState struct {
	startTime time.Time
	started   atomic.Int64
	rejected  atomic.Int64
}

func newMetricsState() *metricsState {
	return &metricsState{startTime: time.Now()}
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.metrics.startTime).Seconds()
	ready, busy, completed := 0, 0, 0
	if s.opts.Engine != nil {
		ready = 1
		completed = s.opts.Engine.Completed()
		if s.opts.Engine.Busy() {
			busy = 1
		}
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}, labels string) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		fmt.Fprintf(w, "%s{%s} %v\n", name, labels, value)
	}

	labels := fmt.Sprintf(`instance="%s",version="%s"`, hostname, version.Version)

	writeMetric("innervoice_uptime_seconds", "gauge",
		"Number of seconds since the service started", uptime, labels)
	writeMetric("innervoice_catalog_ready", "gauge",
		"Whether a scenario catalog is loaded (1) or not (0)", ready, labels)
	writeMetric("innervoice_playback_busy", "gauge",
		"Whether a playback is in progress (1) or not (0)", busy, labels)
	writeMetric("innervoice_runs_started_total", "counter",
		"Playbacks started through the HTTP trigger", s.metrics.started.Load(), labels)
	writeMetric("innervoice_runs_completed_total", "counter",
		"Playbacks that ran to completion", completed, labels)
	writeMetric("innervoice_runs_rejected_total", "counter",
		"Trigger requests rejected because a playback was in progress", s.metrics.rejected.Load(), labels)
	writeMetric("innervoice_events_total", "counter",
		"Total number of events emitted since startup", s.opts.Bus.Total(), labels)
	writeMetric("innervoice_ws_clients", "gauge",
		"Number of active WebSocket client connections", s.opts.Bus.SubscriberCount(), labels)
}
