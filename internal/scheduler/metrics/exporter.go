package metrics

import (
	"encoding/json"
	"net/http"
)

type Exporter struct {
	collector *Collector
}

func NewExporter(collector *Collector) *Exporter {
	return &Exporter{collector: collector}
}

func (e *Exporter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(e.collector.Snapshot())
	}
}

func (e *Exporter) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := e.collector.Snapshot()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       "healthy",
			"ticks_total":  snapshot.TicksTotal,
			"last_tick_at": snapshot.LastTickAt,
			"uptime_s":     snapshot.UptimeSeconds,
		})
	}
}
