// Package metrics records run outcomes as Prometheus gauges and writes them
// to a node-exporter textfile. A batch job has no scrape endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// Recorder holds the run gauges on a private registry.
type Recorder struct {
	reg *prometheus.Registry

	RowsLoaded  prometheus.Gauge
	RowsSkipped prometheus.Gauge
	LastRun     prometheus.Gauge
	LastSuccess prometheus.Gauge
	Duration    prometheus.Gauge
}

// NewRecorder registers the run gauges on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kobo_sync_rows_loaded",
			Help: "Rows written to the target table by the last run.",
		}),
		RowsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kobo_sync_rows_skipped",
			Help: "Malformed CSV rows skipped by the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kobo_sync_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kobo_sync_last_run_success",
			Help: "1 if the last run loaded the table, 0 otherwise.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kobo_sync_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
	}
	r.reg.MustRegister(r.RowsLoaded, r.RowsSkipped, r.LastRun, r.LastSuccess, r.Duration)
	return r
}

// Observe records the outcome of a finished run.
func (r *Recorder) Observe(loaded int64, skipped int, started, finished time.Time, err error) {
	r.RowsLoaded.Set(float64(loaded))
	r.RowsSkipped.Set(float64(skipped))
	r.LastRun.Set(float64(finished.Unix()))
	r.Duration.Set(finished.Sub(started).Seconds())
	if err != nil {
		r.LastSuccess.Set(0)
	} else {
		r.LastSuccess.Set(1)
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile atomically writes every gauge to path in the text exposition
// format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return eris.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}
