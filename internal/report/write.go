package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"photolink/internal/catalog"
	"photolink/internal/fileutil"
)

// FileName returns "report-<stamp>.json" for the run.
func FileName(r Report) string {
	return "report-" + catalog.Stamp(r.StartedAt) + ".json"
}

// WriteJSON writes the report into dir atomically and returns its path.
func WriteJSON(dir string, r Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(r))
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// WriteMetrics renders the report as a Prometheus textfile for the node
// exporter textfile collector.
func WriteMetrics(path string, r Report) error {
	reg := prometheus.NewRegistry()

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_records",
		Help: "Catalog records per terminal state in the last run.",
	}, []string{"mode", "state"})
	matches := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_matches",
		Help: "Resolved records per matching tier in the last run.",
	}, []string{"mode", "method"})
	unresolved := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_unresolved",
		Help: "Unresolved records per reason in the last run.",
	}, []string{"mode", "reason"})
	rate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_resolution_rate",
		Help: "resolved / (resolved + unresolved) in the last run.",
	}, []string{"mode"})
	changed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_changed_records",
		Help: "Records whose fields changed in the last run.",
	}, []string{"mode"})
	pool := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_asset_pool_size",
		Help: "Assets in the frozen index of the last run.",
	}, []string{"mode"})
	lastRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	}, []string{"mode"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "photolink_last_run_duration_seconds",
		Help: "Wall time of the last run.",
	}, []string{"mode"})

	for _, c := range []prometheus.Collector{records, matches, unresolved, rate, changed, pool, lastRun, duration} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}

	mode := r.Mode
	for state, n := range r.States {
		records.WithLabelValues(mode, state).Set(float64(n))
	}
	for method, n := range r.Methods {
		matches.WithLabelValues(mode, method).Set(float64(n))
	}
	for reason, n := range r.Reasons {
		unresolved.WithLabelValues(mode, reason).Set(float64(n))
	}
	rate.WithLabelValues(mode).Set(r.ResolutionRate)
	changed.WithLabelValues(mode).Set(float64(r.Changed))
	pool.WithLabelValues(mode).Set(float64(r.AssetCount))
	lastRun.WithLabelValues(mode).Set(float64(r.FinishedAt.Unix()))
	duration.WithLabelValues(mode).Set(r.Duration().Seconds())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
