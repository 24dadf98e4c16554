package testsupport

import (
	"path/filepath"
	"testing"

	"photolink/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The catalog and asset directory are paths only; use WriteCatalog and
// WriteAssets to populate them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Catalog = filepath.Join(base, "data", "products.json")
	cfgVal.Paths.AssetsDir = filepath.Join(base, "images")
	cfgVal.Paths.BackupDir = filepath.Join(base, "backups")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Matching.Workers = 4
	cfgVal.Backup.MinFreeMB = 0
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the per-record worker bound.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.Workers = n
	}
}

// WithThreshold overrides the similarity threshold.
func WithThreshold(v float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.SimilarityThreshold = v
	}
}

// WithHistory enables the run history store under the state directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithMetrics writes a Prometheus textfile under the base directory.
func WithMetrics() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.MetricsFile = filepath.Join(b.baseDir, "metrics", "photolink.prom")
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.BackupDir)
}
