package preflight

import (
	"path/filepath"

	"photolink/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// write selects the checks needed by apply mode; verify only reads.
func RunAll(cfg *config.Config, write bool) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckFileReadable("Catalog", cfg.Paths.Catalog))
	if write {
		results = append(results, CheckDirectoryAccess("Catalog directory", filepath.Dir(cfg.Paths.Catalog)))
	}

	// The s3 pool is validated by listing it; nothing local to check.
	if cfg.Assets.Source == config.AssetSourceLocal {
		results = append(results, CheckDirectoryReadable("Asset directory", cfg.Paths.AssetsDir))
	}

	if write {
		results = append(results, CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir))
	}
	if cfg.Paths.ReportDir != "" {
		results = append(results, CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir))
	}

	return results
}

// Failed returns the failing results.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
