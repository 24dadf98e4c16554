package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget selects files to prune: Pattern is a glob relative to Dir.
type RetentionTarget struct {
	Dir     string
	Pattern string
	// Exclude lists paths that are never removed, e.g. the active log file.
	Exclude []string
}

// CleanupOldLogs removes files matched by targets whose modification time is
// more than retentionDays old and returns the removed paths. 0 disables it.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) []string {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var removed []string
	for _, target := range targets {
		dir := strings.TrimSpace(target.Dir)
		if dir == "" {
			continue
		}
		pattern := strings.TrimSpace(target.Pattern)
		if pattern == "" {
			pattern = "*"
		}
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		skip := absSet(target.Exclude)
		for _, path := range matches {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			if _, excluded := skip[path]; excluded {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("path", path),
					Error(err),
					String(FieldErrorHint, "check file permissions and log_dir ownership"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			removed = append(removed, path)
			if logger != nil {
				logger.Debug("log pruned",
					String("path", path),
					String(FieldEventType, "log_pruned"),
				)
			}
		}
	}
	return removed
}

func absSet(paths []string) map[string]struct{} {
	out := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out[p] = struct{}{}
	}
	return out
}
