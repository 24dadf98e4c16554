package reconcile

import (
	"context"
	"log/slog"
	"time"

	"photolink/internal/backup"
	"photolink/internal/catalog"
	"photolink/internal/config"
	"photolink/internal/failure"
	"photolink/internal/history"
	"photolink/internal/logging"
	"photolink/internal/report"
)

// artifacts writes the post-run outputs. Each step logs its own failure.
type artifacts struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (a *artifacts) writeReport(r report.Report) string {
	if a.cfg.Paths.ReportDir == "" {
		return ""
	}
	path, err := report.WriteJSON(a.cfg.Paths.ReportDir, r)
	if err != nil {
		logging.WarnWithContext(a.logger, "run report not written", "report_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check report_dir permissions"),
			logging.String(logging.FieldImpact, "report only available on stdout"),
		)
		return ""
	}
	a.logger.Info("run report written",
		logging.String(logging.FieldEventType, "report_written"),
		logging.String("path", path),
	)
	return path
}

func (a *artifacts) writeMetrics(r report.Report) {
	if a.cfg.Paths.MetricsFile == "" {
		return
	}
	if err := report.WriteMetrics(a.cfg.Paths.MetricsFile, r); err != nil {
		logging.WarnWithContext(a.logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String("path", a.cfg.Paths.MetricsFile),
			logging.String(logging.FieldImpact, "node exporter keeps the previous run's values"),
		)
	}
}

func (a *artifacts) recordHistory(ctx context.Context, r report.Report, reportPath string, runErr error) {
	if !a.cfg.History.Enabled {
		return
	}
	// The run may have been canceled; the row is still worth keeping.
	ctx = context.WithoutCancel(ctx)

	store, err := history.Open(ctx, a.cfg.HistoryPath())
	if err != nil {
		logging.WarnWithContext(a.logger, "run history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is missing from photolink history"),
		)
		return
	}
	defer store.Close()

	run := history.Run{
		RunID:          r.RunID,
		Mode:           r.Mode,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		Catalog:        r.Catalog,
		Total:          r.Total,
		AlreadyLocal:   r.States[string(catalog.StateAlreadyLocal)],
		Resolved:       r.Resolved,
		Unresolved:     r.Unresolved,
		Changed:        r.Changed,
		ResolutionRate: r.ResolutionRate,
		Committed:      r.Committed,
		BackupPath:     r.BackupPath,
		ReportPath:     reportPath,
	}
	if runErr != nil {
		run.ErrorKind = failure.Kind(runErr)
		run.ErrorMessage = runErr.Error()
	}
	if err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(a.logger, "run history not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is missing from photolink history"),
		)
		return
	}
	if removed, err := store.Prune(ctx, a.cfg.History.KeepRuns); err != nil {
		logging.WarnWithContext(a.logger, "run history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history database keeps growing"),
		)
	} else if removed > 0 {
		a.logger.Debug("run history pruned",
			logging.String(logging.FieldEventType, "history_pruned"),
			logging.Int64("removed", removed),
		)
	}
}

func (a *artifacts) applyRetention(ctx context.Context, catalogPath string, now time.Time) backup.Summary {
	summary, err := backup.Apply(ctx, a.logger, backup.Policy{
		Dir:               a.cfg.Paths.BackupDir,
		Catalog:           catalogPath,
		CompressAfterDays: a.cfg.Backup.CompressAfterDays,
		RetentionDays:     a.cfg.Backup.RetentionDays,
	}, now)
	if err != nil {
		logging.WarnWithContext(a.logger, "backup retention skipped", "backup_retention_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old backups stay on disk"),
		)
	}
	return summary
}
