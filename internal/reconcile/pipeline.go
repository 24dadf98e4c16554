package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"

	"photolink/internal/assets"
	"photolink/internal/backup"
	"photolink/internal/catalog"
	"photolink/internal/config"
	"photolink/internal/failure"
	"photolink/internal/logging"
	"photolink/internal/matcher"
	"photolink/internal/report"
	"photolink/internal/token"
)

// Mode selects whether a run may modify the catalog.
type Mode string

const (
	// ModeApply commits the reconciled catalog after a verified backup.
	ModeApply Mode = "apply"
	// ModeVerify computes outcomes and the report only.
	ModeVerify Mode = "verify"
)

// Options tunes a single run.
type Options struct {
	Mode   Mode
	Logger *slog.Logger
	// Lister replaces the bucket lister built from configuration when the
	// asset source is s3.
	Lister assets.ObjectLister
	// Diff renders a preview of the catalog apply would write.
	Diff bool
	// Now overrides the clock.
	Now func() time.Time
}

// Result is everything a run produced.
type Result struct {
	Report     report.Report
	Entries    []Entry
	ReportPath string
	BackupPath string
	Diff       DiffResult
	Retention  backup.Summary
}

// Run executes one reconciliation pass over the configured catalog.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "reconcile", "start", "No configuration", nil)
	}
	switch opts.Mode {
	case ModeApply, ModeVerify:
	case "":
		opts.Mode = ModeVerify
	default:
		return nil, failure.Wrap(failure.ErrConfiguration, "reconcile", "start", fmt.Sprintf("unknown mode %q", opts.Mode), nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithMode(ctx, string(opts.Mode))
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "reconcile"))
	startedAt := now().UTC()

	thresholds := matcher.Thresholds{
		SimilarityMin:       cfg.Matching.SimilarityThreshold,
		SubstringConfidence: cfg.Matching.SubstringConfidence,
	}
	if err := thresholds.Validate(); err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "reconcile", "thresholds", "Invalid matching thresholds", err)
	}
	extractor, err := token.NewExtractor(token.Options{
		LocalPrefix:      cfg.Matching.LocalPrefix,
		DefaultExtension: cfg.Matching.DefaultExtension,
		MinTokenLength:   cfg.Matching.MinTokenLength,
	})
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "reconcile", "extractor", "Invalid extraction settings", err)
	}

	cat, err := catalog.Load(cfg.Paths.Catalog)
	if err != nil {
		return nil, err
	}
	index, source, err := buildIndex(ctx, cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	resolver, err := matcher.New(index, thresholds, matcher.WithCacheSize(cfg.Matching.CacheSize))
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "reconcile", "resolver", "Unable to build resolver", err)
	}
	logger.Info("reconcile run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("catalog", cat.Path),
		logging.Int("records", len(cat.Records)),
		logging.String("asset_source", source),
		logging.Int("assets", index.Len()),
	)

	proc := &processor{
		extractor: extractor,
		resolver:  resolver,
		apply: catalog.ApplyOptions{
			LocalPrefix:     extractor.LocalPrefix(),
			PlaceholderPath: cfg.Matching.PlaceholderPath,
			Now:             startedAt,
		},
	}
	workers := cfg.Matching.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	next, entries, err := proc.processAll(ctx, cat.Records, workers)
	if err != nil {
		logger.Warn("reconcile run canceled before commit; catalog untouched",
			logging.String(logging.FieldEventType, "run_canceled"),
			logging.Error(err),
		)
		return nil, err
	}

	result := &Result{Entries: entries}
	changed := 0
	for _, e := range entries {
		if e.Change.Changed() {
			changed++
		}
	}
	data := catalog.Encode(next)

	meta := report.Meta{
		RunID:               runID,
		Mode:                string(opts.Mode),
		StartedAt:           startedAt,
		Catalog:             cat.Path,
		AssetSource:         source,
		AssetCount:          index.Len(),
		SimilarityThreshold: thresholds.SimilarityMin,
	}

	var commitErr error
	switch {
	case opts.Mode == ModeVerify:
		if opts.Diff {
			result.Diff = Diff(cat.Raw, data, cfg.Paths.Catalog, DefaultDiffContext)
		}
	case changed == 0:
		logger.Info("catalog already reconciled; nothing to write",
			logging.String(logging.FieldEventType, "catalog_unchanged"),
		)
	default:
		res, err := catalog.Commit(ctx, catalog.CommitRequest{
			Catalog:      cat,
			Data:         data,
			BackupDir:    cfg.Paths.BackupDir,
			RunTime:      startedAt,
			MinFreeBytes: int64(cfg.Backup.MinFreeMB) << 20,
			Logger:       logger,
		})
		result.BackupPath = res.BackupPath
		meta.BackupPath = res.BackupPath
		if err != nil {
			commitErr = err
		} else {
			meta.Committed = true
		}
	}

	meta.FinishedAt = now().UTC()
	result.Report = report.Build(meta, reportEntries(cat.Records, entries), cfg.Matching.SampleLimit)

	a := &artifacts{cfg: cfg, logger: logger}
	result.ReportPath = a.writeReport(result.Report)
	a.writeMetrics(result.Report)
	a.recordHistory(ctx, result.Report, result.ReportPath, commitErr)

	if commitErr != nil {
		logging.ErrorWithContext(logger, "catalog commit failed", "commit_failed",
			logging.Error(commitErr),
			logging.String(logging.FieldErrorHint, failure.Hint(commitErr)),
			logging.String(logging.FieldImpact, "catalog left as it was before the run"),
		)
		return result, commitErr
	}
	if meta.Committed {
		result.Retention = a.applyRetention(ctx, cat.Path, now())
	}

	logger.Info("reconcile run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("total", result.Report.Total),
		logging.Int("already_local", result.Report.States[string(catalog.StateAlreadyLocal)]),
		logging.Int("resolved", result.Report.Resolved),
		logging.Int("unresolved", result.Report.Unresolved),
		logging.Int("changed", result.Report.Changed),
		logging.Float64("resolution_rate", result.Report.ResolutionRate),
		logging.Bool("committed", meta.Committed),
		logging.Duration("duration", result.Report.Duration()),
	)
	return result, nil
}

func buildIndex(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*assets.Index, string, error) {
	scanOpts := assets.Options{Exclude: cfg.Assets.Exclude, Logger: logger}
	if cfg.Assets.Source != config.AssetSourceS3 {
		index, err := assets.BuildLocal(ctx, cfg.Paths.AssetsDir, scanOpts)
		return index, cfg.Paths.AssetsDir, err
	}

	s3 := cfg.Assets.S3
	source := "s3://" + s3.Bucket + "/" + s3.Prefix
	lister := opts.Lister
	if lister == nil {
		bucket, err := assets.NewBucketLister(assets.S3Config{
			Endpoint:  s3.Endpoint,
			AccessKey: s3.AccessKey,
			SecretKey: s3.SecretKey,
			Region:    s3.Region,
			Bucket:    s3.Bucket,
			UseSSL:    s3.UseSSL,
		})
		if err != nil {
			return nil, source, err
		}
		lister = bucket
	}
	index, err := assets.BuildS3(ctx, lister, s3.Prefix, scanOpts)
	return index, source, err
}

func reportEntries(records []catalog.Record, entries []Entry) []report.Entry {
	out := make([]report.Entry, len(entries))
	for i, e := range entries {
		rec := records[i]
		out[i] = report.Entry{
			Index:      e.Index,
			ID:         rec.ID(),
			Name:       rec.Name(),
			Ref:        e.Ref,
			State:      e.Outcome.State(),
			Method:     e.Outcome.Result.Method,
			Reason:     e.Outcome.Result.Reason,
			Confidence: e.Outcome.Result.Confidence,
			Changed:    e.Change.Changed(),
		}
	}
	return out
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
