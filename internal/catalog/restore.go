package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"photolink/internal/failure"
	"photolink/internal/fileutil"
	"photolink/internal/logging"
)

// RestoreRequest describes putting a backup back in place.
type RestoreRequest struct {
	Path string
	// Data is the backup content, already decompressed.
	Data         []byte
	BackupDir    string
	RunTime      time.Time
	MinFreeBytes int64
	Logger       *slog.Logger
}

// RestoreResult reports what Restore did.
type RestoreResult struct {
	// BackupPath holds the catalog that was replaced, when there was one.
	BackupPath string
	// Unchanged is set when the catalog already matched the backup.
	Unchanged bool
}

// Restore replaces the catalog at req.Path with req.Data. The data must be a
// valid catalog. An existing catalog goes through Commit, so it is backed up
// before being replaced; a missing one is written under the same lock.
func Restore(ctx context.Context, req RestoreRequest) (RestoreResult, error) {
	if _, err := Decode(req.Data); err != nil {
		return RestoreResult{}, failure.Wrap(failure.ErrInput, "catalog", "restore", "Backup is not a JSON array of objects", err)
	}
	logger := logging.NewComponentLogger(req.Logger, "catalog")

	if _, err := os.Stat(req.Path); errors.Is(err, fs.ErrNotExist) {
		if err := restoreMissing(ctx, req.Path, req.Data); err != nil {
			return RestoreResult{}, err
		}
		logger.Info("catalog restored",
			logging.String(logging.FieldEventType, "catalog_restored"),
			logging.String("catalog", req.Path),
			logging.Int("bytes", len(req.Data)),
		)
		return RestoreResult{}, nil
	}

	cat, err := Load(req.Path)
	if err != nil {
		return RestoreResult{}, err
	}
	if bytes.Equal(cat.Raw, req.Data) {
		logger.Info("catalog already matches backup; nothing to restore",
			logging.String(logging.FieldEventType, "catalog_unchanged"),
		)
		return RestoreResult{Unchanged: true}, nil
	}
	res, err := Commit(ctx, CommitRequest{
		Catalog:      cat,
		Data:         req.Data,
		BackupDir:    req.BackupDir,
		RunTime:      req.RunTime,
		MinFreeBytes: req.MinFreeBytes,
		Logger:       req.Logger,
	})
	if err != nil {
		return RestoreResult{BackupPath: res.BackupPath}, err
	}
	logger.Info("catalog restored",
		logging.String(logging.FieldEventType, "catalog_restored"),
		logging.String("catalog", req.Path),
		logging.String("replaced_backup", res.BackupPath),
	)
	return RestoreResult{BackupPath: res.BackupPath}, nil
}

func restoreMissing(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		return failure.Wrap(failure.ErrInput, "catalog", "restore", "Catalog directory unavailable", fmt.Errorf("%s", filepath.Dir(path)))
	}
	lock := flock.New(LockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return failure.Wrap(failure.ErrWrite, "catalog", "lock", "Unable to lock catalog", err)
	}
	if !locked {
		return failure.Wrap(failure.ErrLocked, "catalog", "lock",
			"Another photolink run holds the catalog lock", fmt.Errorf("%s", LockPath(path)))
	}
	defer func() {
		_ = lock.Unlock()
	}()
	// The catalog may have been created since the first check.
	if _, err := os.Stat(path); err == nil {
		return failure.Wrap(failure.ErrWrite, "catalog", "restore",
			"Catalog appeared while restoring; rerun restore", errors.New("catalog exists"))
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return failure.Wrap(failure.ErrWrite, "catalog", "write", "Catalog restore failed", err)
	}
	return nil
}
