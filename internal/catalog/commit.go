package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"photolink/internal/failure"
	"photolink/internal/fileutil"
	"photolink/internal/logging"
	"photolink/internal/preflight"
)

// StampLayout formats run timestamps in artifact names.
const StampLayout = "20060102T150405Z"

// Stamp renders t for artifact names.
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// LockPath returns the lock file guarding catalogPath.
func LockPath(catalogPath string) string {
	return catalogPath + ".lock"
}

// BackupName returns "<base>.<stamp>.bak.json" for catalogPath.
func BackupName(catalogPath string, runTime time.Time) string {
	base := strings.TrimSuffix(filepath.Base(catalogPath), ".json")
	return base + "." + Stamp(runTime) + ".bak.json"
}

// CommitRequest describes one catalog replacement.
type CommitRequest struct {
	// Catalog is the catalog as loaded at the start of the run.
	Catalog *Catalog
	// Data is the complete new catalog content.
	Data      []byte
	BackupDir string
	RunTime   time.Time
	// MinFreeBytes is headroom required on top of the bytes being written.
	MinFreeBytes int64
	Logger       *slog.Logger
}

// CommitResult reports where the backup went.
type CommitResult struct {
	BackupPath   string
	BytesWritten int
}

// Commit replaces the catalog durably. It takes an exclusive lock, refuses to
// overwrite a catalog modified since load, checks free space, writes a
// verified backup and then swaps in the new content with a temp-then-rename
// write. Any failure before the rename leaves the old catalog in place.
func Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	if req.Catalog == nil || req.Catalog.Path == "" {
		return CommitResult{}, failure.Wrap(failure.ErrInput, "catalog", "commit", "No catalog to commit", errors.New("nil catalog"))
	}
	if err := ctx.Err(); err != nil {
		return CommitResult{}, err
	}
	path := req.Catalog.Path
	logger := logging.NewComponentLogger(req.Logger, "catalog")

	lock := flock.New(LockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return CommitResult{}, failure.Wrap(failure.ErrWrite, "catalog", "lock", "Unable to lock catalog", err)
	}
	if !locked {
		return CommitResult{}, failure.Wrap(failure.ErrLocked, "catalog", "lock",
			"Another photolink run holds the catalog lock", fmt.Errorf("%s", LockPath(path)))
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := ensureUnchanged(path, req.Catalog.Raw); err != nil {
		return CommitResult{}, err
	}

	if err := os.MkdirAll(req.BackupDir, 0o755); err != nil {
		return CommitResult{}, failure.Wrap(failure.ErrWrite, "catalog", "backup", "Unable to create backup directory", err)
	}
	if err := preflight.CheckFreeSpace(req.BackupDir, int64(len(req.Catalog.Raw))+req.MinFreeBytes); err != nil {
		return CommitResult{}, failure.Wrap(failure.ErrWrite, "catalog", "preflight", "Not enough space for catalog backup", err)
	}
	if err := preflight.CheckFreeSpace(filepath.Dir(path), int64(len(req.Data))+req.MinFreeBytes); err != nil {
		return CommitResult{}, failure.Wrap(failure.ErrWrite, "catalog", "preflight", "Not enough space for new catalog", err)
	}

	backupPath, err := writeBackup(path, req.BackupDir, req.RunTime)
	if err != nil {
		return CommitResult{}, failure.Wrap(failure.ErrWrite, "catalog", "backup", "Catalog backup failed; catalog untouched", err)
	}
	logger.Info("catalog backup verified",
		logging.String(logging.FieldEventType, "catalog_backup_written"),
		logging.String("backup", backupPath),
	)

	// Last chance to stop without replacing the catalog.
	if err := ctx.Err(); err != nil {
		return CommitResult{BackupPath: backupPath}, err
	}

	mode := req.Catalog.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := fileutil.WriteFileAtomic(path, req.Data, mode); err != nil {
		return CommitResult{BackupPath: backupPath}, failure.Wrap(failure.ErrWrite, "catalog", "write",
			"Catalog write failed; previous catalog still in place", err)
	}
	logger.Info("catalog committed",
		logging.String(logging.FieldEventType, "catalog_committed"),
		logging.String("catalog", path),
		logging.Int("bytes", len(req.Data)),
	)
	return CommitResult{BackupPath: backupPath, BytesWritten: len(req.Data)}, nil
}

func ensureUnchanged(path string, loaded []byte) error {
	current, err := fileutil.HashFile(path)
	if err != nil {
		return failure.Wrap(failure.ErrInput, "catalog", "recheck", "Catalog disappeared before commit", err)
	}
	want := sha256.Sum256(loaded)
	if !bytes.Equal(current, want[:]) {
		return failure.Wrap(failure.ErrWrite, "catalog", "recheck",
			"Catalog changed on disk since it was loaded", errors.New("content hash mismatch"))
	}
	return nil
}

// writeBackup copies the catalog to a fresh file named after the run time. A
// same-second rerun gets a numeric suffix instead of clobbering a backup.
func writeBackup(path, dir string, runTime time.Time) (string, error) {
	name := BackupName(path, runTime)
	stem := strings.TrimSuffix(name, ".bak.json")
	for attempt := 0; attempt < 100; attempt++ {
		candidate := filepath.Join(dir, name)
		if attempt > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.bak.json", stem, attempt))
		}
		err := fileutil.CopyFileVerified(path, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free backup name for %s", name)
}
