// Package backup ages catalog backups: old ones are zstd-compressed in place,
// older ones are removed.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"photolink/internal/fileutil"
	"photolink/internal/logging"
)

// CompressedSuffix is appended to a backup once compressed.
const CompressedSuffix = ".zst"

// Policy selects the backups of one catalog and how long to keep them.
type Policy struct {
	Dir string
	// Catalog is the catalog path; only backups named after it are touched.
	Catalog string
	// CompressAfterDays of 0 disables compression.
	CompressAfterDays int
	// RetentionDays of 0 disables removal.
	RetentionDays int
}

// Summary reports what a retention pass did.
type Summary struct {
	Compressed []string
	Removed    []string
}

// Apply runs one retention pass relative to now. Individual file failures
// are logged and skipped; only an unreadable directory is an error.
func Apply(ctx context.Context, logger *slog.Logger, policy Policy, now time.Time) (Summary, error) {
	var summary Summary
	if strings.TrimSpace(policy.Dir) == "" || (policy.CompressAfterDays <= 0 && policy.RetentionDays <= 0) {
		return summary, nil
	}
	logger = logging.NewComponentLogger(logger, "backup")

	files, err := List(policy.Dir, policy.Catalog)
	if err != nil {
		return summary, err
	}

	var removeCutoff, compressCutoff time.Time
	if policy.RetentionDays > 0 {
		removeCutoff = now.AddDate(0, 0, -policy.RetentionDays)
	}
	if policy.CompressAfterDays > 0 {
		compressCutoff = now.AddDate(0, 0, -policy.CompressAfterDays)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		switch {
		case !removeCutoff.IsZero() && file.ModTime.Before(removeCutoff):
			if err := os.Remove(file.Path); err != nil {
				logging.WarnWithContext(logger, "backup removal failed; file remains", "backup_prune_failed",
					logging.String("path", file.Path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check backup_dir permissions"),
					logging.String(logging.FieldImpact, "old backup stays on disk"),
				)
				continue
			}
			summary.Removed = append(summary.Removed, file.Path)
			logger.Info("backup pruned",
				logging.String("path", file.Path),
				logging.String(logging.FieldEventType, "backup_pruned"),
			)
		case !compressCutoff.IsZero() && !file.Compressed && file.ModTime.Before(compressCutoff):
			dst, err := compress(file.Path, file.ModTime)
			if err != nil {
				logging.WarnWithContext(logger, "backup compression failed; kept uncompressed", "backup_compress_failed",
					logging.String("path", file.Path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "backup keeps using full disk space"),
				)
				continue
			}
			summary.Compressed = append(summary.Compressed, dst)
			logger.Info("backup compressed",
				logging.String("path", dst),
				logging.String(logging.FieldEventType, "backup_compressed"),
			)
		}
	}
	return summary, nil
}

// File is one backup on disk.
type File struct {
	Path       string    `json:"path"`
	ModTime    time.Time `json:"modified"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
}

// List returns the backups of catalogPath in dir, oldest first. An empty
// catalogPath lists every backup in dir. A missing dir yields no files.
func List(dir, catalogPath string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	prefix := ""
	if catalogPath != "" {
		prefix = strings.TrimSuffix(filepath.Base(catalogPath), ".json") + "."
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		compressed := strings.HasSuffix(name, ".bak.json"+CompressedSuffix)
		if !compressed && !strings.HasSuffix(name, ".bak.json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Path:       filepath.Join(dir, name),
			ModTime:    info.ModTime(),
			Size:       info.Size(),
			Compressed: compressed,
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// compress writes path+".zst", keeps the original modification time so the
// removal cutoff still applies, then removes the uncompressed backup.
func compress(path string, modTime time.Time) (string, error) {
	dst := path + CompressedSuffix
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	done := false
	defer func() {
		if !done {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	if err := out.Sync(); err != nil {
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	done = true
	if err := os.Chtimes(dst, modTime, modTime); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dst, fileutil.SyncDir(filepath.Dir(path))
}

// Open returns a reader over the backup content, decompressing when needed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, CompressedSuffix) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &decoderCloser{dec: dec, file: f}, nil
}

type decoderCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (d *decoderCloser) Read(p []byte) (int, error) {
	return d.dec.Read(p)
}

func (d *decoderCloser) Close() error {
	d.dec.Close()
	return d.file.Close()
}
