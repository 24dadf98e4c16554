package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"photolink/internal/failure"
	"photolink/internal/logging"
)

// Options controls which entries a scan keeps.
type Options struct {
	// Exclude lists filenames that never enter the index, e.g. the placeholder.
	Exclude []string
	Logger  *slog.Logger
}

func (o Options) excluded() map[string]struct{} {
	out := make(map[string]struct{}, len(o.Exclude))
	for _, name := range o.Exclude {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}

// BuildLocal scans dir once (no recursion) and returns the frozen snapshot.
// A missing or unreadable directory is an input error.
func BuildLocal(ctx context.Context, dir string, opts Options) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, failure.Wrap(failure.ErrConfiguration, "assets", "scan", "asset directory not configured", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.Wrap(failure.ErrInput, "assets", "scan", fmt.Sprintf("asset directory %s does not exist", dir), err)
		}
		return nil, failure.Wrap(failure.ErrInput, "assets", "scan", "stat asset directory", err)
	}
	if !info.IsDir() {
		return nil, failure.Wrap(failure.ErrInput, "assets", "scan", fmt.Sprintf("%s is not a directory", dir), nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrInput, "assets", "scan", "read asset directory", err)
	}

	exclude := opts.excluded()
	names := make([]string, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if !keepEntry(entry.Name(), entry.IsDir(), exclude) {
			skipped++
			continue
		}
		names = append(names, entry.Name())
	}

	idx := NewIndex(names...)
	logger := logging.NewComponentLogger(opts.Logger, "assets")
	logger.Info("asset index built",
		logging.String(logging.FieldEventType, "asset_index_built"),
		logging.String("source", "local"),
		logging.String("assets_dir", dir),
		logging.Int("asset_count", idx.Len()),
		logging.Int("skipped_count", skipped),
	)
	return idx, nil
}

func keepEntry(name string, isDir bool, exclude map[string]struct{}) bool {
	if isDir || name == "" {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return false
	}
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".tmp") || strings.HasSuffix(lower, ".part") {
		return false
	}
	_, skip := exclude[name]
	return !skip
}
