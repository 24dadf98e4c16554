package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LatestRef selects the newest backup of a catalog.
const LatestRef = "latest"

// ErrNoBackup reports that no backup matched a reference.
var ErrNoBackup = errors.New("no backup found")

// Resolve turns ref into a backup path. An empty ref or "latest" picks the
// newest backup of catalogPath in dir; a bare file name is looked up in dir;
// anything else is used as given.
func Resolve(dir, catalogPath, ref string) (string, error) {
	if ref == "" || ref == LatestRef {
		files, err := List(dir, catalogPath)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "", fmt.Errorf("%w for %s in %s", ErrNoBackup, filepath.Base(catalogPath), dir)
		}
		return files[len(files)-1].Path, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if filepath.Base(ref) == ref {
		candidate := filepath.Join(dir, ref)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoBackup, ref)
}

// Read returns the full catalog content stored in a backup.
func Read(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", filepath.Base(path), err)
	}
	return data, nil
}
