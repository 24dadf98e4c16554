package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photolink/internal/config"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteAssets creates the asset directory and one small file per name.
func WriteAssets(t testing.TB, cfg *config.Config, names ...string) {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.AssetsDir, 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	for _, name := range names {
		WriteFile(t, filepath.Join(cfg.Paths.AssetsDir, name), 64)
	}
}

// WriteCatalog writes body verbatim as the catalog file.
func WriteCatalog(t testing.TB, cfg *config.Config, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.Catalog), 0o755); err != nil {
		t.Fatalf("mkdir catalog dir: %v", err)
	}
	if err := os.WriteFile(cfg.Paths.Catalog, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}

// ReadCatalog returns the current catalog content.
func ReadCatalog(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Paths.Catalog)
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	return string(data)
}

// Products renders a catalog array from (id, image) pairs with a passthrough
// price field on every record.
func Products(pairs ...string) string {
	if len(pairs)%2 != 0 {
		panic("testsupport.Products: odd number of arguments")
	}
	var b strings.Builder
	b.WriteString("[\n")
	for i := 0; i < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(`{"id":"` + pairs[i] + `","name":"Product ` + pairs[i] + `","image":"` + pairs[i+1] + `","price":19.90}`)
	}
	b.WriteString("\n]\n")
	return b.String()
}

// ListDir returns the names in dir, or nil when it does not exist.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
