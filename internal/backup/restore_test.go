package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePicksNewestForLatest(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	writeBackup(t, dir, "products.20260801T100000Z.bak.json", `[{"id":1}]`, 30*24*time.Hour, now)
	newest := writeBackup(t, dir, "products.20260901T100000Z.bak.json", `[{"id":2}]`, time.Hour, now)
	writeBackup(t, dir, "orders.20260901T110000Z.bak.json", `[]`, time.Minute, now)

	got, err := Resolve(dir, "/data/products.json", LatestRef)
	require.NoError(t, err)
	assert.Equal(t, newest, got)

	got, err = Resolve(dir, "/data/products.json", "")
	require.NoError(t, err)
	assert.Equal(t, newest, got)
}

func TestResolveByNameAndPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	path := writeBackup(t, dir, "products.20260801T100000Z.bak.json", `[]`, time.Hour, now)

	got, err := Resolve(dir, "/data/products.json", "products.20260801T100000Z.bak.json")
	require.NoError(t, err)
	assert.Equal(t, path, got)

	got, err = Resolve(t.TempDir(), "/data/products.json", path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = Resolve(dir, "/data/products.json", "missing.bak.json")
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestResolveLatestWithoutBackups(t *testing.T) {
	_, err := Resolve(filepath.Join(t.TempDir(), "none"), "/data/products.json", LatestRef)
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestReadDecompressesArchivedBackup(t *testing.T) {
	dir := t.TempDir()
	content := `[{"id":"7","image":"https://cdn.example/x.jpg"}]`
	path := writeBackup(t, dir, "products.20260801T100000Z.bak.json", content, time.Hour, time.Now())

	plain, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(plain))

	info, err := os.Stat(path)
	require.NoError(t, err)
	archived, err := compress(path, info.ModTime())
	require.NoError(t, err)

	got, err := Read(archived)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}
