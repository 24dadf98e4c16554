package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolink/internal/logging"
)

func writeBackup(t *testing.T, dir, name, content string, age time.Duration, now time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	at := now.Add(-age)
	require.NoError(t, os.Chtimes(path, at, at))
	return path
}

func TestApplyCompressesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	fresh := writeBackup(t, dir, "products.20260901T100000Z.bak.json", `[{"id":1}]`, time.Hour, now)
	aging := writeBackup(t, dir, "products.20260820T100000Z.bak.json", `[{"id":2}]`, 12*day, now)
	ancient := writeBackup(t, dir, "products.20260501T100000Z.bak.json", `[{"id":3}]`, 120*day, now)
	other := writeBackup(t, dir, "orders.20260501T100000Z.bak.json", `[]`, 120*day, now)

	summary, err := Apply(context.Background(), logging.NewNop(), Policy{
		Dir:               dir,
		Catalog:           "/data/products.json",
		CompressAfterDays: 7,
		RetentionDays:     90,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, []string{ancient}, summary.Removed)
	assert.Equal(t, []string{aging + CompressedSuffix}, summary.Compressed)

	assert.FileExists(t, fresh)
	assert.FileExists(t, other, "backups of other catalogs are untouched")
	assert.NoFileExists(t, aging)
	assert.NoFileExists(t, ancient)

	r, err := Open(aging + CompressedSuffix)
	require.NoError(t, err)
	defer r.Close()
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2}]`, string(got))

	info, err := os.Stat(aging + CompressedSuffix)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(now.Add(-12*day)), "compressed backup keeps its age")
}

func TestApplyRemovesCompressedBackupsPastRetention(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := writeBackup(t, dir, "products.20250101T000000Z.bak.json.zst", "x", 400*24*time.Hour, now)

	summary, err := Apply(context.Background(), nil, Policy{Dir: dir, RetentionDays: 30}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{old}, summary.Removed)
}

func TestApplyDisabledPolicyIsNoop(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	path := writeBackup(t, dir, "products.20200101T000000Z.bak.json", "x", 2000*24*time.Hour, now)

	summary, err := Apply(context.Background(), nil, Policy{Dir: dir}, now)
	require.NoError(t, err)
	assert.Empty(t, summary.Removed)
	assert.Empty(t, summary.Compressed)
	assert.FileExists(t, path)
}

func TestListIgnoresForeignFilesAndMissingDir(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	writeBackup(t, dir, "products.20260101T000000Z.bak.json", "a", 2*time.Hour, now)
	writeBackup(t, dir, "products.20260102T000000Z.bak.json", "b", time.Hour, now)
	writeBackup(t, dir, "notes.txt", "n", time.Hour, now)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "products.sub.bak.json"), 0o755))

	files, err := List(dir, "products.json")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "products.20260101T000000Z.bak.json", filepath.Base(files[0].Path))

	files, err = List(filepath.Join(dir, "missing"), "")
	require.NoError(t, err)
	assert.Empty(t, files)
}
