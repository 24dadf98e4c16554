package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"photolink/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFileReadable(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "products.json")
	if err := os.WriteFile(f, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckFileReadable("catalog", f); !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r := CheckFileReadable("catalog", dir); r.Passed {
		t.Fatal("expected failure for directory")
	}
	if r := CheckFileReadable("catalog", ""); r.Passed {
		t.Fatal("expected failure for empty path")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if err := CheckFreeSpace(dir, 1); err != nil {
		t.Fatalf("expected space for one byte: %v", err)
	}
	if err := CheckFreeSpace(dir, 1<<62); err == nil {
		t.Fatal("expected failure for absurd requirement")
	}
	if err := CheckFreeSpace(filepath.Join(dir, "missing"), 1); err == nil {
		t.Fatal("expected statfs failure for missing dir")
	}
}

func TestRunAll(t *testing.T) {
	root := t.TempDir()
	catalog := filepath.Join(root, "products.json")
	if err := os.WriteFile(catalog, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	assetsDir := filepath.Join(root, "images")
	if err := os.Mkdir(assetsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Paths.Catalog = catalog
	cfg.Paths.AssetsDir = assetsDir
	cfg.Paths.BackupDir = filepath.Join(root, "backups")
	cfg.Paths.ReportDir = root

	// Verify never needs the backup directory.
	if failed := Failed(RunAll(&cfg, false)); len(failed) != 0 {
		t.Fatalf("verify checks failed: %+v", failed)
	}

	failed := Failed(RunAll(&cfg, true))
	if len(failed) != 1 || failed[0].Name != "Backup directory" {
		t.Fatalf("expected only backup dir to fail, got %+v", failed)
	}

	if RunAll(nil, true) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
