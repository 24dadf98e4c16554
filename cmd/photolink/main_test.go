package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolink/internal/config"
	"photolink/internal/failure"
	"photolink/internal/testsupport"
)

const sampleToken = "ABUIABACGAAgw67ovwYoy-e26QcwoAY4oAY"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	testsupport.WriteAssets(t, cfg, sampleToken+".jpg", "placeholder.jpg")
	testsupport.WriteCatalog(t, cfg, testsupport.Products(
		"1", "https://cdn.vendor.example/"+sampleToken+"!300x300.jpg",
		"2", "",
		"3", "/images/"+sampleToken+".jpg",
	))

	configPath := filepath.Join(testsupport.BaseDir(cfg), "photolink.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
catalog = %q
assets_dir = %q
backup_dir = %q
report_dir = %q
state_dir = %q
log_dir = %q

[matching]
workers = 2

[backup]
min_free_mb = 0

[history]
enabled = true

[logging]
level = "error"
`,
		cfg.Paths.Catalog,
		cfg.Paths.AssetsDir,
		cfg.Paths.BackupDir,
		cfg.Paths.ReportDir,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIVerifyLeavesCatalogAlone(t *testing.T) {
	env := setupCLITestEnv(t)
	before := testsupport.ReadCatalog(t, env.cfg)

	out, _, err := runCLI(t, []string{"verify", "--diff"}, env.configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "--- a/")
	assert.Contains(t, out, "Run Summary")
	assert.Contains(t, out, "decoration_stripped")
	assert.Contains(t, out, "Committed:   no")
	assert.Equal(t, before, testsupport.ReadCatalog(t, env.cfg))
	assert.Empty(t, testsupport.ListDir(t, env.cfg.Paths.BackupDir))
}

func TestCLIApplyThenHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"apply", "--json"}, env.configPath)
	require.NoError(t, err)

	var payload struct {
		Report struct {
			Mode      string         `json:"mode"`
			Committed bool           `json:"committed"`
			States    map[string]int `json:"states"`
			Reasons   map[string]int `json:"reasons"`
		} `json:"report"`
		BackupPath string `json:"backup_path"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "apply", payload.Report.Mode)
	assert.True(t, payload.Report.Committed)
	assert.Equal(t, 1, payload.Report.States["already_local"])
	assert.Equal(t, 1, payload.Report.States["resolved_local"])
	assert.Equal(t, 1, payload.Report.Reasons["no_token"])
	assert.FileExists(t, payload.BackupPath)
	assert.Contains(t, testsupport.ReadCatalog(t, env.cfg), `"image": "/images/`+sampleToken+`.jpg"`)

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "apply")
	assert.Contains(t, out, "yes")

	out, _, err = runCLI(t, []string{"history", "--json", "--limit", "5"}, env.configPath)
	require.NoError(t, err)
	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, true, runs[0]["committed"])
}

func TestCLIHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded")
}

func TestCLIFlagOverrides(t *testing.T) {
	env := setupCLITestEnv(t)
	otherAssets := filepath.Join(testsupport.BaseDir(env.cfg), "empty-pool")
	require.NoError(t, os.MkdirAll(otherAssets, 0o755))

	out, _, err := runCLI(t, []string{"verify", "--json", "--assets", otherAssets, "--threshold", "0.95"}, env.configPath)
	require.NoError(t, err)

	var payload struct {
		Report struct {
			AssetCount          int     `json:"asset_count"`
			SimilarityThreshold float64 `json:"similarity_threshold"`
			Resolved            int     `json:"resolved"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Zero(t, payload.Report.AssetCount)
	assert.InDelta(t, 0.95, payload.Report.SimilarityThreshold, 1e-9)
	assert.Zero(t, payload.Report.Resolved)
}

func TestCLIInvalidThresholdIsConfigurationError(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"verify", "--threshold", "2"}, env.configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrConfiguration)
}

func TestCLIMissingCatalogFailsPreflight(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"apply", "--catalog", filepath.Join(testsupport.BaseDir(env.cfg), "nope.json")}, env.configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrInput)
	assert.Contains(t, err.Error(), "Catalog")
}

func TestCLIConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote sample configuration")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, config.SampleConfig(), string(data))

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, _, err = runCLI(t, []string{"config", "init", "--stdout"}, "")
	require.NoError(t, err)
	assert.Equal(t, config.SampleConfig(), out)

	out, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid")
	assert.True(t, strings.Contains(out, env.configPath))
}

func TestCLIRestoreLatestUndoesApply(t *testing.T) {
	env := setupCLITestEnv(t)
	before := testsupport.ReadCatalog(t, env.cfg)

	_, _, err := runCLI(t, []string{"apply"}, env.configPath)
	require.NoError(t, err)
	applied := testsupport.ReadCatalog(t, env.cfg)
	require.NotEqual(t, before, applied)
	require.Len(t, testsupport.ListDir(t, env.cfg.Paths.BackupDir), 1)

	out, _, err := runCLI(t, []string{"restore", "--list"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, ".bak.json")

	out, _, err = runCLI(t, []string{"restore"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored ")
	assert.Contains(t, out, "Previous catalog saved to ")
	assert.Equal(t, before, testsupport.ReadCatalog(t, env.cfg))
	assert.Len(t, testsupport.ListDir(t, env.cfg.Paths.BackupDir), 2, "replaced catalog must be backed up")

	out, _, err = runCLI(t, []string{"restore", "--json"}, env.configPath)
	require.NoError(t, err)
	var payload restoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, env.cfg.Paths.Catalog, payload.Catalog)
	assert.NotEmpty(t, payload.Restored)
}

func TestCLIRestoreMissingBackupIsInputError(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"restore", "nope.bak.json"}, env.configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, failure.ErrInput)

	out, _, err := runCLI(t, []string{"restore", "--list"}, env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No backups found")
}
