package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Asset pool sources.
const (
	AssetSourceLocal = "local"
	AssetSourceS3    = "s3"
)

// Paths contains file and directory locations.
type Paths struct {
	Catalog     string `toml:"catalog"`
	AssetsDir   string `toml:"assets_dir"`
	BackupDir   string `toml:"backup_dir"`
	ReportDir   string `toml:"report_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	MetricsFile string `toml:"metrics_file"`
}

// Matching contains extraction and resolution tuning.
type Matching struct {
	LocalPrefix      string `toml:"local_prefix"`
	PlaceholderPath  string `toml:"placeholder_path"`
	DefaultExtension string `toml:"default_extension"`
	MinTokenLength   int    `toml:"min_token_length"`
	// SimilarityThreshold is the minimum Jaro-Winkler score the last tier
	// accepts. Default: 0.8
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// SubstringConfidence is reported for substring matches. Default: 0.75
	SubstringConfidence float64 `toml:"substring_confidence"`
	// Workers bounds per-record concurrency. 0 means GOMAXPROCS.
	Workers     int `toml:"workers"`
	CacheSize   int `toml:"cache_size"`
	SampleLimit int `toml:"sample_limit"`
}

// Assets selects where the asset pool snapshot is read from.
type Assets struct {
	Source  string   `toml:"source"`
	Exclude []string `toml:"exclude"`
	S3      S3       `toml:"s3"`
}

// S3 contains object-store settings for a mirrored asset pool.
type S3 struct {
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Backup contains catalog backup retention.
type Backup struct {
	// CompressAfterDays zstd-compresses older backups. 0 disables.
	CompressAfterDays int `toml:"compress_after_days"`
	// RetentionDays removes older backups. 0 keeps everything.
	RetentionDays int `toml:"retention_days"`
	// MinFreeMB is headroom required beyond the backup and the new catalog.
	MinFreeMB int `toml:"min_free_mb"`
}

// History contains the run history store settings.
type History struct {
	Enabled bool `toml:"enabled"`
	// KeepRuns trims the store to the newest N runs. 0 keeps everything.
	KeepRuns int `toml:"keep_runs"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for photolink.
//
// Configuration sections by subsystem:
//   - Paths: catalog, asset pool and artifact locations
//   - Matching: token extraction and tier thresholds
//   - Assets: local directory or S3 listing for the pool snapshot
//   - Backup: compression and pruning of catalog backups
//   - History: SQLite run history
//   - Logging: log format, level, and retention
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Assets   Assets   `toml:"assets"`
	Backup   Backup   `toml:"backup"`
	History  History  `toml:"history"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the artifact directories an apply run writes to.
// The catalog and asset directories are inputs and are never created.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.BackupDir, c.Paths.ReportDir, c.Paths.StateDir, c.Paths.LogDir}
	if c.Paths.MetricsFile != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.MetricsFile))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
