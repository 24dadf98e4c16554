package config

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"slices"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeMatching()
	c.normalizeAssets()
	c.normalizeBackup()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.catalog", &c.Paths.Catalog},
		{"paths.assets_dir", &c.Paths.AssetsDir},
		{"paths.backup_dir", &c.Paths.BackupDir},
		{"paths.report_dir", &c.Paths.ReportDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.metrics_file", &c.Paths.MetricsFile},
	}
	for _, f := range fields {
		expanded, err := expandPath(strings.TrimSpace(*f.value))
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.value = expanded
	}
	if c.Paths.StateDir == "" {
		expanded, err := expandPath(defaultStateDir)
		if err != nil {
			return fmt.Errorf("paths.state_dir: %w", err)
		}
		c.Paths.StateDir = expanded
	}
	return nil
}

func (c *Config) normalizeMatching() {
	m := &c.Matching
	m.LocalPrefix = strings.TrimSpace(m.LocalPrefix)
	if m.LocalPrefix == "" {
		m.LocalPrefix = defaultLocalPrefix
	}
	if !strings.HasSuffix(m.LocalPrefix, "/") {
		m.LocalPrefix += "/"
	}
	m.PlaceholderPath = strings.TrimSpace(m.PlaceholderPath)
	if m.PlaceholderPath == "" {
		m.PlaceholderPath = m.LocalPrefix + path.Base(defaultPlaceholderPath)
	}
	m.DefaultExtension = strings.TrimSpace(m.DefaultExtension)
	if m.DefaultExtension == "" {
		m.DefaultExtension = defaultExtension
	}
	if !strings.HasPrefix(m.DefaultExtension, ".") {
		m.DefaultExtension = "." + m.DefaultExtension
	}
	if m.MinTokenLength == 0 {
		m.MinTokenLength = defaultMinTokenLength
	}
	if m.Workers <= 0 {
		m.Workers = runtime.GOMAXPROCS(0)
	}
	if m.CacheSize < 0 {
		m.CacheSize = 0
	}
	if m.SampleLimit < 0 {
		m.SampleLimit = 0
	}
}

func (c *Config) normalizeAssets() {
	c.Assets.Source = strings.ToLower(strings.TrimSpace(c.Assets.Source))
	if c.Assets.Source == "" {
		c.Assets.Source = AssetSourceLocal
	}

	// The placeholder lives in the pool directory but must never be matched.
	placeholder := path.Base(c.Matching.PlaceholderPath)
	exclude := make([]string, 0, len(c.Assets.Exclude)+1)
	for _, name := range c.Assets.Exclude {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(exclude, name) {
			exclude = append(exclude, name)
		}
	}
	if placeholder != "" && placeholder != "." && placeholder != "/" && !slices.Contains(exclude, placeholder) {
		exclude = append(exclude, placeholder)
	}
	c.Assets.Exclude = exclude

	s3 := &c.Assets.S3
	s3.Endpoint = strings.TrimSpace(s3.Endpoint)
	s3.Bucket = strings.TrimSpace(s3.Bucket)
	s3.Prefix = strings.TrimLeft(strings.TrimSpace(s3.Prefix), "/")
	s3.Region = strings.TrimSpace(s3.Region)
	s3.AccessKey = strings.TrimSpace(s3.AccessKey)
	if s3.AccessKey == "" {
		if value, ok := os.LookupEnv("PHOTOLINK_S3_ACCESS_KEY"); ok {
			s3.AccessKey = strings.TrimSpace(value)
		}
	}
	s3.SecretKey = strings.TrimSpace(s3.SecretKey)
	if s3.SecretKey == "" {
		if value, ok := os.LookupEnv("PHOTOLINK_S3_SECRET_KEY"); ok {
			s3.SecretKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeBackup() {
	if c.Backup.CompressAfterDays < 0 {
		c.Backup.CompressAfterDays = 0
	}
	if c.Backup.RetentionDays < 0 {
		c.Backup.RetentionDays = 0
	}
	if c.Backup.MinFreeMB < 0 {
		c.Backup.MinFreeMB = 0
	}
	if c.History.KeepRuns < 0 {
		c.History.KeepRuns = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
