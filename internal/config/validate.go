package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateAssets(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		return errors.New("paths.catalog must be set")
	}
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		return errors.New("paths.backup_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		return errors.New("paths.report_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if !strings.HasPrefix(m.LocalPrefix, "/") {
		return fmt.Errorf("matching.local_prefix %q must be an absolute storefront path", m.LocalPrefix)
	}
	if m.MinTokenLength < 4 {
		return errors.New("matching.min_token_length must be at least 4")
	}
	if m.SimilarityThreshold < 0 || m.SimilarityThreshold > 1 {
		return errors.New("matching.similarity_threshold must be between 0 and 1")
	}
	if m.SubstringConfidence < 0.7 || m.SubstringConfidence > 0.8 {
		return errors.New("matching.substring_confidence must be between 0.7 and 0.8")
	}
	if m.Workers <= 0 {
		return errors.New("matching.workers must be positive")
	}
	return nil
}

func (c *Config) validateAssets() error {
	switch c.Assets.Source {
	case AssetSourceLocal:
		if strings.TrimSpace(c.Paths.AssetsDir) == "" {
			return errors.New("paths.assets_dir must be set when assets.source is local")
		}
	case AssetSourceS3:
		if c.Assets.S3.Endpoint == "" {
			return errors.New("assets.s3.endpoint must be set when assets.source is s3")
		}
		if c.Assets.S3.Bucket == "" {
			return errors.New("assets.s3.bucket must be set when assets.source is s3")
		}
		if c.Assets.S3.AccessKey == "" || c.Assets.S3.SecretKey == "" {
			return errors.New("assets.s3 credentials missing (set PHOTOLINK_S3_ACCESS_KEY and PHOTOLINK_S3_SECRET_KEY)")
		}
	default:
		return fmt.Errorf("assets.source %q must be %q or %q", c.Assets.Source, AssetSourceLocal, AssetSourceS3)
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.RetentionDays > 0 && c.Backup.CompressAfterDays >= c.Backup.RetentionDays {
		return errors.New("backup.compress_after_days must be less than backup.retention_days")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
