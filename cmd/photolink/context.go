package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"photolink/internal/config"
	"photolink/internal/failure"
	"photolink/internal/logging"
)

type globalFlags struct {
	config       string
	catalog      string
	assets       string
	threshold    float64
	thresholdSet bool
	json         bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = failure.Wrap(failure.ErrConfiguration, "config", "load", path, err)
			return
		}
		if err := c.applyOverrides(cfg); err != nil {
			c.configErr = failure.Wrap(failure.ErrConfiguration, "config", "flags", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = failure.Wrap(failure.ErrConfiguration, "config", "directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// applyOverrides folds the global flags into cfg and validates the result.
func (c *commandContext) applyOverrides(cfg *config.Config) error {
	if v := strings.TrimSpace(c.flags.catalog); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return err
		}
		cfg.Paths.Catalog = expanded
	}
	if v := strings.TrimSpace(c.flags.assets); v != "" {
		expanded, err := config.ExpandPath(v)
		if err != nil {
			return err
		}
		cfg.Paths.AssetsDir = expanded
		cfg.Assets.Source = config.AssetSourceLocal
	}
	if c.flags.thresholdSet {
		cfg.Matching.SimilarityThreshold = c.flags.threshold
	}
	return cfg.Validate()
}

// newLogger builds the run logger and prunes old log files.
func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	if cfg.Paths.LogDir != "" {
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
		})
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
