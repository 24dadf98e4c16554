package config

import "path"

const (
	defaultConfigPath          = "~/.config/photolink/config.toml"
	projectConfigName          = "photolink.toml"
	defaultCatalog             = "products.json"
	defaultAssetsDir           = "images"
	defaultBackupDir           = "~/.local/share/photolink/backups"
	defaultReportDir           = "~/.local/share/photolink/reports"
	defaultStateDir            = "~/.local/share/photolink"
	defaultLogDir              = "~/.local/share/photolink/logs"
	defaultLocalPrefix         = "/images/"
	defaultPlaceholderPath     = "/images/placeholder.jpg"
	defaultExtension           = ".jpg"
	defaultMinTokenLength      = 18
	defaultSimilarityThreshold = 0.8
	defaultSubstringConfidence = 0.75
	defaultCacheSize           = 4096
	defaultSampleLimit         = 20
	defaultCompressAfterDays   = 7
	defaultBackupRetentionDays = 90
	defaultMinFreeMB           = 16
	defaultHistoryKeepRuns     = 500
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Catalog:   defaultCatalog,
			AssetsDir: defaultAssetsDir,
			BackupDir: defaultBackupDir,
			ReportDir: defaultReportDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Matching: Matching{
			LocalPrefix:         defaultLocalPrefix,
			PlaceholderPath:     defaultPlaceholderPath,
			DefaultExtension:    defaultExtension,
			MinTokenLength:      defaultMinTokenLength,
			SimilarityThreshold: defaultSimilarityThreshold,
			SubstringConfidence: defaultSubstringConfidence,
			CacheSize:           defaultCacheSize,
			SampleLimit:         defaultSampleLimit,
		},
		Assets: Assets{
			Source:  AssetSourceLocal,
			Exclude: []string{path.Base(defaultPlaceholderPath)},
			S3: S3{
				UseSSL: true,
			},
		},
		Backup: Backup{
			CompressAfterDays: defaultCompressAfterDays,
			RetentionDays:     defaultBackupRetentionDays,
			MinFreeMB:         defaultMinFreeMB,
		},
		History: History{
			Enabled:  true,
			KeepRuns: defaultHistoryKeepRuns,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
