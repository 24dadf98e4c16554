// Package config loads, normalizes, and validates photolink configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PHOTOLINK_S3_ACCESS_KEY. The Config type centralizes every knob the CLI and
// the reconcile pipeline need: catalog and asset locations, matching
// thresholds, backup retention and logging.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
