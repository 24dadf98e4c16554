// Package preflight provides readiness checks for the filesystem paths a
// reconcile run depends on.
//
// These checks run in two contexts:
//   - "photolink apply" calls RunAll before loading anything. If any check
//     fails the run stops without touching the catalog.
//   - The catalog writer calls CheckFreeSpace right before taking the backup,
//     so a full disk is reported before the first byte is written.
//
// Checks for optional features are skipped when the feature is disabled.
package preflight
