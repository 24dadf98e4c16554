// Package report aggregates per-record outcomes into the run report.
//
// Build is pure: it counts terminal states, tiers and unresolved reasons and
// keeps a bounded sample of unresolved records. Writing the report as JSON or
// as a Prometheus textfile is separate so callers choose the presentation.
package report
