// Package main hosts the photolink CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, applies the global
// flag overrides, and hands off to internal/reconcile for apply and verify
// runs. Presentation (tables, JSON output, diff preview) lives here; the
// internal packages never print.
package main
