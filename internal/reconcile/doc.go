// Package reconcile wires the photo reconciliation pipeline.
//
// A run loads the catalog, takes one frozen snapshot of the asset pool, then
// classifies and resolves every record on a bounded worker pool. Results are
// collected by record index so the rewritten catalog keeps the input order.
// In apply mode the new catalog is committed only after every record has
// been processed; verify mode computes the same outcomes and report without
// touching the catalog.
//
// After a run the report, metrics textfile, history row and backup retention
// are handled here as well. Those artifacts are best-effort: a failure to
// write one is logged and never undoes a committed catalog.
package reconcile
