// Package assets builds the frozen snapshot of the local image pool.
//
// An Index is built exactly once per run, either from a flat directory or from
// an object-store key listing, and is never mutated afterwards. Matching reads
// it concurrently from many workers; files that appear on disk after the scan
// are invisible to the run.
package assets
