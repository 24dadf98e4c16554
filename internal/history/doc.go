// Package history persists one row per reconcile run in SQLite so operators
// can compare resolution rates across runs ("photolink history").
//
// The schema is managed by embedded, ordered SQL migrations applied on Open.
// Every write is a single statement; the store never blocks a run for long.
package history
