// Package matcher resolves an extracted image token against the frozen asset
// index.
//
// Resolution walks five tiers in a fixed order and stops at the first that
// succeeds: exact filename, decoration-stripped filename, extension-insensitive
// base name, token substring, and Jaro-Winkler nearest neighbour. A higher tier
// always wins over a lower one, whatever the lower tier's score would be.
//
// Resolve is a pure function of the token, the index, and the thresholds, so
// results are memoized per token and the Resolver is safe for concurrent use.
package matcher
