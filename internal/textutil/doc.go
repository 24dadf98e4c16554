// Package textutil provides string similarity scoring.
//
// It scores how close an extracted image token is to a local asset key.
// Similarity is Jaro-Winkler from xrash/smetrics, compared byte-wise.
// Comparisons are case-sensitive: vendor image tokens are opaque ASCII
// identifiers, not display text.
package textutil
