package textutil

import "github.com/xrash/smetrics"

const (
	winklerPrefixLimit   = 4
	winklerBoostMinScore = 0.7
)

// Jaro returns the Jaro similarity of a and b in [0,1].
// Two empty strings are identical; one empty string scores 0.
func Jaro(a, b string) float64 {
	return smetrics.Jaro(a, b)
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0,1].
// The common-prefix boost only applies once the Jaro score clears 0.7.
func JaroWinkler(a, b string) float64 {
	return smetrics.JaroWinkler(a, b, winklerBoostMinScore, winklerPrefixLimit)
}
