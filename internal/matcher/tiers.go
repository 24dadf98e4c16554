package matcher

import (
	"strings"

	"photolink/internal/assets"
	"photolink/internal/textutil"
	"photolink/internal/token"
)

// tier returns ok=true when it accepts the token. A rejecting tier may still
// return diagnostic fields.
type tier func(tok token.Token, index *assets.Index) (Result, bool)

// exactTier accepts an undecorated reference whose filename, as written or as
// token+extension, exists verbatim.
func exactTier(tok token.Token, index *assets.Index) (Result, bool) {
	if carriesToken(tok) {
		if a, ok := index.ByName(tok.RawName); ok {
			return Resolved(a.Name, confidenceExact, MethodExact), true
		}
	}
	if tok.Decorated {
		return Result{}, false
	}
	if a, ok := index.ByName(tok.Filename()); ok {
		return Resolved(a.Name, confidenceExact, MethodExact), true
	}
	return Result{}, false
}

// decorationStrippedTier accepts a decorated reference whose stripped
// filename exists, trying the inner extension when the vendor transcoded.
func decorationStrippedTier(tok token.Token, index *assets.Index) (Result, bool) {
	if !tok.Decorated {
		return Result{}, false
	}
	candidates := []string{tok.Filename()}
	if carriesToken(tok) {
		candidates = append(candidates, token.StripDecorations(tok.RawName))
	}
	if tok.InnerExtension != "" {
		candidates = append(candidates, tok.Value+tok.InnerExtension)
	}
	for _, name := range candidates {
		if a, ok := index.ByName(name); ok {
			return Resolved(a.Name, confidenceDecorationStrip, MethodDecorationStripped), true
		}
	}
	return Result{}, false
}

// extensionConvertedTier accepts an asset whose base name equals the token.
func extensionConvertedTier(tok token.Token, index *assets.Index) (Result, bool) {
	hits := index.ByKey(tok.Value)
	if len(hits) == 0 {
		return Result{}, false
	}
	best := hits[0]
	for _, a := range hits[1:] {
		if preferName(a.Name, best.Name) {
			best = a
		}
	}
	return Resolved(best.Name, confidenceExtensionConverted, MethodExtensionConverted), true
}

func (r *Resolver) substringTier(tok token.Token, index *assets.Index) (Result, bool) {
	var best string
	index.Each(func(a assets.Asset) bool {
		if strings.Contains(a.Name, tok.Value) && (best == "" || preferName(a.Name, best)) {
			best = a.Name
		}
		return true
	})
	if best == "" {
		return Result{}, false
	}
	return Resolved(best, r.thresholds.SubstringConfidence, MethodSubstringMatch), true
}

func (r *Resolver) similarityTier(tok token.Token, index *assets.Index) (Result, bool) {
	var (
		bestName  string
		bestScore float64
	)
	// Each walks in name order, so strict > keeps the lexicographically
	// smallest name on ties.
	index.Each(func(a assets.Asset) bool {
		score := textutil.JaroWinkler(tok.Value, a.Key)
		if score > bestScore {
			bestScore = score
			bestName = a.Name
		}
		return true
	})
	if bestName == "" {
		return Result{}, false
	}
	// The threshold applies to the raw score; only the recorded value is rounded.
	score := roundScore(bestScore)
	if bestScore < r.thresholds.SimilarityMin {
		return Result{BestScore: score, BestCandidate: bestName}, false
	}
	res := Resolved(bestName, score, MethodSimilarityMatch)
	res.BestScore = score
	res.BestCandidate = bestName
	return res, true
}

// carriesToken reports whether the raw filename is the one the token came
// from. Tokens lifted from a directory segment or query string must not match
// on an unrelated trailing filename.
func carriesToken(tok token.Token) bool {
	return tok.RawName != "" && strings.Contains(tok.RawName, tok.Value)
}

// preferName orders candidates within one tier: shorter names first, then
// lexicographic.
func preferName(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
