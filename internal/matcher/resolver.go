package matcher

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"photolink/internal/assets"
	"photolink/internal/token"
)

const (
	// DefaultSimilarityThreshold is the minimum Jaro-Winkler score accepted by
	// the similarity tier.
	DefaultSimilarityThreshold = 0.8
	// DefaultSubstringConfidence is the fixed confidence of a substring match.
	DefaultSubstringConfidence = 0.75
	// DefaultCacheSize bounds the per-token memo.
	DefaultCacheSize = 4096

	minSubstringConfidence = 0.7
	maxSubstringConfidence = 0.8
)

// Thresholds tunes the scored tiers.
type Thresholds struct {
	SimilarityMin       float64
	SubstringConfidence float64
}

// DefaultThresholds returns the shipped defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SimilarityMin:       DefaultSimilarityThreshold,
		SubstringConfidence: DefaultSubstringConfidence,
	}
}

// Validate reports out-of-range thresholds.
func (t Thresholds) Validate() error {
	if t.SimilarityMin < 0 || t.SimilarityMin > 1 {
		return fmt.Errorf("similarity threshold %.3f must be in [0,1]", t.SimilarityMin)
	}
	if t.SubstringConfidence < minSubstringConfidence || t.SubstringConfidence > maxSubstringConfidence {
		return fmt.Errorf("substring confidence %.3f must be between %.1f and %.1f",
			t.SubstringConfidence, minSubstringConfidence, maxSubstringConfidence)
	}
	return nil
}

// Resolver runs the tier cascade against one frozen index.
type Resolver struct {
	index      *assets.Index
	thresholds Thresholds
	tiers      []tier
	memo       *lru.Cache[string, Result]
}

// Option customizes a Resolver.
type Option func(*Resolver) error

// WithCacheSize sets the memo size; 0 disables memoization.
func WithCacheSize(size int) Option {
	return func(r *Resolver) error {
		if size <= 0 {
			r.memo = nil
			return nil
		}
		cache, err := lru.New[string, Result](size)
		if err != nil {
			return fmt.Errorf("resolver memo: %w", err)
		}
		r.memo = cache
		return nil
	}
}

// New builds a resolver over index.
func New(index *assets.Index, thresholds Thresholds, opts ...Option) (*Resolver, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	if index == nil {
		index = assets.NewIndex()
	}
	r := &Resolver{
		index:      index,
		thresholds: thresholds,
	}
	r.tiers = []tier{
		exactTier,
		decorationStrippedTier,
		extensionConvertedTier,
		r.substringTier,
		r.similarityTier,
	}
	if err := WithCacheSize(DefaultCacheSize)(r); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Thresholds returns the thresholds the resolver was built with.
func (r *Resolver) Thresholds() Thresholds {
	return r.thresholds
}

// Resolve returns the first tier that accepts tok, or no_suitable_match.
// A token with an empty value resolves to no_token.
func (r *Resolver) Resolve(tok token.Token) Result {
	if tok.Value == "" {
		return Unresolved(ReasonNoToken)
	}
	key := tok.CacheKey()
	if r.memo != nil {
		if cached, ok := r.memo.Get(key); ok {
			return cached
		}
	}
	result := r.cascade(tok)
	if r.memo != nil {
		r.memo.Add(key, result)
	}
	return result
}

func (r *Resolver) cascade(tok token.Token) Result {
	var diag Result
	for _, t := range r.tiers {
		res, ok := t(tok, r.index)
		if ok {
			return res
		}
		if res.BestCandidate != "" {
			diag = res
		}
	}
	out := Unresolved(ReasonNoSuitableMatch)
	out.BestScore = diag.BestScore
	out.BestCandidate = diag.BestCandidate
	return out
}

func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
