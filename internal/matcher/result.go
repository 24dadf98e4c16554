package matcher

import "fmt"

// Method names the tier that produced a resolution.
type Method string

const (
	MethodExact              Method = "exact"
	MethodDecorationStripped Method = "decoration_stripped"
	MethodExtensionConverted Method = "extension_converted"
	MethodSubstringMatch     Method = "substring_match"
	MethodSimilarityMatch    Method = "similarity_match"
)

const (
	confidenceExact              = 1.0
	confidenceDecorationStrip    = 0.95
	confidenceExtensionConverted = 0.9
)

// Methods lists the tiers in evaluation order.
var Methods = []Method{
	MethodExact,
	MethodDecorationStripped,
	MethodExtensionConverted,
	MethodSubstringMatch,
	MethodSimilarityMatch,
}

// Reason explains why a token could not be resolved.
type Reason string

const (
	ReasonNoToken         Reason = "no_token"
	ReasonNoSuitableMatch Reason = "no_suitable_match"
)

// Reasons lists every unresolved reason.
var Reasons = []Reason{ReasonNoToken, ReasonNoSuitableMatch}

// Result is either resolved (File, Confidence, Method) or unresolved (Reason).
type Result struct {
	Resolved   bool
	File       string
	Confidence float64
	Method     Method
	Reason     Reason
	// BestScore is the highest similarity seen when the cascade reached the
	// similarity tier, including rejected candidates. Diagnostic only.
	BestScore float64
	// BestCandidate is the asset behind BestScore.
	BestCandidate string
}

// Resolved builds a resolved result.
func Resolved(file string, confidence float64, method Method) Result {
	return Result{Resolved: true, File: file, Confidence: confidence, Method: method}
}

// Unresolved builds an unresolved result.
func Unresolved(reason Reason) Result {
	return Result{Reason: reason}
}

func (r Result) String() string {
	if r.Resolved {
		return fmt.Sprintf("resolved(%s %s %.4f)", r.File, r.Method, r.Confidence)
	}
	return fmt.Sprintf("unresolved(%s)", r.Reason)
}
