package catalog

import (
	"time"

	"photolink/internal/matcher"
)

// State is the terminal state of a record after one pass.
type State string

const (
	StateAlreadyLocal  State = "already_local"
	StateResolvedLocal State = "resolved_local"
	StatePlaceholder   State = "placeholder"
)

// States lists every terminal state in report order.
var States = []State{StateAlreadyLocal, StateResolvedLocal, StatePlaceholder}

// Provenance is the image_match object explaining where image points.
type Provenance struct {
	State      State   `json:"state"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method,omitempty"`
	File       string  `json:"file,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	MatchedAt  string  `json:"matched_at,omitempty"`
}

// SameEvidence reports whether p and q differ at most in MatchedAt.
func (p Provenance) SameEvidence(q Provenance) bool {
	p.MatchedAt, q.MatchedAt = "", ""
	return p == q
}

// OutcomeKind tags a per-record outcome.
type OutcomeKind int

const (
	OutcomeAlreadyLocal OutcomeKind = iota
	OutcomeResolved
	OutcomeUnresolved
)

// Outcome is the value-typed result of extraction and resolution for one
// record.
type Outcome struct {
	Kind   OutcomeKind
	Result matcher.Result
}

// AlreadyLocal is the outcome for a record already pointing at a local asset.
func AlreadyLocal() Outcome {
	return Outcome{Kind: OutcomeAlreadyLocal}
}

// FromResult wraps a resolver result.
func FromResult(res matcher.Result) Outcome {
	if res.Resolved {
		return Outcome{Kind: OutcomeResolved, Result: res}
	}
	return Outcome{Kind: OutcomeUnresolved, Result: res}
}

// State returns the terminal state the outcome leads to.
func (o Outcome) State() State {
	switch o.Kind {
	case OutcomeAlreadyLocal:
		return StateAlreadyLocal
	case OutcomeResolved:
		return StateResolvedLocal
	default:
		return StatePlaceholder
	}
}

func provenanceFor(o Outcome, now time.Time) Provenance {
	p := Provenance{State: o.State(), MatchedAt: now.UTC().Format(time.RFC3339)}
	if o.Kind == OutcomeResolved {
		p.Confidence = o.Result.Confidence
		p.Method = string(o.Result.Method)
		p.File = o.Result.File
	} else {
		p.Reason = string(o.Result.Reason)
	}
	return p
}
