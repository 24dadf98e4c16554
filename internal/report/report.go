package report

import (
	"math"
	"time"

	"photolink/internal/catalog"
	"photolink/internal/matcher"
)

// DefaultSampleLimit bounds the unresolved sample.
const DefaultSampleLimit = 20

// Meta identifies the run the report belongs to.
type Meta struct {
	RunID               string    `json:"run_id"`
	Mode                string    `json:"mode"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	Catalog             string    `json:"catalog"`
	AssetSource         string    `json:"asset_source"`
	AssetCount          int       `json:"asset_count"`
	SimilarityThreshold float64   `json:"similarity_threshold"`
	Committed           bool      `json:"committed"`
	BackupPath          string    `json:"backup_path,omitempty"`
}

// Entry is one record's contribution, in catalog order.
type Entry struct {
	Index      int
	ID         string
	Name       string
	Ref        string
	State      catalog.State
	Method     matcher.Method
	Reason     matcher.Reason
	Confidence float64
	Changed    bool
}

// Sample is one unresolved record listed for manual inspection.
type Sample struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Ref    string `json:"ref"`
	Reason string `json:"reason"`
}

// Report is the immutable result of one run.
type Report struct {
	Meta
	Total          int            `json:"total"`
	States         map[string]int `json:"states"`
	Methods        map[string]int `json:"methods"`
	Reasons        map[string]int `json:"reasons"`
	Changed        int            `json:"changed"`
	Resolved       int            `json:"resolved"`
	Unresolved     int            `json:"unresolved"`
	ResolutionRate float64        `json:"resolution_rate"`
	Samples        []Sample       `json:"unresolved_sample"`
}

// Build aggregates entries. Every known state, method and reason appears with
// a zero count so consumers can diff reports without key juggling.
func Build(meta Meta, entries []Entry, sampleLimit int) Report {
	if sampleLimit < 0 {
		sampleLimit = 0
	}
	r := Report{
		Meta:    meta,
		Total:   len(entries),
		States:  make(map[string]int, len(catalog.States)),
		Methods: make(map[string]int, len(matcher.Methods)),
		Reasons: make(map[string]int, len(matcher.Reasons)),
		Samples: []Sample{},
	}
	for _, s := range catalog.States {
		r.States[string(s)] = 0
	}
	for _, m := range matcher.Methods {
		r.Methods[string(m)] = 0
	}
	for _, reason := range matcher.Reasons {
		r.Reasons[string(reason)] = 0
	}

	for _, e := range entries {
		r.States[string(e.State)]++
		if e.Changed {
			r.Changed++
		}
		switch e.State {
		case catalog.StateResolvedLocal:
			r.Resolved++
			r.Methods[string(e.Method)]++
		case catalog.StatePlaceholder:
			r.Unresolved++
			r.Reasons[string(e.Reason)]++
			if len(r.Samples) < sampleLimit {
				r.Samples = append(r.Samples, Sample{
					Index:  e.Index,
					ID:     e.ID,
					Name:   e.Name,
					Ref:    e.Ref,
					Reason: string(e.Reason),
				})
			}
		}
	}
	if denom := r.Resolved + r.Unresolved; denom > 0 {
		r.ResolutionRate = math.Round(float64(r.Resolved)/float64(denom)*10000) / 10000
	}
	return r
}

// Duration returns how long the run took.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
