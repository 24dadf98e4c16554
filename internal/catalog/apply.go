package catalog

import (
	"slices"
	"time"
)

// ApplyOptions carries the run-wide values Apply needs.
type ApplyOptions struct {
	LocalPrefix     string
	PlaceholderPath string
	Now             time.Time
}

// Change describes what Apply did to one record.
type Change struct {
	State State
	// Fields lists the keys whose value changed, in record order.
	Fields []string
	// Previous is the image reference before the change.
	Previous string
	// Current is the image reference after the change.
	Current string
}

// Changed reports whether any field was modified.
func (c Change) Changed() bool {
	return len(c.Fields) > 0
}

// Apply computes the next version of rec for outcome. rec is not modified.
func Apply(rec Record, outcome Outcome, opts ApplyOptions) (Record, Change) {
	next := rec.Clone()
	previous := rec.Image()
	change := Change{State: outcome.State(), Previous: previous, Current: previous}

	switch outcome.Kind {
	case OutcomeAlreadyLocal:
		if rec.OriginalImage() == "" && previous != "" {
			setString(&next, rec, KeyOriginal, previous)
		}
	default:
		target := opts.PlaceholderPath
		if outcome.Kind == OutcomeResolved {
			target = opts.LocalPrefix + outcome.Result.File
		}
		captureOriginal(&next, rec, opts.PlaceholderPath)
		setString(&next, rec, KeyImage, target)
		mirrorGallery(&next, rec, previous, target)
		setProvenance(&next, rec, provenanceFor(outcome, opts.Now))
		change.Current = target
	}

	change.Fields = DiffKeys(rec, next)
	return next, change
}

// captureOriginal fills original_image from the reference being replaced,
// once. The placeholder is never an original reference.
func captureOriginal(next *Record, rec Record, placeholder string) {
	if rec.OriginalImage() != "" {
		return
	}
	ref := rec.Image()
	if ref == "" || ref == placeholder {
		return
	}
	setString(next, rec, KeyOriginal, ref)
}

// setString stores value unless key already holds exactly that string, so an
// equal value written with different escaping is not reported as a change.
func setString(next *Record, rec Record, key, value string) {
	if raw, ok := rec.Raw(key); ok && string(raw) != "null" {
		if cur, _ := rec.String(key); cur == value {
			return
		}
	}
	_ = next.Set(key, value)
}

// mirrorGallery keeps images in step with image: the first entry always
// equals the new primary, and any other entry that repeated the old primary
// follows it. A gallery that is not a string array is left alone.
func mirrorGallery(next *Record, rec Record, previous, target string) {
	gallery, ok := rec.Strings(KeyImages)
	if !ok {
		if rec.Has(KeyImages) {
			return
		}
		gallery = nil
	}
	if len(gallery) == 0 {
		_ = next.Set(KeyImages, []string{target})
		return
	}
	out := make([]string, len(gallery))
	copy(out, gallery)
	out[0] = target
	if previous != "" {
		for i := 1; i < len(out); i++ {
			if out[i] == previous {
				out[i] = target
			}
		}
	}
	if !slices.Equal(out, gallery) {
		_ = next.Set(KeyImages, out)
	}
}

// setProvenance writes p unless the record already carries the same evidence,
// in which case the old value (and its timestamp) is kept.
func setProvenance(next *Record, rec Record, p Provenance) {
	if old, ok := rec.Provenance(); ok && old.SameEvidence(p) {
		return
	}
	_ = next.Set(KeyProvenance, p)
}
