package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"photolink/internal/catalog"
	"photolink/internal/matcher"
	"photolink/internal/token"
)

// Entry is the processed state of one record.
type Entry struct {
	Index int
	// Ref is the reference that was classified.
	Ref     string
	Outcome catalog.Outcome
	Change  catalog.Change
}

type processor struct {
	extractor *token.Extractor
	resolver  *matcher.Resolver
	apply     catalog.ApplyOptions
}

// classify turns one record into its outcome. It never fails: missing or
// unusable references are unresolved outcomes.
func (p *processor) classify(rec catalog.Record) (string, catalog.Outcome) {
	ref := rec.SourceRef(p.apply.PlaceholderPath)
	cls := p.extractor.Extract(ref)
	switch cls.Kind {
	case token.KindAlreadyLocal:
		return ref, catalog.AlreadyLocal()
	case token.KindToken:
		return ref, catalog.FromResult(p.resolver.Resolve(cls.Token))
	default:
		return ref, catalog.FromResult(matcher.Unresolved(matcher.ReasonNoToken))
	}
}

// processAll runs classify and Apply for every record with at most workers
// goroutines. Results are index-addressed, so next[i] and entries[i] always
// belong to records[i] regardless of completion order.
func (p *processor) processAll(ctx context.Context, records []catalog.Record, workers int) ([]catalog.Record, []Entry, error) {
	next := make([]catalog.Record, len(records))
	entries := make([]Entry, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ref, outcome := p.classify(rec)
			updated, change := catalog.Apply(rec, outcome, p.apply)
			next[i] = updated
			entries[i] = Entry{Index: i, Ref: ref, Outcome: outcome, Change: change}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	// A cancel that raced the last submission leaves holes; never hand them on.
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return next, entries, nil
}
