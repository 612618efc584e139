package usecase

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/FlosMume/CareMind/internal/domain"
	"github.com/FlosMume/CareMind/internal/label"
	"github.com/FlosMume/CareMind/internal/ports"
	"github.com/FlosMume/CareMind/internal/source"
)

const defaultConcurrency = 4

// ErrEmptyNameList aborts a run before any resolution begins.
var ErrEmptyNameList = errors.New("drug name list is empty")

// ResolverDeps wires sources and optional collaborators into the resolver.
type ResolverDeps struct {
	// Sources in fixed priority order; earlier sources win field conflicts.
	Sources     []source.Source
	Repository  ports.RecordRepository
	Concurrency int
	Logger      *slog.Logger
}

// Resolver builds sentinel-complete drug records by querying sources in
// priority order and merging partial results field by field.
type Resolver struct {
	sources     []source.Source
	repository  ports.RecordRepository
	concurrency int
	logger      *slog.Logger
}

// NewResolver constructs the orchestration component.
func NewResolver(deps ResolverDeps) *Resolver {
	if deps.Concurrency <= 0 {
		deps.Concurrency = defaultConcurrency
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Resolver{
		sources:     deps.Sources,
		repository:  deps.Repository,
		concurrency: deps.Concurrency,
		logger:      deps.Logger,
	}
}

// ResolveAll resolves every name and returns records in input order.
// Records resolve independently under a bounded worker pool; a record
// whose sources all failed is still emitted, sentinel-filled. Previously
// cached records are served from the repository without touching sources.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) ([]domain.DrugRecord, error) {
	if len(names) == 0 {
		return nil, ErrEmptyNameList
	}

	cached := map[string]domain.DrugRecord{}
	if r.repository != nil {
		var err error
		cached, err = r.repository.Lookup(ctx, names)
		if err != nil {
			r.logger.Warn("record cache lookup failed", "error", err)
			cached = map[string]domain.DrugRecord{}
		}
	}

	records := make([]domain.DrugRecord, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, name := range names {
		g.Go(func() error {
			if rec, ok := cached[name]; ok {
				records[i] = rec
				return nil
			}

			rec := r.resolveOne(gctx, name)
			records[i] = rec

			if r.repository != nil {
				if err := r.repository.Save(gctx, rec); err != nil {
					r.logger.Warn("record cache save failed", "drug", name, "error", err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return records, err
	}
	return records, ctx.Err()
}

// resolveOne runs the fallback chain for a single name. Each source fills
// only the fields still empty, sources are skipped once the record is
// complete, and every source failure degrades to "no contribution". The
// returned record is finalized and therefore sentinel-complete.
func (r *Resolver) resolveOne(ctx context.Context, name string) domain.DrugRecord {
	rec := domain.NewDrugRecord(name)

	for _, src := range r.sources {
		if rec.Complete() {
			break
		}

		res, err := src.Fetch(ctx, name)
		if err != nil {
			r.logger.Warn("source yielded nothing", "source", src.Name(), "drug", name, "error", err)
			continue
		}
		if res == nil {
			r.logger.Debug("source absent", "source", src.Name(), "drug", name)
			continue
		}

		fields := res.Fields
		if fields == nil {
			parsed := label.Parse(res.Text)
			fields = &parsed
		}

		if rec.Fill(*fields) {
			rec.AttachSource(src.Name())
		}
	}

	rec.Finalize()
	return *rec
}
