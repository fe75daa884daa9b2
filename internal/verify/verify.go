// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify drives citation verification: it walks each citation
// through the configured workflow steps, compares what the sources
// return against the BibTeX fields, and aggregates a batch result.
package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/compare"
	"github.com/pdiddy/citecheck/internal/duplicates"
	"github.com/pdiddy/citecheck/internal/fetch"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Cache stores positive source lookups between runs. The SQLite store in
// internal/cache implements it; nil disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (*types.FetchedRecord, error)
	Put(ctx context.Context, key string, rec *types.FetchedRecord) error
}

// Sources resolves source names to clients. *fetch.Registry implements
// it.
type Sources interface {
	Fetcher(name string) (fetch.IdentifierFetcher, bool)
	Searcher(name string) (fetch.TitleSearcher, bool)
}

// Orchestrator verifies batches of citations against the configured
// data sources.
type Orchestrator struct {
	sources Sources
	cfg     types.Config
	cache   Cache
	log     *zap.Logger
}

// New returns an orchestrator using the given source registry, cache,
// and logger.
func New(sources Sources, cfg types.Config, cache Cache, log *zap.Logger) *Orchestrator {
	return &Orchestrator{sources: sources, cfg: cfg, cache: cache, log: log}
}

// Verify runs duplicate detection and per-citation verification over the
// batch and returns the aggregated result. Reports arrive in completion
// order; callers that need input order re-sort by key.
func (o *Orchestrator) Verify(ctx context.Context, citations []types.Citation, steps []types.WorkflowStep) (*types.VerificationResult, error) {
	if len(citations) == 0 {
		return nil, fmt.Errorf("no citations to verify")
	}

	start := time.Now()
	result := &types.VerificationResult{
		RunID: uuid.NewString(),
		Total: len(citations),
	}

	o.log.Info("starting verification",
		zap.String("run_id", result.RunID),
		zap.Int("citations", len(citations)))

	result.Duplicates = duplicates.Find(citations)
	if len(result.Duplicates) > 0 {
		o.log.Warn("possible duplicate entries", zap.Int("groups", len(result.Duplicates)))
	}

	workers := o.cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(citations) {
		workers = len(citations)
	}

	jobs := make(chan types.Citation)
	reports := make(chan types.EntryReport)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				reports <- o.verifyTask(ctx, c, steps)
			}
		}()
	}

	go func() {
		for _, c := range citations {
			jobs <- c
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(reports)
	}()

	// Aggregation is serialized here, so counts need no locking.
	for report := range reports {
		result.Reports = append(result.Reports, report)
		switch {
		case report.Comparison.IsMatch:
			result.Verified++
		case report.Comparison.HasIssues:
			result.Warnings++
		default:
			result.Errors++
		}
	}

	result.Elapsed = time.Since(start)
	o.log.Info("verification complete",
		zap.Int("verified", result.Verified),
		zap.Int("warnings", result.Warnings),
		zap.Int("errors", result.Errors),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// verifyTask wraps verifyOne with panic recovery so one poisoned
// citation cannot take down the batch.
func (o *Orchestrator) verifyTask(ctx context.Context, c types.Citation, steps []types.WorkflowStep) (report types.EntryReport) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("verification task panicked",
				zap.String("key", c.Key),
				zap.Any("panic", r))
			report = types.EntryReport{
				Citation:   c,
				Comparison: compare.Unable(c, "internal error during verification"),
			}
		}
	}()
	return types.EntryReport{Citation: c, Comparison: o.verifyOne(ctx, c, steps)}
}

// verifyOne walks one citation through the enabled workflow steps in
// order. The first full match wins and stops the walk; otherwise the
// highest-confidence partial result stands, and a citation no source
// knows gets the unable verdict.
func (o *Orchestrator) verifyOne(ctx context.Context, c types.Citation, steps []types.WorkflowStep) types.ComparisonResult {
	var collected []types.ComparisonResult

	for _, ws := range steps {
		if !ws.Enabled {
			continue
		}
		st, ok := strategies[ws.Name]
		if !ok {
			o.log.Warn("unknown workflow step", zap.String("step", string(ws.Name)))
			continue
		}

		rec, err := o.runStep(ctx, st, c)
		if err != nil {
			o.log.Warn("source lookup failed",
				zap.String("step", string(ws.Name)),
				zap.String("key", c.Key),
				zap.Error(err))
			continue
		}
		if rec == nil {
			continue
		}

		result := compare.Compare(c, *rec, st.source, o.cfg.Compare)
		if result.IsMatch {
			return result
		}
		collected = append(collected, result)
	}

	if len(collected) > 0 {
		best := collected[0]
		for _, r := range collected[1:] {
			if r.Confidence > best.Confidence {
				best = r
			}
		}
		return best
	}
	return compare.Unable(c, "Unable to find this paper in any data source")
}

func (o *Orchestrator) cacheGet(ctx context.Context, key string) *types.FetchedRecord {
	if o.cache == nil {
		return nil
	}
	rec, err := o.cache.Get(ctx, key)
	if err != nil {
		o.log.Debug("cache get failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return rec
}

func (o *Orchestrator) cachePut(ctx context.Context, key string, rec *types.FetchedRecord) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Put(ctx, key, rec); err != nil {
		o.log.Debug("cache put failed", zap.String("key", key), zap.Error(err))
	}
}
