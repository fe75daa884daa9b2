// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// titleFloor is the minimum title similarity a search candidate needs
// before it is worth comparing in full. Below this the hit is a
// different paper that happens to share a few words.
const titleFloor = 0.5

// lookupMethod selects how a strategy queries its source.
type lookupMethod int

const (
	byArxivID lookupMethod = iota
	byDOI
	byDOIThenTitle
	byTitle
)

// strategy binds a workflow step to one source and lookup method.
type strategy struct {
	source string
	method lookupMethod
}

// strategies is the closed set of workflow steps. Workflow entries with
// names outside this map are logged and skipped.
var strategies = map[types.Step]strategy{
	types.StepArxivID:         {source: "arxiv", method: byArxivID},
	types.StepCrossrefDOI:     {source: "crossref", method: byDOI},
	types.StepSemanticScholar: {source: "semantic_scholar", method: byDOIThenTitle},
	types.StepDblp:            {source: "dblp", method: byTitle},
	types.StepOpenAlex:        {source: "openalex", method: byDOIThenTitle},
	types.StepArxivTitle:      {source: "arxiv", method: byTitle},
	types.StepCrossrefTitle:   {source: "crossref", method: byTitle},
	types.StepGoogleScholar:   {source: "google_scholar", method: byTitle},
}

// runStep executes one strategy for one citation. A nil record with a
// nil error means the step had nothing to contribute: the required field
// is missing, the source is not registered, or the lookup came up empty.
func (o *Orchestrator) runStep(ctx context.Context, st strategy, c types.Citation) (*types.FetchedRecord, error) {
	switch st.method {
	case byArxivID:
		if c.ArxivID == "" {
			return nil, nil
		}
		return o.fetchIdentifier(ctx, st.source, c.ArxivID)

	case byDOI:
		if c.DOI == "" {
			return nil, nil
		}
		return o.fetchIdentifier(ctx, st.source, c.DOI)

	case byDOIThenTitle:
		if c.DOI != "" {
			rec, err := o.fetchIdentifier(ctx, st.source, c.DOI)
			if rec != nil {
				return rec, nil
			}
			if err != nil {
				o.log.Warn("identifier lookup failed, falling back to title",
					zap.String("source", st.source),
					zap.String("key", c.Key),
					zap.Error(err))
			}
		}
		return o.searchTitle(ctx, st.source, c)

	case byTitle:
		return o.searchTitle(ctx, st.source, c)
	}
	return nil, nil
}

// fetchIdentifier resolves an identifier through the cache and the
// source client.
func (o *Orchestrator) fetchIdentifier(ctx context.Context, source, id string) (*types.FetchedRecord, error) {
	f, ok := o.sources.Fetcher(source)
	if !ok {
		return nil, nil
	}

	key := source + "|id|" + id
	if rec := o.cacheGet(ctx, key); rec != nil {
		return rec, nil
	}

	rec, err := f.FetchByIdentifier(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	o.cachePut(ctx, key, rec)
	return rec, nil
}

// searchTitle queries a source by title and keeps the candidate closest
// to the citation's title, subject to the acceptance floor.
func (o *Orchestrator) searchTitle(ctx context.Context, source string, c types.Citation) (*types.FetchedRecord, error) {
	s, ok := o.sources.Searcher(source)
	if !ok {
		return nil, nil
	}

	title := strings.Join(strings.Fields(normalize.StripLatex(c.Title)), " ")
	if title == "" {
		return nil, nil
	}

	key := source + "|title|" + title
	if rec := o.cacheGet(ctx, key); rec != nil {
		return rec, nil
	}

	candidates, err := s.SearchByTitle(ctx, title, o.cfg.MaxResults)
	if err != nil || len(candidates) == 0 {
		return nil, err
	}

	best := bestCandidate(c.Title, candidates)
	if best == nil {
		return nil, nil
	}
	o.cachePut(ctx, key, best)
	return best, nil
}

// bestCandidate picks the candidate with the highest title similarity,
// or nil when none clears the floor.
func bestCandidate(title string, candidates []types.FetchedRecord) *types.FetchedRecord {
	var best *types.FetchedRecord
	bestSim := 0.0
	for i := range candidates {
		sim := normalize.SimilarityRatio(title, candidates[i].Title)
		if sim > bestSim {
			best = &candidates[i]
			bestSim = sim
		}
	}
	if bestSim < titleFloor {
		return nil
	}
	return best
}
