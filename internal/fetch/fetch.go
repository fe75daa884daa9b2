// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch queries bibliographic data sources and returns unified
// records for comparison against BibTeX entries.
package fetch

import (
	"context"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/pkg/types"
)

// Client is a bibliographic data source. Each source (arXiv, CrossRef,
// Semantic Scholar, DBLP, OpenAlex, Google Scholar) implements this
// interface plus whichever capability interfaces it supports.
type Client interface {
	Name() string
}

// IdentifierFetcher looks up a single record by an exact identifier: an
// arXiv ID for arXiv, a DOI for CrossRef, Semantic Scholar, and OpenAlex.
// A nil record with a nil error means the identifier is unknown to the
// source; errors are reserved for transport and protocol failures.
type IdentifierFetcher interface {
	Client
	FetchByIdentifier(ctx context.Context, id string) (*types.FetchedRecord, error)
}

// TitleSearcher queries a source by title and returns ranked candidates.
// An empty slice with a nil error means no candidates.
type TitleSearcher interface {
	Client
	SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error)
}

// Registry holds the configured source clients keyed by source name.
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds the default client set from the configuration. All
// clients share one HTTP client with the configured timeout. Google
// Scholar is only constructed when its workflow step is enabled, since
// scraping it is off by default.
func NewRegistry(cfg *types.Config, log *zap.Logger) *Registry {
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	ua := cfg.HTTP.UserAgent

	r := &Registry{clients: make(map[string]Client)}
	r.add(&ArxivClient{
		Client:    httpClient,
		UserAgent: ua,
		Limiter:   newLimiter(cfg.Sources.Arxiv.Delay),
	})
	r.add(&CrossrefClient{
		Client:    httpClient,
		UserAgent: ua,
		Mailto:    cfg.Sources.Crossref.Mailto,
		Token:     cfg.Sources.Crossref.APIKey,
		Limiter:   newLimiter(cfg.Sources.Crossref.Delay),
	})
	r.add(&SemanticScholarClient{
		Client:    httpClient,
		UserAgent: ua,
		APIKey:    cfg.Sources.SemanticScholar.APIKey,
		Limiter:   newLimiter(cfg.Sources.SemanticScholar.Delay),
	})
	r.add(&DblpClient{
		Client:    httpClient,
		UserAgent: ua,
		Limiter:   newLimiter(cfg.Sources.Dblp.Delay),
	})
	r.add(&OpenAlexClient{
		Client:    httpClient,
		UserAgent: ua,
		Mailto:    cfg.Sources.OpenAlex.Mailto,
		Limiter:   newLimiter(cfg.Sources.OpenAlex.Delay),
	})
	if stepEnabled(cfg.Workflow, types.StepGoogleScholar) {
		r.add(&ScholarClient{
			Client:  httpClient,
			Limiter: newLimiter(cfg.Sources.Scholar.Delay),
		})
	}

	log.Debug("configured data sources", zap.Strings("sources", r.Names()))
	return r
}

func (r *Registry) add(c Client) {
	r.clients[c.Name()] = c
}

// Fetcher returns the named source if it supports identifier lookup.
func (r *Registry) Fetcher(name string) (IdentifierFetcher, bool) {
	f, ok := r.clients[name].(IdentifierFetcher)
	return f, ok
}

// Searcher returns the named source if it supports title search.
func (r *Registry) Searcher(name string) (TitleSearcher, bool) {
	s, ok := r.clients[name].(TitleSearcher)
	return s, ok
}

// Names returns the configured source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newLimiter returns a burst-1 rate limiter at the given minimum delay,
// or nil when the source is not throttled. Concurrent workers hitting the
// same source serialize on its limiter.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// waitLimiter blocks until the limiter admits a call. A nil limiter
// admits immediately.
func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

func stepEnabled(workflow []types.WorkflowStep, step types.Step) bool {
	for _, ws := range workflow {
		if ws.Name == step {
			return ws.Enabled
		}
	}
	return false
}
