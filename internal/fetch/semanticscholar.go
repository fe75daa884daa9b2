// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/httputil"
	"github.com/pdiddy/citecheck/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph paper endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,authors,year,venue,externalIds,url"

// SemanticScholarClient queries the Semantic Scholar Graph API.
type SemanticScholarClient struct {
	Client    *http.Client
	UserAgent string
	APIKey    string
	Limiter   *rate.Limiter
}

// Name returns the source identifier.
func (c *SemanticScholarClient) Name() string { return "semantic_scholar" }

// FetchByIdentifier looks up a paper by DOI. Returns nil, nil when the
// DOI is unknown to Semantic Scholar.
func (c *SemanticScholarClient) FetchByIdentifier(ctx context.Context, doi string) (*types.FetchedRecord, error) {
	doi = types.NormalizedDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty DOI")
	}

	reqURL := semanticAPIBase + "/DOI:" + doi + "?fields=" + url.QueryEscape(semanticFields)
	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var paper semanticPaper
	if err := json.NewDecoder(resp.Body).Decode(&paper); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return paperRecord(paper), nil
}

// SearchByTitle queries the paper search endpoint and returns candidates
// in relevance order.
func (c *SemanticScholarClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"query":  {title},
		"limit":  {strconv.Itoa(maxResults)},
		"fields": {semanticFields},
	}

	resp, err := c.get(ctx, semanticAPIBase+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var records []types.FetchedRecord
	for _, paper := range sr.Data {
		if rec := paperRecord(paper); rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (c *SemanticScholarClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	return resp, nil
}

// paperRecord converts a Graph API paper to a record, or nil when the
// paper carries no title.
func paperRecord(p semanticPaper) *types.FetchedRecord {
	if p.Title == "" {
		return nil
	}

	rec := &types.FetchedRecord{
		Source:  "semantic_scholar",
		Title:   p.Title,
		DOI:     p.ExternalIDs.DOI,
		ArxivID: p.ExternalIDs.ArXiv,
		URL:     p.URL,
		Venue:   p.Venue,
	}
	if p.Year > 0 {
		rec.Year = strconv.Itoa(p.Year)
	}
	for _, a := range p.Authors {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	return rec
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Year        int                 `json:"year"`
	Venue       string              `json:"venue"`
	URL         string              `json:"url"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
