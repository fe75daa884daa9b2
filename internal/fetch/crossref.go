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

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// CrossrefClient queries the CrossRef REST API. Setting Mailto joins the
// polite pool; Token sends a Crossref Plus API token.
type CrossrefClient struct {
	Client    *http.Client
	UserAgent string
	Mailto    string
	Token     string
	Limiter   *rate.Limiter
}

// Name returns the source identifier.
func (c *CrossrefClient) Name() string { return "crossref" }

// FetchByIdentifier looks up a work by DOI. Returns nil, nil when
// CrossRef does not know the DOI.
func (c *CrossrefClient) FetchByIdentifier(ctx context.Context, doi string) (*types.FetchedRecord, error) {
	doi = types.NormalizedDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty DOI")
	}

	reqURL := crossrefAPIBase + "/" + url.PathEscape(doi)
	if c.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	resp, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefWorkResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}
	return workRecord(cr.Message), nil
}

// SearchByTitle queries CrossRef's bibliographic title search and returns
// candidates in relevance order.
func (c *CrossrefClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty CrossRef title query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"query.title": {title},
		"rows":        {strconv.Itoa(maxResults)},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	resp, err := c.get(ctx, crossrefAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	var cr crossrefSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	var records []types.FetchedRecord
	for _, w := range cr.Message.Items {
		if rec := workRecord(w); rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (c *CrossrefClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Crossref-Plus-API-Token", "Bearer "+c.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	return resp, nil
}

// workRecord converts a CrossRef work to a record, or nil when the work
// carries no title.
func workRecord(w crossrefWork) *types.FetchedRecord {
	if len(w.Title) == 0 || w.Title[0] == "" {
		return nil
	}

	rec := &types.FetchedRecord{
		Source: "crossref",
		Title:  w.Title[0],
		DOI:    w.DOI,
		URL:    w.URL,
	}
	if y := workYear(w); y > 0 {
		rec.Year = strconv.Itoa(y)
	}
	if len(w.ContainerTitle) > 0 {
		rec.Venue = w.ContainerTitle[0]
	}
	for _, a := range w.Author {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = a.Name
		}
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	return rec
}

// workYear returns the publication year, preferring issued over the
// print, online, and created dates.
func workYear(w crossrefWork) int {
	for _, d := range []crossrefDate{w.Issued, w.PublishedPrint, w.PublishedOnline, w.Created} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
			return d.DateParts[0][0]
		}
	}
	return 0
}

// CrossRef API JSON structures.
type crossrefWorkResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefSearchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	DOI             string           `json:"DOI"`
	URL             string           `json:"URL"`
	ContainerTitle  []string         `json:"container-title"`
	Issued          crossrefDate     `json:"issued"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Created         crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
