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

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexClient queries the OpenAlex API. Setting Mailto joins the
// polite pool.
type OpenAlexClient struct {
	Client    *http.Client
	UserAgent string
	Mailto    string
	Limiter   *rate.Limiter
}

// Name returns the source identifier.
func (c *OpenAlexClient) Name() string { return "openalex" }

// FetchByIdentifier looks up a work by DOI through OpenAlex's doi.org
// alias. Returns nil, nil when the DOI is unknown.
func (c *OpenAlexClient) FetchByIdentifier(ctx context.Context, doi string) (*types.FetchedRecord, error) {
	doi = types.NormalizedDOI(doi)
	if doi == "" {
		return nil, fmt.Errorf("empty DOI")
	}

	reqURL := openAlexAPIBase + "/https://doi.org/" + doi
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
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return openAlexRecord(work), nil
}

// SearchByTitle queries OpenAlex full-text search restricted by the
// title text and returns candidates in relevance order.
func (c *OpenAlexClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"search":   {title},
		"per_page": {strconv.Itoa(maxResults)},
		"page":     {"1"},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	resp, err := c.get(ctx, openAlexAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	var records []types.FetchedRecord
	for _, work := range oar.Results {
		if rec := openAlexRecord(work); rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (c *OpenAlexClient) get(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	return resp, nil
}

// openAlexRecord converts an OpenAlex work to a record, or nil when the
// work carries no title.
func openAlexRecord(w openAlexWork) *types.FetchedRecord {
	if w.Title == "" {
		return nil
	}

	rec := &types.FetchedRecord{
		Source: "openalex",
		Title:  w.Title,
		DOI:    types.NormalizedDOI(w.DOI),
		URL:    w.ID,
		Venue:  w.PrimaryLocation.Source.DisplayName,
	}
	if w.PublicationYear > 0 {
		rec.Year = strconv.Itoa(w.PublicationYear)
	}
	for _, authorship := range w.Authorships {
		if authorship.Author.DisplayName != "" {
			rec.Authors = append(rec.Authors, authorship.Author.DisplayName)
		}
	}
	return rec
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source struct {
		DisplayName string `json:"display_name"`
	} `json:"source"`
}
