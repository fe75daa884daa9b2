// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/httputil"
	"github.com/pdiddy/citecheck/pkg/types"
)

// dblpAPIBase is the DBLP publication search endpoint. Declared as a var
// so tests can substitute an httptest server.
var dblpAPIBase = "https://dblp.org/search/publ/api"

// dblpHomonym matches the numeric disambiguation suffix DBLP appends to
// author names ("Wei Wang 0001").
var dblpHomonym = regexp.MustCompile(`\s+\d{4}$`)

// DblpClient queries the DBLP search API. DBLP has no identifier lookup,
// so the client only supports title search.
type DblpClient struct {
	Client    *http.Client
	UserAgent string
	Limiter   *rate.Limiter
}

// Name returns the source identifier.
func (c *DblpClient) Name() string { return "dblp" }

// SearchByTitle queries DBLP and returns candidates in relevance order.
func (c *DblpClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty DBLP query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"q":      {title},
		"format": {"json"},
		"h":      {strconv.Itoa(maxResults)},
	}

	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dblpAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("DBLP API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DBLP API returned HTTP %d", resp.StatusCode)
	}

	var dr dblpResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("parsing DBLP response: %w", err)
	}

	var records []types.FetchedRecord
	for _, hit := range dr.Result.Hits.Hit {
		if rec := hitRecord(hit.Info); rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// hitRecord converts a DBLP hit to a record, or nil when the hit carries
// no title.
func hitRecord(info dblpInfo) *types.FetchedRecord {
	if info.Title == "" {
		return nil
	}

	rec := &types.FetchedRecord{
		Source: "dblp",
		Title:  strings.TrimSuffix(info.Title, "."),
		Year:   info.Year,
		DOI:    info.DOI,
		URL:    info.EE,
		Venue:  string(info.Venue),
	}
	if rec.URL == "" {
		rec.URL = info.URL
	}
	for _, a := range info.Authors.Author {
		name := dblpHomonym.ReplaceAllString(a.Text, "")
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
	}
	return rec
}

// DBLP API JSON structures. The author list is a single object rather
// than an array when a publication has exactly one author, so it decodes
// through a tolerant wrapper.
type dblpResponse struct {
	Result struct {
		Hits struct {
			Hit []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpHit struct {
	Info dblpInfo `json:"info"`
}

type dblpInfo struct {
	Title   string         `json:"title"`
	Authors dblpAuthorList `json:"authors"`
	Venue   dblpVenue      `json:"venue"`
	Year    string         `json:"year"`
	DOI     string         `json:"doi"`
	EE      string         `json:"ee"`
	URL     string         `json:"url"`
}

type dblpAuthorList struct {
	Author []dblpAuthor `json:"author"`
}

type dblpAuthor struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts both the array form and the bare-object form DBLP
// uses for single authors.
func (l *dblpAuthorList) UnmarshalJSON(data []byte) error {
	type plain dblpAuthorList
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*l = dblpAuthorList(p)
		return nil
	}

	var single struct {
		Author dblpAuthor `json:"author"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	l.Author = []dblpAuthor{single.Author}
	return nil
}

// UnmarshalJSON accepts both a bare name and the object form.
func (a *dblpAuthor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		a.Text = s
		return nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Text = obj.Text
	return nil
}

// dblpVenue decodes DBLP's venue field, which is a string for most
// records and an array for multi-venue entries.
type dblpVenue string

func (v *dblpVenue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = dblpVenue(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(list) > 0 {
		*v = dblpVenue(list[0])
	}
	return nil
}
