// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/httputil"
	"github.com/pdiddy/citecheck/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	Client    *http.Client
	UserAgent string
	Limiter   *rate.Limiter
}

// Name returns the source identifier.
func (c *ArxivClient) Name() string { return "arxiv" }

// FetchByIdentifier looks up a single paper by arXiv ID. The optional
// "arXiv:" prefix is stripped; a version suffix ("v2") is passed through,
// the API resolves it. Returns nil, nil when the ID is unknown.
func (c *ArxivClient) FetchByIdentifier(ctx context.Context, id string) (*types.FetchedRecord, error) {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "arXiv:")
	id = strings.TrimPrefix(id, "arxiv:")
	if id == "" {
		return nil, fmt.Errorf("empty arXiv ID")
	}

	params := url.Values{
		"id_list":     {id},
		"max_results": {"1"},
	}
	feed, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	for _, entry := range feed.Entries {
		if rec := entryRecord(entry); rec != nil {
			return rec, nil
		}
	}
	return nil, nil
}

// SearchByTitle queries arXiv with a quoted title search and returns the
// candidate records in relevance order.
func (c *ArxivClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	cleaned := cleanArxivTitle(title)
	if cleaned == "" {
		return nil, fmt.Errorf("empty arXiv title query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"search_query": {fmt.Sprintf("ti:%q", cleaned)},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
	}
	feed, err := c.query(ctx, params)
	if err != nil {
		return nil, err
	}

	var records []types.FetchedRecord
	for _, entry := range feed.Entries {
		if rec := entryRecord(entry); rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (c *ArxivClient) query(ctx context.Context, params url.Values) (*arxivFeed, error) {
	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

// cleanArxivTitle strips characters that break the arXiv query syntax,
// leaving bare words for the quoted ti: phrase.
func cleanArxivTitle(title string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, title)
	return strings.Join(strings.Fields(mapped), " ")
}

// entryRecord converts an Atom entry to a record, or nil for the error
// pseudo-entry arXiv returns for unknown IDs.
func entryRecord(entry arxivEntry) *types.FetchedRecord {
	arxivID := extractArxivID(entry.ID)
	if arxivID == "" {
		return nil
	}

	rec := &types.FetchedRecord{
		Source:  "arxiv",
		Title:   strings.Join(strings.Fields(entry.Title), " "),
		DOI:     entry.DOI,
		ArxivID: arxivID,
		URL:     "https://arxiv.org/abs/" + arxivID,
		Venue:   strings.TrimSpace(entry.JournalRef),
	}
	for _, a := range entry.Authors {
		rec.Authors = append(rec.Authors, strings.TrimSpace(a.Name))
	}
	if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
		rec.Year = strconv.Itoa(t.Year())
	}
	return rec
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Published  string        `xml:"published"`
	DOI        string        `xml:"doi"`
	JournalRef string        `xml:"journal_ref"`
	Authors    []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
