// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citecheck/internal/httputil"
	"github.com/pdiddy/citecheck/pkg/types"
)

// scholarBase is the Google Scholar search page. Declared as a var so
// tests can substitute an httptest server.
var scholarBase = "https://scholar.google.com/scholar"

// scholarUserAgent is a browser user agent. Scholar has no API and
// refuses obvious bots, which is why this source is disabled by default.
const scholarUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

var (
	bylineYear   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	titleMarkers = regexp.MustCompile(`^(\[[^\]]+\]\s*)+`)
)

// ScholarClient scrapes Google Scholar result pages. There is no
// identifier lookup, so the client only supports title search.
type ScholarClient struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// Name returns the source identifier.
func (c *ScholarClient) Name() string { return "google_scholar" }

// SearchByTitle scrapes the first result page for the title query.
func (c *ScholarClient) SearchByTitle(ctx context.Context, title string, maxResults int) ([]types.FetchedRecord, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty Google Scholar query")
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	params := url.Values{
		"q":  {title},
		"hl": {"en"},
	}

	if err := waitLimiter(ctx, c.Limiter); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", scholarUserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Google Scholar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("Google Scholar blocked the request (HTTP %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Scholar returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing Google Scholar page: %w", err)
	}
	if doc.Find("#gs_captcha_ccl").Length() > 0 {
		return nil, fmt.Errorf("Google Scholar served a CAPTCHA challenge")
	}

	var records []types.FetchedRecord
	doc.Find(".gs_ri").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if rec := resultRecord(s); rec != nil {
			records = append(records, *rec)
		}
		return len(records) < maxResults
	})
	return records, nil
}

// resultRecord converts one Scholar result block to a record, or nil for
// blocks without a usable title.
func resultRecord(s *goquery.Selection) *types.FetchedRecord {
	rec := &types.FetchedRecord{Source: "google_scholar"}

	link := s.Find(".gs_rt a").First()
	if link.Length() > 0 {
		rec.Title = strings.TrimSpace(link.Text())
		rec.URL, _ = link.Attr("href")
	} else {
		// [CITATION] entries carry no link; strip the bracket markers.
		raw := strings.TrimSpace(s.Find(".gs_rt").Text())
		rec.Title = strings.TrimSpace(titleMarkers.ReplaceAllString(raw, ""))
	}
	if rec.Title == "" {
		return nil
	}

	// The byline reads "A Vaswani, N Shazeer… - Advances in neural
	// information processing systems, 2017 - proceedings.neurips.cc".
	byline := strings.TrimSpace(s.Find(".gs_a").First().Text())
	parts := strings.Split(byline, " - ")
	if len(parts) > 0 {
		for _, name := range strings.Split(parts[0], ",") {
			name = strings.Trim(name, " .…")
			if name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
	}
	if len(parts) > 1 {
		venue := parts[1]
		if m := bylineYear.FindString(venue); m != "" {
			rec.Year = m
			venue = strings.Replace(venue, m, "", 1)
		}
		rec.Venue = strings.Trim(venue, " ,")
	}
	return rec
}
