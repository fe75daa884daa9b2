// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare scores fetched metadata records against citations. The
// comparator is a pure function of its inputs: no I/O, no shared state.
package compare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Field weights for the confidence score. Title carries the most weight:
// it is the primary identity signal and a title mismatch is never
// outvoted by the other fields.
const (
	titleWeight  = 0.45
	authorWeight = 0.25
	yearWeight   = 0.15
	venueWeight  = 0.15
)

var yearDigits = regexp.MustCompile(`\d{4}`)

// Compare scores one fetched record against one citation and returns the
// verdict. source names the data source for display and aggregation.
func Compare(c types.Citation, rec types.FetchedRecord, source string, cfg types.CompareConfig) types.ComparisonResult {
	res := types.ComparisonResult{
		Source:         source,
		BibTitle:       c.Title,
		BibAuthors:     normalize.SplitAuthors(c.Author),
		FetchedTitle:   rec.Title,
		FetchedAuthors: rec.Authors,
		FetchedYear:    rec.Year,
		FetchedDOI:     rec.DOI,
		FetchedURL:     rec.URL,
		FetchedVenue:   rec.Venue,
	}

	titleSim := normalize.SimilarityRatio(c.Title, rec.Title)
	res.TitleMatch = titleSim >= cfg.TitleThreshold
	if !res.TitleMatch {
		res.Issues = append(res.Issues, fmt.Sprintf("Title mismatch (similarity %.2f): %q vs %q", titleSim, c.Title, rec.Title))
	}

	bibAuthors := normalize.AuthorList(c.Author)
	fetchedAuthors := normalizeNames(rec.Authors)
	overlap := authorOverlap(bibAuthors, fetchedAuthors, cfg.NameSimilarity)
	res.AuthorMatch = overlap >= cfg.AuthorThreshold
	if !res.AuthorMatch {
		res.Issues = append(res.Issues, fmt.Sprintf("Author mismatch (%.0f%% of names matched): %q vs %q",
			overlap*100, strings.Join(res.BibAuthors, "; "), strings.Join(rec.Authors, "; ")))
	}

	yearScore := 1.0
	res.YearMatch = true
	bibYear, bibOK := parseYear(c.Year)
	fetchedYear, fetchedOK := parseYear(rec.Year)
	if bibOK && fetchedOK {
		diff := bibYear - fetchedYear
		if diff < 0 {
			diff = -diff
		}
		if diff > cfg.YearTolerance {
			res.YearMatch = false
			yearScore = 0
			res.Issues = append(res.Issues, fmt.Sprintf("Year mismatch: %s vs %s", c.Year, rec.Year))
		}
	}

	weighted := titleWeight*titleSim + authorWeight*overlap + yearWeight*yearScore
	total := titleWeight + authorWeight + yearWeight
	if c.Venue() != "" && rec.Venue != "" {
		venueSim := normalize.SimilarityRatio(c.Venue(), rec.Venue)
		res.VenueChecked = true
		res.VenueMatch = venueSim >= cfg.TitleThreshold
		weighted += venueWeight * venueSim
		total += venueWeight
		if !res.VenueMatch {
			res.Issues = append(res.Issues, fmt.Sprintf("Venue mismatch: %q vs %q", c.Venue(), rec.Venue))
		}
	}
	res.Confidence = weighted / total

	doiAgree := types.NormalizedDOI(c.DOI) != "" && types.NormalizedDOI(c.DOI) == types.NormalizedDOI(rec.DOI)
	allMatched := res.TitleMatch && res.AuthorMatch && res.YearMatch && (!res.VenueChecked || res.VenueMatch)
	found := res.TitleMatch || doiAgree

	res.IsMatch = allMatched && res.Confidence >= cfg.MinConfidence
	res.HasIssues = !res.IsMatch && found
	return res
}

// Unable synthesizes the verdict for a citation no source could resolve.
// It carries zero confidence and sets neither IsMatch nor HasIssues.
func Unable(c types.Citation, reason string) types.ComparisonResult {
	return types.ComparisonResult{
		Source:     types.SourceUnable,
		BibTitle:   c.Title,
		BibAuthors: normalize.SplitAuthors(c.Author),
		Issues:     []string{reason},
	}
}

// normalizeNames canonicalizes a fetched author list, dropping names that
// normalize to empty.
func normalizeNames(names []string) []string {
	var out []string
	for _, n := range names {
		if norm := normalize.AuthorName(n); norm != "" {
			out = append(out, norm)
		}
	}
	return out
}

// NamesMatch reports whether two canonicalized author names refer to the
// same person: equal, one containing the other (family-only forms), or
// similarity at or above threshold.
func NamesMatch(a, b string, threshold float64) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return normalize.SimilarityRatio(a, b) >= threshold
}

// authorOverlap returns the fraction of matched names measured against the
// longer list. Two empty lists overlap fully; exactly one empty list not at
// all. Each fetched name is consumed by at most one citation name.
func authorOverlap(bib, fetched []string, nameThreshold float64) float64 {
	if len(bib) == 0 && len(fetched) == 0 {
		return 1
	}
	if len(bib) == 0 || len(fetched) == 0 {
		return 0
	}
	used := make([]bool, len(fetched))
	matched := 0
	for _, a := range bib {
		for i, b := range fetched {
			if used[i] {
				continue
			}
			if NamesMatch(a, b, nameThreshold) {
				used[i] = true
				matched++
				break
			}
		}
	}
	longer := len(bib)
	if len(fetched) > longer {
		longer = len(fetched)
	}
	return float64(matched) / float64(longer)
}

// parseYear extracts a four-digit year from s. Bib entries and sources wrap
// years in assorted decorations, so the first four-digit run wins.
func parseYear(s string) (int, bool) {
	m := yearDigits.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return y, true
}
