// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceUnable is the Source value of a verdict synthesized when no data
// source could confirm or refute a citation.
const SourceUnable = "unable"

// ComparisonResult is the scored verdict from comparing one citation against
// one fetched record. IsMatch and HasIssues are mutually exclusive: HasIssues
// covers records judged to be the same work but with field discrepancies.
type ComparisonResult struct {
	// Source names the data source the record came from, or "unable" when no
	// source produced data for the citation.
	Source string `json:"source" yaml:"source"`

	// TitleMatch reports whether the normalized titles cleared the similarity threshold.
	TitleMatch bool `json:"title_match" yaml:"title_match"`

	// AuthorMatch reports whether enough author names matched across the two lists.
	AuthorMatch bool `json:"author_match" yaml:"author_match"`

	// YearMatch reports whether the years agree within the configured tolerance.
	YearMatch bool `json:"year_match" yaml:"year_match"`

	// VenueChecked reports whether both sides carried a venue to compare;
	// VenueMatch is meaningful only when it is true.
	VenueChecked bool `json:"venue_checked" yaml:"venue_checked"`
	VenueMatch   bool `json:"venue_match" yaml:"venue_match"`

	// IsMatch reports that the record is accepted as the same work with all
	// checked fields in agreement.
	IsMatch bool `json:"is_match" yaml:"is_match"`

	// HasIssues reports that the record is still considered the same work
	// (title or DOI corroborates it) but one or more fields disagree.
	HasIssues bool `json:"has_issues" yaml:"has_issues"`

	// Confidence scores how strongly the record is believed to correspond to
	// the citation, in [0,1]. Zero for the "unable" verdict.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Issues lists human-readable descriptions of each field discrepancy.
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`

	// BibTitle and BibAuthors are the citation's side of the comparison,
	// copied for later display.
	BibTitle   string   `json:"bib_title,omitempty" yaml:"bib_title,omitempty"`
	BibAuthors []string `json:"bib_authors,omitempty" yaml:"bib_authors,omitempty"`

	// FetchedTitle, FetchedAuthors, FetchedYear, FetchedDOI, FetchedURL, and
	// FetchedVenue are the record's side, copied for later display.
	FetchedTitle   string   `json:"fetched_title,omitempty" yaml:"fetched_title,omitempty"`
	FetchedAuthors []string `json:"fetched_authors,omitempty" yaml:"fetched_authors,omitempty"`
	FetchedYear    string   `json:"fetched_year,omitempty" yaml:"fetched_year,omitempty"`
	FetchedDOI     string   `json:"fetched_doi,omitempty" yaml:"fetched_doi,omitempty"`
	FetchedURL     string   `json:"fetched_url,omitempty" yaml:"fetched_url,omitempty"`
	FetchedVenue   string   `json:"fetched_venue,omitempty" yaml:"fetched_venue,omitempty"`
}

// Unable reports whether this verdict is the synthesized no-data verdict.
func (r ComparisonResult) Unable() bool {
	return r.Source == SourceUnable
}

// DuplicateGroup is a cluster of citations within one batch judged to
// reference the same underlying work. Groups always hold at least two
// entries, in input order, and are immutable once computed.
type DuplicateGroup struct {
	// Entries are the clustered citations, in batch order.
	Entries []Citation `json:"entries" yaml:"entries"`

	// Score is the mean pairwise combined similarity across the group, in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Reason is a short human-readable explanation (e.g. "Nearly identical titles").
	Reason string `json:"reason" yaml:"reason"`
}

// Keys returns the cite keys of the group's entries, in order.
func (g DuplicateGroup) Keys() []string {
	keys := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		keys[i] = e.Key
	}
	return keys
}

// EntryReport pairs one citation with the winning verdict for it. Comparison
// is always populated: when no source produced data, the "unable" verdict
// stands in, so report rendering never special-cases a missing comparison.
type EntryReport struct {
	// Citation is the verified entry.
	Citation Citation `json:"citation" yaml:"citation"`

	// Comparison is the winning verdict for the citation.
	Comparison ComparisonResult `json:"comparison" yaml:"comparison"`
}

// Status returns the report's aggregate bucket: "verified" when the verdict
// matched, "warning" when the work was found with discrepancies, "error"
// otherwise.
func (r EntryReport) Status() string {
	switch {
	case r.Comparison.IsMatch:
		return "verified"
	case r.Comparison.HasIssues:
		return "warning"
	default:
		return "error"
	}
}

// VerificationResult is the outcome of one verification run. It is created
// once per run and never mutated afterwards.
type VerificationResult struct {
	// RunID uniquely identifies this verification run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Reports holds one entry per citation, in completion order. Callers
	// needing input order re-sort by citation key.
	Reports []EntryReport `json:"reports" yaml:"reports"`

	// Duplicates holds the duplicate groups found in the batch, sorted by
	// score descending.
	Duplicates []DuplicateGroup `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Verified, Warnings, and Errors count reports by status;
	// Verified+Warnings+Errors always equals Total.
	Verified int `json:"verified" yaml:"verified"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Total    int `json:"total" yaml:"total"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// SuccessRate returns the share of verified citations as a percentage,
// 0 for an empty result.
func (r *VerificationResult) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Verified) / float64(r.Total) * 100
}
