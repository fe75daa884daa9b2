// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citecheck pipeline:
// parsed citations, fetched metadata records, comparison verdicts, duplicate
// groups, and configuration. See docs/ARCHITECTURE.md § Data Structures.
package types

import "strings"

// Citation is one parsed bibliographic entry from the input batch. It is
// immutable after parsing: the verification core only reads it and produces
// new result values.
type Citation struct {
	// Key is the entry's cite key, unique within the batch (e.g. "vaswani2017").
	Key string `json:"key" yaml:"key"`

	// Type is the BibTeX entry kind (e.g. "article", "inproceedings").
	Type string `json:"type" yaml:"type"`

	// Title is the title field as written in the entry, LaTeX markup included.
	Title string `json:"title" yaml:"title"`

	// Author is the raw author field: names joined with " and ".
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Year is the publication year as written (kept as a string; entries and
	// sources disagree on formats).
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the digital object identifier, if present.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier, extracted from the eprint field, URL,
	// or journal/note text (e.g. "1706.03762" or "cs.CL/0112017").
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// Journal is the journal field for article-like entries.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Booktitle is the proceedings or collection title for inproceedings-like entries.
	Booktitle string `json:"booktitle,omitempty" yaml:"booktitle,omitempty"`

	// Publisher is the publisher field.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`

	// Volume, Number, and Pages carry the usual locator fields.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Number string `json:"number,omitempty" yaml:"number,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// URL is the url field, if present.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Abstract is the abstract field, if present.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Raw maps every field name to its value as parsed, including fields not
	// broken out above (note, eprint, month, ...). Field names are lowercase.
	Raw map[string]string `json:"raw,omitempty" yaml:"raw,omitempty"`

	// RawEntry is the entry's original source text, brace to brace, used when
	// rewriting or displaying the untouched entry.
	RawEntry string `json:"raw_entry,omitempty" yaml:"raw_entry,omitempty"`
}

// Venue returns the citation's publication venue: the journal if set,
// otherwise the booktitle, otherwise empty.
func (c Citation) Venue() string {
	if c.Journal != "" {
		return c.Journal
	}
	return c.Booktitle
}

// FetchedRecord is canonical metadata returned by one external source for one
// lookup. A nil record means the source found nothing.
type FetchedRecord struct {
	// Source identifies the data source that produced this record
	// (e.g. "arxiv", "crossref", "semantic_scholar").
	Source string `json:"source" yaml:"source"`

	// Title is the work's title as reported by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists author names in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year as reported, empty when unknown.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the work's DOI without a resolver prefix, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID is the arXiv identifier, if the source reports one.
	ArxivID string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	// URL is a landing-page link for the record.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Venue is the journal, proceedings, or repository name, if reported.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// NormalizedDOI returns the DOI lowercased with any https://doi.org/ or
// doi: prefix removed, for equality checks across sources.
func NormalizedDOI(doi string) string {
	d := strings.TrimSpace(strings.ToLower(doi))
	d = strings.TrimPrefix(d, "https://doi.org/")
	d = strings.TrimPrefix(d, "http://doi.org/")
	d = strings.TrimPrefix(d, "doi:")
	return d
}
