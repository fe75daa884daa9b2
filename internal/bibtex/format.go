// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonDigitRe = regexp.MustCompile(`[^0-9]`)
)

// Format renders a fetched record as a BibTeX entry: the "what the source
// says" snippet shown next to mismatched entries in reports. CrossRef
// records and arXiv records with a journal reference render as @article,
// everything else as @misc.
func Format(rec types.FetchedRecord) string {
	entryType := "misc"
	switch rec.Source {
	case "crossref":
		entryType = "article"
	case "arxiv":
		if rec.Venue != "" {
			entryType = "article"
		}
	}

	year := strings.TrimSpace(rec.Year)
	if year == "" {
		year = "?"
	}

	lines := []string{
		fmt.Sprintf("  author = {%s}", escape(strings.Join(rec.Authors, " and "))),
		fmt.Sprintf("  title = {%s}", escape(rec.Title)),
		fmt.Sprintf("  year = {%s}", year),
	}
	if rec.Venue != "" {
		lines = append(lines, fmt.Sprintf("  journal = {%s}", escape(rec.Venue)))
	}
	if rec.DOI != "" {
		lines = append(lines, fmt.Sprintf("  doi = {%s}", escape(rec.DOI)))
	}
	if rec.URL != "" {
		lines = append(lines, fmt.Sprintf("  url = {%s}", escape(rec.URL)))
	}
	lines = append(lines, fmt.Sprintf("  note = {Fetched from %s}", rec.Source))

	return fmt.Sprintf("@%s{%s,\n%s\n}", entryType, suggestKey(rec), strings.Join(lines, ",\n"))
}

// suggestKey builds a LastnameYear cite key from the record.
func suggestKey(rec types.FetchedRecord) string {
	last := ""
	if len(rec.Authors) > 0 {
		if parts := strings.Fields(rec.Authors[0]); len(parts) > 0 {
			last = parts[len(parts)-1]
		}
	}
	last = nonAlnumRe.ReplaceAllString(last, "")

	year := nonDigitRe.ReplaceAllString(rec.Year, "")
	if len(year) > 4 {
		year = year[:4]
	}
	if year == "" {
		year = "nodate"
	}
	if last == "" {
		return "ref" + year
	}
	return last + year
}

// escape protects the BibTeX specials \ { } in field values.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	return s
}
