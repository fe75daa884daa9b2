// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders verification results for people and machines:
// a Markdown report for review, a plain table for the terminal, and JSON
// or YAML for downstream tooling.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citecheck/internal/bibtex"
	"github.com/pdiddy/citecheck/internal/duplicates"
	"github.com/pdiddy/citecheck/pkg/types"
)

// now is split out for test substitution.
var now = time.Now

// preprintKeywords mark venues that distribute unreviewed manuscripts.
var preprintKeywords = []string{
	"arxiv", "biorxiv", "medrxiv", "ssrn", "preprint",
	"openreview", "techreport", "technical report", "working paper",
}

// Markdown renders the full human-readable report. files names the input
// bibliographies, shown in the header.
func Markdown(result *types.VerificationResult, files []string, cfg types.ReportConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Bibliography Verification Report\n\n")
	fmt.Fprintf(&b, "**Run:** `%s`\n", result.RunID)
	fmt.Fprintf(&b, "**Generated:** %s\n", now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Elapsed:** %s\n", result.Elapsed.Round(time.Millisecond))
	if len(files) > 0 {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = "`" + filepath.Base(f) + "`"
		}
		fmt.Fprintf(&b, "**Input:** %s\n", strings.Join(names, ", "))
	}
	b.WriteString("\n> This report was produced by an automated check. Verify reported issues before editing entries.\n\n")

	writeSummary(&b, result, cfg)
	writeIssues(&b, result)
	if cfg.ShowVerified {
		writeVerified(&b, result)
	}

	fmt.Fprintf(&b, "---\n\nGenerated by citecheck on %s\n", now().Format("2006-01-02 15:04:05"))
	return b.String()
}

func writeSummary(b *strings.Builder, result *types.VerificationResult, cfg types.ReportConfig) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(b, "| Total entries | %d |\n", result.Total)
	fmt.Fprintf(b, "| Verified | %d (%.1f%%) |\n", result.Verified, result.SuccessRate())
	fmt.Fprintf(b, "| With warnings | %d |\n", result.Warnings)
	fmt.Fprintf(b, "| Unable to verify | %d |\n", result.Errors)
	fmt.Fprintf(b, "| Duplicate groups | %d |\n", len(result.Duplicates))

	if cfg.CheckPreprintRatio && result.Total > 0 {
		count := 0
		for _, r := range result.Reports {
			if isPreprint(r.Citation) {
				count++
			}
		}
		share := float64(count) / float64(result.Total)
		fmt.Fprintf(b, "| Preprints | %d (%.1f%%) |\n", count, share*100)
		b.WriteString("\n")
		if share > cfg.PreprintThreshold {
			fmt.Fprintf(b, "> **High preprint ratio:** %.1f%% of entries resolve to preprint venues. Check whether published versions exist.\n\n", share*100)
		}
	} else {
		b.WriteString("\n")
	}
}

func writeIssues(b *strings.Builder, result *types.VerificationResult) {
	warnings := filterByStatus(result.Reports, "warning")
	errors := filterByStatus(result.Reports, "error")

	if len(result.Duplicates) == 0 && len(warnings) == 0 && len(errors) == 0 {
		b.WriteString("## Issues\n\nNo issues found.\n\n")
		return
	}

	b.WriteString("## Issues\n\n")

	if len(result.Duplicates) > 0 {
		b.WriteString("### Duplicate entries\n\n")
		for i, g := range result.Duplicates {
			fmt.Fprintf(b, "#### Group %d (%.0f%% similar)\n\n%s\n\n", i+1, g.Score*100, g.Reason)
			b.WriteString("| Key | Title | Year |\n")
			b.WriteString("|-----|-------|------|\n")
			for _, e := range g.Entries {
				fmt.Fprintf(b, "| `%s` | %s | %s |\n", e.Key, e.Title, e.Year)
			}
			b.WriteString("\n")
		}
	}

	if len(warnings) > 0 {
		b.WriteString("### Metadata issues\n\n")
		for _, r := range warnings {
			writeEntryDetail(b, r, true)
		}
	}

	if len(errors) > 0 {
		b.WriteString("### Unverifiable entries\n\n")
		for _, r := range errors {
			writeEntryDetail(b, r, false)
		}
	}
}

// writeEntryDetail renders one problem entry: its issues and, when a source
// produced data, the suggested entry built from that source's record.
func writeEntryDetail(b *strings.Builder, r types.EntryReport, suggest bool) {
	fmt.Fprintf(b, "#### `%s`\n\n", r.Citation.Key)
	fmt.Fprintf(b, "**Title:** %s\n\n", r.Citation.Title)
	cmp := r.Comparison
	if !cmp.Unable() {
		fmt.Fprintf(b, "- **Source:** %s (confidence %.0f%%)\n", cmp.Source, cmp.Confidence*100)
	}
	for _, issue := range cmp.Issues {
		fmt.Fprintf(b, "- %s\n", issue)
	}
	b.WriteString("\n")

	if suggest && !cmp.Unable() {
		fmt.Fprintf(b, "Suggested entry from %s:\n\n", cmp.Source)
		b.WriteString("```bibtex\n")
		b.WriteString(bibtex.Format(fetchedRecord(cmp)))
		b.WriteString("\n```\n\n")
	}
}

func writeVerified(b *strings.Builder, result *types.VerificationResult) {
	verified := filterByStatus(result.Reports, "verified")

	b.WriteString("## Verified entries\n\n")
	if len(verified) == 0 {
		b.WriteString("No verified entries.\n\n")
		return
	}

	fmt.Fprintf(b, "Found **%d** entries with matching metadata.\n\n", len(verified))
	b.WriteString("<details>\n<summary>Show verified entries</summary>\n\n")
	b.WriteString("| Key | Source | Confidence |\n")
	b.WriteString("|-----|--------|------------|\n")
	for _, r := range verified {
		fmt.Fprintf(b, "| `%s` | %s | %.0f%% |\n", r.Citation.Key, r.Comparison.Source, r.Comparison.Confidence*100)
	}
	b.WriteString("\n</details>\n\n")
}

// fetchedRecord rebuilds the source's record from the comparison verdict,
// for rendering the suggested entry.
func fetchedRecord(cmp types.ComparisonResult) types.FetchedRecord {
	return types.FetchedRecord{
		Source:  cmp.Source,
		Title:   cmp.FetchedTitle,
		Authors: cmp.FetchedAuthors,
		Year:    cmp.FetchedYear,
		DOI:     cmp.FetchedDOI,
		URL:     cmp.FetchedURL,
		Venue:   cmp.FetchedVenue,
	}
}

// filterByStatus returns the reports in the given status bucket, sorted by
// cite key. Reports arrive in completion order, so every rendering sorts.
func filterByStatus(reports []types.EntryReport, status string) []types.EntryReport {
	var out []types.EntryReport
	for _, r := range reports {
		if r.Status() == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Citation.Key < out[j].Citation.Key })
	return out
}

// isPreprint reports whether the citation points at an unreviewed
// manuscript: an arXiv id, a preprint-flavored venue, or a techreport-like
// entry kind describing one.
func isPreprint(c types.Citation) bool {
	if c.ArxivID != "" {
		return true
	}
	venue := strings.ToLower(c.Journal + " " + c.Booktitle + " " + c.Publisher)
	kind := strings.ToLower(c.Type)
	if kind == "techreport" || kind == "unpublished" || kind == "misc" {
		if containsAny(venue+" "+kind, preprintKeywords) {
			return true
		}
	}
	return containsAny(venue, preprintKeywords)
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// FormatTable writes a per-entry summary table to w, for terminal output.
func FormatTable(result *types.VerificationResult, w io.Writer) {
	reports := make([]types.EntryReport, len(result.Reports))
	copy(reports, result.Reports)
	sort.Slice(reports, func(i, j int) bool { return reports[i].Citation.Key < reports[j].Citation.Key })

	fmt.Fprintf(w, "%-28s  %-8s  %-16s  %-5s  %s\n", "Key", "Status", "Source", "Conf", "Issues")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range reports {
		issue := ""
		if n := len(r.Comparison.Issues); n > 0 {
			issue = truncate(r.Comparison.Issues[0], 50)
			if n > 1 {
				issue = fmt.Sprintf("%s (+%d more)", issue, n-1)
			}
		}
		fmt.Fprintf(w, "%-28s  %-8s  %-16s  %4.0f%%  %s\n",
			truncate(r.Citation.Key, 28), r.Status(), r.Comparison.Source,
			r.Comparison.Confidence*100, issue)
	}

	fmt.Fprintf(w, "\n%d verified, %d with warnings, %d unverifiable out of %d entries (%.1f%% success)\n",
		result.Verified, result.Warnings, result.Errors, result.Total, result.SuccessRate())

	if len(result.Duplicates) > 0 {
		fmt.Fprintf(w, "\n%d possible duplicate group(s):\n", len(result.Duplicates))
		for _, g := range result.Duplicates {
			fmt.Fprintf(w, "  %s\n", duplicates.Describe(g))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// JSON renders the result as indented JSON.
func JSON(result *types.VerificationResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// YAML renders the result as YAML.
func YAML(result *types.VerificationResult) ([]byte, error) {
	data, err := yaml.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling YAML: %w", err)
	}
	return data, nil
}
