// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/citecheck/pkg/types"
)

func sampleResult() *types.VerificationResult {
	verified := types.EntryReport{
		Citation: types.Citation{
			Key:     "vaswani2017",
			Type:    "inproceedings",
			Title:   "Attention Is All You Need",
			ArxivID: "1706.03762",
		},
		Comparison: types.ComparisonResult{
			Source:      "arxiv",
			TitleMatch:  true,
			AuthorMatch: true,
			YearMatch:   true,
			IsMatch:     true,
			Confidence:  1.0,
		},
	}
	warning := types.EntryReport{
		Citation: types.Citation{
			Key:     "devlin2019",
			Type:    "article",
			Title:   "BERT: Pre-training of Deep Bidirectional Transformers",
			Journal: "arXiv preprint arXiv:1810.04805",
		},
		Comparison: types.ComparisonResult{
			Source:         "crossref",
			TitleMatch:     true,
			AuthorMatch:    true,
			YearMatch:      false,
			HasIssues:      true,
			Confidence:     0.82,
			Issues:         []string{"Year mismatch: 2018 vs 2019"},
			FetchedTitle:   "BERT: Pre-training of Deep Bidirectional Transformers",
			FetchedAuthors: []string{"Jacob Devlin"},
			FetchedYear:    "2019",
			FetchedDOI:     "10.18653/v1/n19-1423",
			FetchedVenue:   "NAACL",
		},
	}
	unable := types.EntryReport{
		Citation: types.Citation{
			Key:   "ghost2030",
			Type:  "misc",
			Title: "A Paper Nobody Indexed",
		},
		Comparison: types.ComparisonResult{
			Source: types.SourceUnable,
			Issues: []string{"Unable to find this paper in any data source"},
		},
	}

	return &types.VerificationResult{
		RunID: "run-123",
		// Completion order is scrambled on purpose; rendering sorts by key.
		Reports: []types.EntryReport{warning, unable, verified},
		Duplicates: []types.DuplicateGroup{{
			Entries: []types.Citation{
				{Key: "vaswani2017", Title: "Attention Is All You Need", Year: "2017"},
				{Key: "vaswani2017b", Title: "Attention is all you need", Year: "2017"},
			},
			Score:  1.0,
			Reason: "Nearly identical titles",
		}},
		Verified: 1,
		Warnings: 1,
		Errors:   1,
		Total:    3,
		Elapsed:  2500 * time.Millisecond,
	}
}

func defaultReportConfig() types.ReportConfig {
	return types.ReportConfig{
		ShowVerified:       true,
		CheckPreprintRatio: true,
		PreprintThreshold:  0.5,
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleResult(), []string{"testdata/refs.bib"}, defaultReportConfig())

	for _, want := range []string{
		"# Bibliography Verification Report",
		"**Run:** `run-123`",
		"**Elapsed:** 2.5s",
		"**Input:** `refs.bib`",
		"| Total entries | 3 |",
		"| Verified | 1 (33.3%) |",
		"| Preprints | 2 (66.7%) |",
		"**High preprint ratio:** 66.7%",
		"### Duplicate entries",
		"#### Group 1 (100% similar)",
		"| `vaswani2017b` | Attention is all you need | 2017 |",
		"### Metadata issues",
		"#### `devlin2019`",
		"Year mismatch: 2018 vs 2019",
		"Suggested entry from crossref:",
		"```bibtex",
		"@article{Devlin2019,",
		"  journal = {NAACL}",
		"### Unverifiable entries",
		"#### `ghost2030`",
		"Unable to find this paper in any data source",
		"## Verified entries",
		"| `vaswani2017` | arxiv | 100% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q\n%s", want, md)
		}
	}
}

func TestMarkdownHidesVerifiedWhenConfigured(t *testing.T) {
	cfg := defaultReportConfig()
	cfg.ShowVerified = false

	md := Markdown(sampleResult(), nil, cfg)
	if strings.Contains(md, "## Verified entries") {
		t.Error("verified section rendered with ShowVerified off")
	}
}

func TestMarkdownNoIssues(t *testing.T) {
	result := sampleResult()
	result.Reports = result.Reports[2:3] // the verified entry only
	result.Duplicates = nil
	result.Verified, result.Warnings, result.Errors, result.Total = 1, 0, 0, 1

	md := Markdown(result, nil, defaultReportConfig())
	if !strings.Contains(md, "No issues found.") {
		t.Errorf("expected the no-issues notice:\n%s", md)
	}
}

func TestMarkdownUnableEntriesGetNoSuggestion(t *testing.T) {
	md := Markdown(sampleResult(), nil, defaultReportConfig())
	if strings.Contains(md, "Suggested entry from unable") {
		t.Error("suggestion rendered for an unverifiable entry")
	}
}

func TestMarkdownTimestamp(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }
	defer func() { now = orig }()

	md := Markdown(sampleResult(), nil, types.ReportConfig{})
	if !strings.Contains(md, "**Generated:** 2026-03-14 09:26:53") {
		t.Errorf("timestamp not rendered:\n%s", md)
	}
	// Preprint checking is off in the zero config.
	if strings.Contains(md, "| Preprints |") {
		t.Error("preprint row rendered with CheckPreprintRatio off")
	}
}

func TestIsPreprint(t *testing.T) {
	tests := []struct {
		name string
		c    types.Citation
		want bool
	}{
		{"arxiv id", types.Citation{ArxivID: "1706.03762"}, true},
		{"arxiv journal", types.Citation{Type: "article", Journal: "arXiv preprint arXiv:1706.03762"}, true},
		{"ssrn journal", types.Citation{Type: "article", Journal: "SSRN Electronic Journal"}, true},
		{"openreview misc", types.Citation{Type: "misc", Booktitle: "OpenReview.net"}, true},
		{"technical report", types.Citation{Type: "techreport", Publisher: "MIT Technical Report Series"}, true},
		{"journal article", types.Citation{Type: "article", Journal: "Journal of Machine Learning Research"}, false},
		{"conference paper", types.Citation{Type: "inproceedings", Booktitle: "Advances in Neural Information Processing Systems"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPreprint(tt.c); got != tt.want {
				t.Errorf("isPreprint = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(sampleResult(), &buf)
	out := buf.String()

	if !strings.Contains(out, "1 verified, 1 with warnings, 1 unverifiable out of 3 entries (33.3% success)") {
		t.Errorf("summary line missing:\n%s", out)
	}
	if !strings.Contains(out, "1 possible duplicate group(s):") {
		t.Errorf("duplicates line missing:\n%s", out)
	}

	// Rows are sorted by key.
	iDevlin := strings.Index(out, "devlin2019")
	iGhost := strings.Index(out, "ghost2030")
	iVaswani := strings.Index(out, "vaswani2017")
	if iDevlin < 0 || iGhost < 0 || iVaswani < 0 || !(iDevlin < iGhost && iGhost < iVaswani) {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestEncodings(t *testing.T) {
	result := sampleResult()

	jsonData, err := JSON(result)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(string(jsonData), `"run_id": "run-123"`) {
		t.Errorf("JSON missing run id:\n%s", jsonData)
	}

	yamlData, err := YAML(result)
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if !strings.Contains(string(yamlData), "run_id: run-123") {
		t.Errorf("YAML missing run id:\n%s", yamlData)
	}
}
