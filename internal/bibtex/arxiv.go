// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citecheck/pkg/types"
)

// arXiv identifier forms. New-form ids look like 2301.00001 or 1706.03762v5;
// old-form ids carry an archive prefix like hep-th/9901001 or math.GT/0309136.
// Bare ids are only trusted in fields that announce them (eprint, arxiv, or
// text mentioning arXiv): a DOI suffix can look exactly like a new-form id.
var (
	arxivNewRe = regexp.MustCompile(`\d{4}\.\d{4,5}(?:v\d+)?`)
	arxivOldRe = regexp.MustCompile(`[a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?`)
	arxivURLRe = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/(\d{4}\.\d{4,5}(?:v\d+)?|[a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)`)
)

// ExtractArxivID pulls an arXiv identifier out of a citation's fields.
// Explicit eprint and arxiv fields win, then arxiv.org URLs, then a scan of
// the journal and note text for ids written inline ("arXiv preprint
// arXiv:1706.03762"). The id is returned with any version suffix intact, or
// empty when the entry carries none.
func ExtractArxivID(c types.Citation) string {
	for _, field := range []string{"eprint", "arxiv"} {
		if id := parseArxivID(c.Raw[field]); id != "" {
			return id
		}
	}
	if c.URL != "" {
		if m := arxivURLRe.FindStringSubmatch(c.URL); m != nil {
			return m[1]
		}
	}
	if strings.Contains(strings.ToLower(c.Journal), "arxiv") {
		if id := parseArxivID(c.Journal); id != "" {
			return id
		}
	}
	if note := c.Raw["note"]; strings.Contains(strings.ToLower(note), "arxiv") {
		return parseArxivID(note)
	}
	return ""
}

// parseArxivID finds the first arXiv id in free text, trying the new form
// before the old.
func parseArxivID(text string) string {
	if text == "" {
		return ""
	}
	if m := arxivNewRe.FindString(text); m != "" {
		return m
	}
	return arxivOldRe.FindString(text)
}
