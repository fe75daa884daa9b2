// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize provides pure text canonicalization and similarity
// functions for comparing bibliographic metadata. All functions are
// stateless and safe for concurrent use.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ligatures transliterates characters that canonical decomposition leaves
// intact but that bibliographic names use routinely.
var ligatures = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ß", "ss",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"ł", "l", "Ł", "L",
)

// foldASCII decomposes s, strips combining marks, and drops anything left
// outside ASCII, approximating a transliteration to the base alphabet.
func foldASCII(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripPunct removes everything except letters, digits, underscores, and
// whitespace. Removed characters leave no gap, so hyphenated words compress
// into one token.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapse rejoins s with single spaces and no leading or trailing blanks.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ForComparison runs the full canonicalization pipeline: strip LaTeX
// markup, fold to ASCII, lowercase, strip punctuation, collapse whitespace.
// Applying it twice yields the same result as applying it once.
func ForComparison(s string) string {
	if s == "" {
		return ""
	}
	s = StripLatex(s)
	s = foldASCII(s)
	s = strings.ToLower(s)
	s = stripPunct(s)
	return collapse(s)
}

// AuthorName canonicalizes one author name. A name written "Family, Given"
// (exactly one comma) is reordered to "Given Family" before the generic
// pipeline runs.
func AuthorName(name string) string {
	if name == "" {
		return ""
	}
	n := StripLatex(name)
	n = foldASCII(n)
	n = collapse(n)
	if strings.Count(n, ",") == 1 {
		parts := strings.SplitN(n, ",", 2)
		n = strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
	}
	n = strings.ToLower(n)
	n = stripPunct(n)
	return collapse(n)
}

var andSeparator = regexp.MustCompile(`(?i)\s+and\s+`)

// SplitAuthors splits a BibTeX author field on the " and " separator,
// case-insensitively. Names come back trimmed and in order; empties are
// dropped.
func SplitAuthors(authors string) []string {
	if authors == "" {
		return nil
	}
	var names []string
	for _, part := range andSeparator.Split(authors, -1) {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// AuthorList splits an author field and canonicalizes each name via
// AuthorName. Names that normalize to empty are dropped.
func AuthorList(authors string) []string {
	var names []string
	for _, raw := range SplitAuthors(authors) {
		if name := AuthorName(raw); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// SimilarityRatio computes word-level Jaccard similarity between the
// canonicalized forms of a and b: |intersection| / |union| of their token
// sets. It is symmetric and ranges over [0,1]; two inputs that both
// normalize to empty count as identical (1.0), while exactly one empty side
// scores 0.0.
func SimilarityRatio(a, b string) float64 {
	aw := tokenSet(ForComparison(a))
	bw := tokenSet(ForComparison(b))
	if len(aw) == 0 && len(bw) == 0 {
		return 1
	}
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}
	common := 0
	for w := range aw {
		if _, ok := bw[w]; ok {
			common++
		}
	}
	union := len(aw) + len(bw) - common
	return float64(common) / float64(union)
}

// LevenshteinSimilarity computes 1 − d/maxlen over the canonicalized forms
// of a and b, where d is the classic unit-cost edit distance. Two empty
// inputs score 1.0; exactly one empty side scores 0.0.
func LevenshteinSimilarity(a, b string) float64 {
	ra := []rune(ForComparison(a))
	rb := []rune(ForComparison(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	dist := prev[len(rb)]
	longest := max(len(ra), len(rb))
	return 1 - float64(dist)/float64(longest)
}

func tokenSet(s string) map[string]struct{} {
	words := strings.Fields(s)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
