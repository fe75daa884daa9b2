// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package duplicates

import (
	"strings"
	"testing"

	"github.com/pdiddy/citecheck/pkg/types"
)

func cite(key, title, author string) types.Citation {
	return types.Citation{Key: key, Title: title, Author: author}
}

// --- grouping ---

func TestFindCaseAndPunctuationVariants(t *testing.T) {
	batch := []types.Citation{
		cite("vaswani2017", "Attention Is All You Need", "Vaswani, Ashish and Shazeer, Noam"),
		cite("vaswani2017dup", "Attention is all you need.", "Ashish Vaswani and Noam Shazeer"),
	}

	groups := Find(batch)

	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	g := groups[0]
	if len(g.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(g.Entries))
	}
	if g.Reason != "Nearly identical titles" {
		t.Errorf("Reason = %q, want %q", g.Reason, "Nearly identical titles")
	}
	if g.Score < 0.95 {
		t.Errorf("Score = %v, want >= 0.95", g.Score)
	}
	if g.Entries[0].Key != "vaswani2017" || g.Entries[1].Key != "vaswani2017dup" {
		t.Errorf("entry order = %v, want input order", g.Keys())
	}
}

func TestFindNoDuplicates(t *testing.T) {
	batch := []types.Citation{
		cite("a", "Attention Is All You Need", "Vaswani, Ashish"),
		cite("b", "Deep Residual Learning for Image Recognition", "He, Kaiming"),
		cite("c", "Generative Adversarial Networks", "Goodfellow, Ian"),
	}

	if groups := Find(batch); len(groups) != 0 {
		t.Errorf("groups = %v, want none", groups)
	}
}

func TestFindEveryGroupHasAtLeastTwoEntries(t *testing.T) {
	batch := []types.Citation{
		cite("a1", "Attention Is All You Need", "Vaswani, Ashish"),
		cite("solo", "A Paper With No Twin Anywhere", "Nobody, Jane"),
		cite("a2", "Attention is All you Need", "Vaswani, Ashish"),
		cite("b1", "Deep Residual Learning for Image Recognition", "He, Kaiming"),
		cite("b2", "Deep residual learning for image recognition.", "Kaiming He"),
	}

	groups := Find(batch)

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	for _, g := range groups {
		if len(g.Entries) < 2 {
			t.Errorf("group %v has %d entries, want >= 2", g.Keys(), len(g.Entries))
		}
	}
	for _, g := range groups {
		for _, key := range g.Keys() {
			if key == "solo" {
				t.Error("unpaired citation ended up in a group")
			}
		}
	}
}

// --- combined title+author path ---

func TestFindCombinedScoreJoins(t *testing.T) {
	// Title similarity alone is ~0.83, below the 0.85 title threshold; the
	// author agreement pushes the combined score over 0.80.
	batch := []types.Citation{
		cite("gan1", "Generative Adversarial Networks Overview Analysis",
			"Goodfellow, Ian and Pouget-Abadie, Jean"),
		cite("gan2", "Generative Adversarial Networks Overview Analysis Extended",
			"Goodfellow, Ian and Pouget-Abadie, Jean"),
	}

	groups := Find(batch)

	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	if groups[0].Reason != "Similar titles and authors" {
		t.Errorf("Reason = %q, want %q", groups[0].Reason, "Similar titles and authors")
	}
}

func TestFindDissimilarAuthorsBlockBorderlineTitles(t *testing.T) {
	batch := []types.Citation{
		cite("x1", "Generative Adversarial Networks Overview Analysis", "Goodfellow, Ian"),
		cite("x2", "Generative Adversarial Networks Overview Analysis Extended", "Unrelated, Person"),
	}

	if groups := Find(batch); len(groups) != 0 {
		t.Errorf("groups = %v, want none: authors disagree and titles are borderline", groups)
	}
}

// --- ordering and assignment ---

func TestFindGroupsSortedByScore(t *testing.T) {
	batch := []types.Citation{
		// Borderline pair first in input order.
		cite("low1", "Generative Adversarial Networks Overview Analysis", "Goodfellow, Ian"),
		cite("low2", "Generative Adversarial Networks Overview Analysis Extended", "Goodfellow, Ian"),
		// Exact pair later.
		cite("high1", "Attention Is All You Need", "Vaswani, Ashish"),
		cite("high2", "Attention is all you need", "Vaswani, Ashish"),
	}

	groups := Find(batch)

	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}
	if groups[0].Score < groups[1].Score {
		t.Errorf("groups not sorted by score: %v then %v", groups[0].Score, groups[1].Score)
	}
	if groups[0].Entries[0].Key != "high1" {
		t.Errorf("highest-scoring group = %v, want the exact pair first", groups[0].Keys())
	}
}

func TestFindSingleAssignment(t *testing.T) {
	// "short" is similar to neither full title strongly enough to join, and
	// a citation consumed by the first group cannot seed another.
	batch := []types.Citation{
		cite("full1", "Deep Residual Learning for Image Recognition", "He, Kaiming"),
		cite("full2", "Deep Residual Learning for Image Recognition.", "He, Kaiming"),
		cite("short", "Deep Residual Learning", "He, Kaiming"),
	}

	groups := Find(batch)

	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d, want 1", len(groups))
	}
	keys := strings.Join(groups[0].Keys(), ",")
	if keys != "full1,full2" {
		t.Errorf("group keys = %s, want full1,full2", keys)
	}
}

func TestDescribe(t *testing.T) {
	g := types.DuplicateGroup{
		Entries: []types.Citation{cite("a", "T", ""), cite("b", "T", "")},
		Score:   0.97,
		Reason:  "Nearly identical titles",
	}
	got := Describe(g)
	for _, want := range []string{"2 entries", "97%", "a", "b", "(Nearly identical titles)"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe = %q, missing %q", got, want)
		}
	}
}
