// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package duplicates clusters near-identical citations within one batch.
// Detection is purely local: it never touches the network and runs before
// verification dispatch.
package duplicates

import (
	"fmt"
	"sort"

	"github.com/pdiddy/citecheck/internal/compare"
	"github.com/pdiddy/citecheck/internal/normalize"
	"github.com/pdiddy/citecheck/pkg/types"
)

// Detection thresholds. A pair with title similarity at or above
// titleThreshold is a duplicate outright; below that, the title/author
// combination must clear combinedThreshold.
const (
	titleThreshold    = 0.85
	combinedThreshold = 0.80

	titleWeight  = 0.7
	authorWeight = 0.3

	// nameSimilarity is the per-name matching floor, shared with the
	// comparator's author rule.
	nameSimilarity = 0.8
)

// Find returns the duplicate groups in citations, sorted by score
// descending. Clustering is a greedy single pass in input order: a citation
// consumed by an earlier group never seeds or joins a later one, so chains
// of borderline similarity do not become one sprawling group (and, equally,
// are not fully transitively closed).
func Find(citations []types.Citation) []types.DuplicateGroup {
	var groups []types.DuplicateGroup
	processed := make(map[string]bool, len(citations))

	for i, seed := range citations {
		if processed[seed.Key] {
			continue
		}
		members := []types.Citation{seed}
		for _, other := range citations[i+1:] {
			if processed[other.Key] {
				continue
			}
			if pairScore(seed, other) >= combinedThreshold {
				members = append(members, other)
				processed[other.Key] = true
			}
		}
		if len(members) < 2 {
			continue
		}
		processed[seed.Key] = true
		groups = append(groups, types.DuplicateGroup{
			Entries: members,
			Score:   groupScore(members),
			Reason:  groupReason(members),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Score > groups[j].Score
	})
	return groups
}

// pairScore rates how likely two citations reference the same work. Very
// similar titles decide on their own; otherwise the title and author
// signals combine 70/30.
func pairScore(a, b types.Citation) float64 {
	titleSim := normalize.SimilarityRatio(a.Title, b.Title)
	if titleSim >= titleThreshold {
		return titleSim
	}
	return titleWeight*titleSim + authorWeight*authorSimilarity(a.Author, b.Author)
}

// authorSimilarity computes a Jaccard-style score over matched names:
// matched count divided by the number of unique names across both lists.
func authorSimilarity(a, b string) float64 {
	namesA := normalize.AuthorList(a)
	namesB := normalize.AuthorList(b)
	if len(namesA) == 0 || len(namesB) == 0 {
		return 0
	}

	matched := 0
	for _, na := range namesA {
		for _, nb := range namesB {
			if compare.NamesMatch(na, nb, nameSimilarity) {
				matched++
				break
			}
		}
	}

	unique := make(map[string]struct{}, len(namesA)+len(namesB))
	for _, n := range namesA {
		unique[n] = struct{}{}
	}
	for _, n := range namesB {
		unique[n] = struct{}{}
	}
	if len(unique) == 0 {
		return 0
	}
	score := float64(matched) / float64(len(unique))
	if score > 1 {
		score = 1
	}
	return score
}

// groupScore is the mean pairwise score across the group.
func groupScore(members []types.Citation) float64 {
	total, count := 0.0, 0
	for i := range members {
		for _, other := range members[i+1:] {
			total += pairScore(members[i], other)
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return total / float64(count)
}

// groupReason derives the human-readable explanation from the mean pairwise
// title similarity.
func groupReason(members []types.Citation) string {
	total, count := 0.0, 0
	for i := range members {
		for _, other := range members[i+1:] {
			total += normalize.SimilarityRatio(members[i].Title, other.Title)
			count++
		}
	}
	avg := 0.0
	if count > 0 {
		avg = total / float64(count)
	}
	switch {
	case avg >= 0.95:
		return "Nearly identical titles"
	case avg >= 0.85:
		return "Very similar titles"
	default:
		return "Similar titles and authors"
	}
}

// Describe renders a one-line summary for a group, used by the CLI and
// report layers.
func Describe(g types.DuplicateGroup) string {
	return fmt.Sprintf("%d entries, %.0f%% similar: %v (%s)", len(g.Entries), g.Score*100, g.Keys(), g.Reason)
}
