package search

import "github.com/poiesic/retrievit/core"

// Duplicate records one result collapsed into an earlier one, retained for
// auditability with the similarity that caused the collapse.
type Duplicate struct {
	Candidate  *Candidate
	Of         core.ID
	Similarity float64
}

// Dedup collapses near-duplicate results by title similarity. It walks the
// list in rank order, comparing each title's case-folded token set against
// every previously kept title; at or above threshold the result is dropped
// from the primaries and recorded as a duplicate of the earlier (higher
// ranked) entry. The earlier entry always wins.
//
// Quadratic in list size, which is fine: the input is the post-fusion
// top-K, typically at most 50.
//
// A threshold of zero or below disables deduplication.
func Dedup(ranked []*Candidate, threshold float64) ([]*Candidate, []Duplicate) {
	if threshold <= 0 {
		return ranked, nil
	}

	type seen struct {
		id     core.ID
		tokens map[string]struct{}
	}

	kept := make([]*Candidate, 0, len(ranked))
	seenTitles := make([]seen, 0, len(ranked))
	var duplicates []Duplicate

	for _, candidate := range ranked {
		tokens := titleTokens(candidate.Record.Title)

		dup := false
		for _, prior := range seenTitles {
			if sim := jaccard(tokens, prior.tokens); sim >= threshold {
				duplicates = append(duplicates, Duplicate{
					Candidate:  candidate,
					Of:         prior.id,
					Similarity: sim,
				})
				dup = true
				break
			}
		}
		if dup {
			continue
		}

		kept = append(kept, candidate)
		seenTitles = append(seenTitles, seen{id: candidate.Record.StoreID, tokens: tokens})
	}

	return kept, duplicates
}
