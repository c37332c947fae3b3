package search

import (
	"context"

	"github.com/poiesic/retrievit/docstore"
)

// lexicalCandidates runs the keyword-relevance query. A missing lexical
// index makes the method unavailable (the query degrades); any other
// precondition violation is fatal so callers can tell "not yet provisioned"
// from an empty answer.
func (s *Searcher) lexicalCandidates(ctx context.Context, query string, filters map[string]string, topK int) ([]*Candidate, bool, error) {
	if err := s.store.CheckSearchable(ctx, s.collection, s.lexicalIndex); err != nil {
		if perr, ok := docstore.IsPrecondition(err); ok && perr.Check == docstore.CheckIndex {
			s.logger.Warn("lexical index not provisioned", "collection", s.collection, "index", s.lexicalIndex)
			return nil, true, nil
		}
		return nil, false, err
	}

	hits, err := s.store.LexicalSearch(ctx, s.collection, s.lexicalIndex, query, s.fields, topK)
	if err != nil {
		return nil, false, err
	}

	hits = filterHits(hits, filters)
	candidates := make([]*Candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = newCandidate(hit.Record, MethodLexical, hit.LexicalScore, i+1)
	}
	return candidates, false, nil
}

// vectorCandidates runs the nearest-neighbor query. The candidate pool
// handed to the store is ten times the requested top-K so the post-filter
// has headroom; the store caps the returned list at topK.
func (s *Searcher) vectorCandidates(ctx context.Context, queryVector []float32, filters map[string]string, topK int) ([]*Candidate, bool, error) {
	if err := s.store.CheckSearchable(ctx, s.collection, s.vectorIndex); err != nil {
		if perr, ok := docstore.IsPrecondition(err); ok && perr.Check == docstore.CheckIndex {
			s.logger.Warn("vector index not provisioned", "collection", s.collection, "index", s.vectorIndex)
			return nil, true, nil
		}
		return nil, false, err
	}

	hits, err := s.store.VectorSearch(ctx, s.collection, s.vectorIndex, queryVector, topK*10, topK)
	if err != nil {
		return nil, false, err
	}

	hits = filterHits(hits, filters)
	candidates := make([]*Candidate, len(hits))
	for i, hit := range hits {
		candidates[i] = newCandidate(hit.Record, MethodVector, hit.VectorScore, i+1)
	}
	return candidates, false, nil
}

// filterHits applies exact-match field filters on top of the ranked hits.
// Filters stay out of the index query because filterable fields are not
// guaranteed to be part of the search index definition.
func filterHits(hits []docstore.Hit, filters map[string]string) []docstore.Hit {
	if len(filters) == 0 {
		return hits
	}

	filtered := hits[:0]
	for _, hit := range hits {
		match := true
		for field, want := range filters {
			if got, ok := hit.Record.Field(field); !ok || got != want {
				match = false
				break
			}
		}
		if match {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}
