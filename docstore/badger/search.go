package badger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/retrievit/core"
	"github.com/poiesic/retrievit/docstore"
)

// defaultLexicalFields are searched when the caller passes no field list.
var defaultLexicalFields = []string{"title", "contents"}

// LexicalSearch ranks documents by keyword relevance of query against the
// given fields. The score is the number of query-token occurrences in the
// selected fields; documents with zero relevance are excluded. This is a
// brute-force scan, not an inverted index.
func (s *Store) LexicalSearch(ctx context.Context, collection, index, query string, fields []string, limit int) ([]docstore.Hit, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", docstore.ErrInvalidQuery)
	}
	if err := s.requireIndex(collection, index, docstore.IndexLexical); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = defaultLexicalFields
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []docstore.Hit{}, nil
	}

	var hits []docstore.Hit
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		return s.scanDocuments(tx, collection, func(record *core.Record) error {
			score := lexicalScore(record, fields, queryTokens)
			if score > 0 {
				hits = append(hits, docstore.Hit{Record: record, LexicalScore: score})
			}
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	sortHits(hits, func(h docstore.Hit) float64 { return h.LexicalScore })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// VectorSearch ranks documents by cosine similarity to queryVector,
// considering up to numCandidates documents. This is a brute-force scan,
// not an ANN traversal.
func (s *Store) VectorSearch(ctx context.Context, collection, index string, queryVector []float32, numCandidates, limit int) ([]docstore.Hit, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", docstore.ErrInvalidQuery)
	}
	if numCandidates < limit {
		return nil, fmt.Errorf("%w: numCandidates (%d) must be >= limit (%d)", docstore.ErrInvalidQuery, numCandidates, limit)
	}
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("%w: query vector required", docstore.ErrInvalidQuery)
	}
	if err := s.requireIndex(collection, index, docstore.IndexVector); err != nil {
		return nil, err
	}

	var hits []docstore.Hit
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		return s.scanDocuments(tx, collection, func(record *core.Record) error {
			if len(record.Embedding) != len(queryVector) {
				return nil
			}
			hits = append(hits, docstore.Hit{
				Record:      record,
				VectorScore: cosineSimilarity(queryVector, record.Embedding),
			})
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	sortHits(hits, func(h docstore.Hit) float64 { return h.VectorScore })
	if len(hits) > numCandidates {
		hits = hits[:numCandidates]
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// requireIndex verifies the index exists with the expected kind.
func (s *Store) requireIndex(collection, index string, kind docstore.IndexKind) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexKey(collection, index))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &docstore.PreconditionError{Check: docstore.CheckIndex, Collection: collection, Index: index}
		}
		if err != nil {
			return err
		}
		existing, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if docstore.IndexKind(existing) != kind {
			return fmt.Errorf("%w: index %q is %s, want %s", docstore.ErrIndexKindMismatch, index, existing, kind)
		}
		return nil
	}, false)
}

// sortHits orders hits by score descending, ties broken by ascending
// StoreID. The tie-break is deliberate: it keeps rankings deterministic
// instead of leaning on incidental iteration order.
func sortHits(hits []docstore.Hit, score func(docstore.Hit) float64) {
	sort.SliceStable(hits, func(i, j int) bool {
		si, sj := score(hits[i]), score(hits[j])
		if si != sj {
			return si > sj
		}
		return hits[i].Record.StoreID < hits[j].Record.StoreID
	})
}

// lexicalScore counts query-token occurrences across the selected fields.
func lexicalScore(record *core.Record, fields []string, queryTokens []string) float64 {
	counts := make(map[string]int)
	for _, field := range fields {
		value, ok := record.Field(field)
		if !ok {
			continue
		}
		for _, token := range tokenize(value) {
			counts[token]++
		}
	}

	score := 0.0
	for _, token := range queryTokens {
		score += float64(counts[token])
	}
	return score
}

// tokenize splits text into lowercased words with punctuation trimmed.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// A zero vector yields 0.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
