package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecord(t *testing.T) {
	t.Run("valid without embedding", func(t *testing.T) {
		r := &Record{ExternalID: "TC-1", Contents: "do the thing"}
		assert.NoError(t, ValidateRecord(r, 3))
	})

	t.Run("valid with embedding", func(t *testing.T) {
		r := &Record{
			Contents:  "do the thing",
			Embedding: []float32{1, 2, 3},
			Meta:      &EmbeddingMeta{Model: "m"},
		}
		assert.NoError(t, ValidateRecord(r, 3))
	})

	t.Run("nil record", func(t *testing.T) {
		err := ValidateRecord(nil, 0)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("empty contents", func(t *testing.T) {
		err := ValidateRecord(&Record{Title: "only a title"}, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("vector without metadata", func(t *testing.T) {
		r := &Record{Contents: "x", Embedding: []float32{1}}
		err := ValidateRecord(r, 0)
		assert.ErrorIs(t, err, ErrPartialEmbedding)
	})

	t.Run("metadata without vector", func(t *testing.T) {
		r := &Record{Contents: "x", Meta: &EmbeddingMeta{}}
		err := ValidateRecord(r, 0)
		assert.ErrorIs(t, err, ErrPartialEmbedding)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		r := &Record{
			Contents:  "x",
			Embedding: []float32{1, 2},
			Meta:      &EmbeddingMeta{},
		}
		err := ValidateRecord(r, 3)
		assert.ErrorIs(t, err, ErrDimensionMismatch)
	})

	t.Run("zero dimension skips length check", func(t *testing.T) {
		r := &Record{
			Contents:  "x",
			Embedding: []float32{1, 2},
			Meta:      &EmbeddingMeta{},
		}
		assert.NoError(t, ValidateRecord(r, 0))
	})

	t.Run("future timestamp", func(t *testing.T) {
		r := &Record{Contents: "x", CreatedAt: time.Now().Add(time.Hour)}
		err := ValidateRecord(r, 0)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})
}
