package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is the store-internal primary key for persisted records.
// Caller-supplied external identifiers are not guaranteed unique; this is.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Record represents a domain document, such as a test case or user story.
// It carries a fixed core schema plus an open-ended Fields map for
// caller-defined columns, and may be enriched with an embedding during
// ingestion.
type Record struct {
	StoreID    ID
	ExternalID string
	Title      string
	Contents   string
	Fields     map[string]string // Caller-defined extra columns (all string-valued)
	Embedding  []float32         // Populated by the ingestion pipeline
	Meta       *EmbeddingMeta    // Set if and only if Embedding is set
	CreatedAt  time.Time
}

// EmbeddingMeta records provenance and accounting for a stored embedding.
type EmbeddingMeta struct {
	Model     string
	APISource string
	Tokens    int
	Cost      float64
	CreatedAt time.Time
}

// EmbeddingText returns the text payload sent to the embedding provider
// for this record: title and contents joined, with blank parts dropped.
func (r *Record) EmbeddingText() string {
	parts := make([]string, 0, 2)
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Contents != "" {
		parts = append(parts, r.Contents)
	}
	return strings.Join(parts, "\n\n")
}

// Embedded reports whether the record carries a complete embedding,
// meaning both the vector and its metadata are present.
func (r *Record) Embedded() bool {
	return len(r.Embedding) > 0 && r.Meta != nil
}

// Field looks up a value by name, checking the core schema first and the
// open Fields map second. Core names are "externalId", "title" and "contents".
func (r *Record) Field(name string) (string, bool) {
	switch name {
	case "externalId":
		return r.ExternalID, true
	case "title":
		return r.Title, true
	case "contents":
		return r.Contents, true
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	dup := *r
	if r.Fields != nil {
		dup.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			dup.Fields[k] = v
		}
	}
	if r.Embedding != nil {
		dup.Embedding = make([]float32, len(r.Embedding))
		copy(dup.Embedding, r.Embedding)
	}
	if r.Meta != nil {
		meta := *r.Meta
		dup.Meta = &meta
	}
	return &dup
}
