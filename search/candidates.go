package search

import "github.com/poiesic/retrievit/core"

// Method identifies a retrieval method contributing candidates to fusion.
type Method string

const (
	// MethodLexical is keyword-relevance retrieval over indexed text fields.
	MethodLexical Method = "lexical"

	// MethodVector is nearest-neighbor retrieval over embedding vectors.
	MethodVector Method = "vector"
)

// Candidate is one query-time result flowing through normalization, fusion
// and deduplication. Raw scores are method-native and never comparable
// across methods; Norm holds their min-max normalized counterparts. Rank is
// the 1-based position within the method's own ranked list. Sources records
// which methods produced the candidate.
type Candidate struct {
	Record  *core.Record
	Raw     map[Method]float64
	Norm    map[Method]float64
	Rank    map[Method]int
	Fused   float64
	Sources []Method
}

func newCandidate(record *core.Record, method Method, raw float64, rank int) *Candidate {
	return &Candidate{
		Record:  record,
		Raw:     map[Method]float64{method: raw},
		Norm:    map[Method]float64{},
		Rank:    map[Method]int{method: rank},
		Sources: []Method{method},
	}
}

// FromMethod reports whether the candidate was produced by method.
func (c *Candidate) FromMethod(method Method) bool {
	for _, source := range c.Sources {
		if source == method {
			return true
		}
	}
	return false
}
