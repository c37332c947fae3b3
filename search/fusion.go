// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"slices"
	"sort"

	"github.com/poiesic/retrievit/core"
)

// FusionMethod selects the policy used to combine per-method rankings.
type FusionMethod string

const (
	// FusionWeighted combines normalized scores as a weighted sum.
	FusionWeighted FusionMethod = "weighted"

	// FusionRRF is reciprocal rank fusion: sum of 1/(k+rank) per method.
	FusionRRF FusionMethod = "rrf"

	// FusionWeightedReciprocal combines per-method weight/rank terms.
	FusionWeightedReciprocal FusionMethod = "weighted-reciprocal"
)

// DefaultRRFK is the rank-smoothing constant for reciprocal rank fusion.
const DefaultRRFK = 60

// FusionConfig is supplied per query and never persisted.
type FusionConfig struct {
	// Method is the fusion policy. Default weighted.
	Method FusionMethod

	// Weights gives the per-method weight for the weighted policies.
	// Weights are renormalized by their sum, so scaling all of them by a
	// positive constant never changes the final ranking.
	Weights map[Method]float64

	// TopK is the number of candidates considered per method. Default 50.
	TopK int

	// Limit caps the final result list. Default 10.
	Limit int

	// RRFK is the rank-smoothing constant for FusionRRF. Default 60.
	RRFK int

	// DedupThreshold is the title-similarity bound at or above which a
	// result is collapsed into an earlier one. Zero disables dedup.
	// Default 0.9.
	DedupThreshold float64
}

// DefaultFusionConfig returns the standard per-query configuration:
// equal-weight weighted-sum fusion over the top 50 per method, ten final
// results, dedup threshold 0.9.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		Method: FusionWeighted,
		Weights: map[Method]float64{
			MethodLexical: 0.5,
			MethodVector:  0.5,
		},
		TopK:           50,
		Limit:          10,
		RRFK:           DefaultRRFK,
		DedupThreshold: 0.9,
	}
}

// withDefaults fills zero-valued fields from DefaultFusionConfig.
func (c FusionConfig) withDefaults() FusionConfig {
	def := DefaultFusionConfig()
	if c.Method == "" {
		c.Method = def.Method
	}
	if len(c.Weights) == 0 {
		c.Weights = def.Weights
	}
	if c.TopK == 0 {
		c.TopK = def.TopK
	}
	if c.Limit == 0 {
		c.Limit = def.Limit
	}
	if c.RRFK == 0 {
		c.RRFK = def.RRFK
	}
	return c
}

// Validate checks the configuration after defaulting.
func (c FusionConfig) Validate() error {
	switch c.Method {
	case FusionWeighted, FusionRRF, FusionWeightedReciprocal:
	default:
		return ErrUnknownFusionMethod
	}

	if c.Method != FusionRRF {
		var total float64
		for _, w := range c.Weights {
			total += w
		}
		if total <= 0 {
			return ErrInvalidWeights
		}
	}

	if c.TopK < 1 || c.Limit < 1 {
		return ErrInvalidLimit
	}
	if c.DedupThreshold < 0 || c.DedupThreshold > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// Fuser merges per-method candidate lists into one ordered result list.
type Fuser struct {
	config FusionConfig
}

// NewFuser creates a fuser for one query's configuration.
func NewFuser(config FusionConfig) (*Fuser, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Fuser{config: config}, nil
}

// Fuse merges the candidate lists keyed by method into one ranking.
// Candidates appearing in multiple lists are merged into a single entry
// keyed by the record's store identifier, with provenance and per-method
// scores combined. A candidate absent from a method contributes zero for
// that method's term.
//
// When fewer than two method lists are present the ranking degrades to the
// available method alone and the degraded flag is set; the query is still
// answered.
//
// Final order: fused score descending, ties broken by ascending store
// identifier. The tie-break is a deliberate, documented policy so equal
// scores always rank deterministically.
func (f *Fuser) Fuse(lists map[Method][]*Candidate) ([]*Candidate, bool) {
	degraded := len(lists) < 2

	merged := make(map[core.ID]*Candidate)
	for _, list := range lists {
		for _, c := range list {
			id := c.Record.StoreID
			existing, ok := merged[id]
			if !ok {
				merged[id] = c
				continue
			}
			for method, raw := range c.Raw {
				existing.Raw[method] = raw
			}
			for method, norm := range c.Norm {
				existing.Norm[method] = norm
			}
			for method, rank := range c.Rank {
				existing.Rank[method] = rank
			}
			existing.Sources = append(existing.Sources, c.Sources...)
		}
	}

	weights := f.normalizedWeights(lists)

	results := make([]*Candidate, 0, len(merged))
	for _, c := range merged {
		c.Fused = f.score(c, weights)
		slices.Sort(c.Sources)
		results = append(results, c)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Fused != results[j].Fused {
			return results[i].Fused > results[j].Fused
		}
		return results[i].Record.StoreID < results[j].Record.StoreID
	})

	return results, degraded
}

// Limit returns the configured final result cap.
func (f *Fuser) Limit() int {
	return f.config.Limit
}

// Threshold returns the configured dedup threshold.
func (f *Fuser) Threshold() float64 {
	return f.config.DedupThreshold
}

// normalizedWeights rescales the configured weights of the contributing
// methods so they sum to 1.
func (f *Fuser) normalizedWeights(lists map[Method][]*Candidate) map[Method]float64 {
	var total float64
	for method := range lists {
		total += f.config.Weights[method]
	}

	weights := make(map[Method]float64, len(lists))
	if total <= 0 {
		// No weight configured for any contributing method; treat them
		// as equally weighted.
		for method := range lists {
			weights[method] = 1.0 / float64(len(lists))
		}
		return weights
	}
	for method := range lists {
		weights[method] = f.config.Weights[method] / total
	}
	return weights
}

func (f *Fuser) score(c *Candidate, weights map[Method]float64) float64 {
	var fused float64
	switch f.config.Method {
	case FusionRRF:
		for _, rank := range c.Rank {
			fused += 1.0 / float64(f.config.RRFK+rank)
		}
	case FusionWeightedReciprocal:
		for method, rank := range c.Rank {
			fused += weights[method] / float64(rank)
		}
	default: // FusionWeighted
		for method, norm := range c.Norm {
			fused += norm * weights[method]
		}
	}
	return fused
}
