package search

// Normalize maps one method's raw scores onto [0,1] via min-max
// normalization over that method's own candidate set. Normalization is
// always scoped to a single query's single method; raw score distributions
// are method- and query-dependent, so scores must never be normalized
// across methods or across queries.
//
// The degenerate case max == min maps every candidate to 1.0: all are
// considered equally relevant rather than dividing by zero.
func Normalize(candidates []*Candidate, method Method) {
	if len(candidates) == 0 {
		return
	}

	lo := candidates[0].Raw[method]
	hi := lo
	for _, c := range candidates[1:] {
		raw := c.Raw[method]
		if raw < lo {
			lo = raw
		}
		if raw > hi {
			hi = raw
		}
	}

	if hi == lo {
		for _, c := range candidates {
			c.Norm[method] = 1.0
		}
		return
	}

	span := hi - lo
	for _, c := range candidates {
		c.Norm[method] = (c.Raw[method] - lo) / span
	}
}
