// Package vector implements sparse weighted-term vectors and the small
// amount of linear algebra the search engine needs.
//
// A Sparse vector stores only the terms that are present, as parallel
// slices sorted by ascending term index. Every operation walks terms in
// that fixed order, so identical inputs always accumulate in the same
// order and produce bit-identical results on a given backend. That is
// what lets the CPU scoring path and the BLAS scoring path be verified
// against each other within a numeric tolerance.
package vector

import "sort"

// Sparse is a sparse vector mapping term indices to non-negative weights.
// Terms is sorted ascending and has no duplicates; Weights is parallel to
// Terms. The zero value is a valid empty vector.
type Sparse struct {
	Terms   []int
	Weights []float64
}

// FromMap builds a Sparse vector from a term index to weight mapping.
// Zero-weight entries are dropped.
func FromMap(m map[int]float64) Sparse {
	terms := make([]int, 0, len(m))
	for t, w := range m {
		if w != 0 {
			terms = append(terms, t)
		}
	}
	sort.Ints(terms)

	weights := make([]float64, len(terms))
	for i, t := range terms {
		weights[i] = m[t]
	}
	return Sparse{Terms: terms, Weights: weights}
}

// Len returns the number of stored terms.
func (v Sparse) Len() int {
	return len(v.Terms)
}

// IsZero reports whether the vector has no non-zero weights.
func (v Sparse) IsZero() bool {
	return len(v.Terms) == 0
}

// Weight returns the weight for a term index, or 0 if absent.
func (v Sparse) Weight(term int) float64 {
	i := sort.SearchInts(v.Terms, term)
	if i < len(v.Terms) && v.Terms[i] == term {
		return v.Weights[i]
	}
	return 0
}

// Equal reports value equality by content.
func (v Sparse) Equal(o Sparse) bool {
	if len(v.Terms) != len(o.Terms) {
		return false
	}
	for i := range v.Terms {
		if v.Terms[i] != o.Terms[i] || v.Weights[i] != o.Weights[i] {
			return false
		}
	}
	return true
}

// Dot computes the dot product of a and b: the sum over shared term
// indices of a[t]*b[t]. Disjoint vectors yield 0. Accumulation runs in
// ascending term-index order.
func Dot(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] < b.Terms[j]:
			i++
		case a.Terms[i] > b.Terms[j]:
			j++
		default:
			sum += a.Weights[i] * b.Weights[j]
			i++
			j++
		}
	}
	return sum
}

// Intersect gathers the weights of terms present in both a and b into two
// aligned slices, in ascending term-index order. The pair is the input a
// bulk reduction backend needs for the multiply-accumulate step.
func Intersect(a, b Sparse, ax, bx []float64) ([]float64, []float64) {
	ax, bx = ax[:0], bx[:0]
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] < b.Terms[j]:
			i++
		case a.Terms[i] > b.Terms[j]:
			j++
		default:
			ax = append(ax, a.Weights[i])
			bx = append(bx, b.Weights[j])
			i++
			j++
		}
	}
	return ax, bx
}

// Add returns the union of a and b with summed weights. Inputs are not
// mutated.
func Add(a, b Sparse) Sparse {
	terms := make([]int, 0, len(a.Terms)+len(b.Terms))
	weights := make([]float64, 0, len(a.Terms)+len(b.Terms))

	i, j := 0, 0
	for i < len(a.Terms) || j < len(b.Terms) {
		switch {
		case j >= len(b.Terms) || (i < len(a.Terms) && a.Terms[i] < b.Terms[j]):
			terms = append(terms, a.Terms[i])
			weights = append(weights, a.Weights[i])
			i++
		case i >= len(a.Terms) || b.Terms[j] < a.Terms[i]:
			terms = append(terms, b.Terms[j])
			weights = append(weights, b.Weights[j])
			j++
		default:
			terms = append(terms, a.Terms[i])
			weights = append(weights, a.Weights[i]+b.Weights[j])
			i++
			j++
		}
	}
	return Sparse{Terms: terms, Weights: weights}
}

// Scale returns a copy of v with every weight multiplied by s.
func Scale(v Sparse, s float64) Sparse {
	terms := make([]int, len(v.Terms))
	copy(terms, v.Terms)
	weights := make([]float64, len(v.Weights))
	for i, w := range v.Weights {
		weights[i] = w * s
	}
	return Sparse{Terms: terms, Weights: weights}
}
