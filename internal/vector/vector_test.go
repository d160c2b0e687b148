package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_SortsTermsAndDropsZeros(t *testing.T) {
	v := FromMap(map[int]float64{5: 2.5, 1: 1.0, 9: 0, 3: 0.5})

	assert.Equal(t, []int{1, 3, 5}, v.Terms)
	assert.Equal(t, []float64{1.0, 0.5, 2.5}, v.Weights)
}

func TestFromMap_EmptyMapYieldsZeroVector(t *testing.T) {
	v := FromMap(nil)

	assert.True(t, v.IsZero())
	assert.Equal(t, 0, v.Len())
}

func TestWeight_PresentAndAbsentTerms(t *testing.T) {
	v := FromMap(map[int]float64{2: 0.25, 7: 1.5})

	assert.Equal(t, 0.25, v.Weight(2))
	assert.Equal(t, 1.5, v.Weight(7))
	assert.Equal(t, 0.0, v.Weight(3))
	assert.Equal(t, 0.0, v.Weight(100))
}

func TestDot_SharedAndDisjointTerms(t *testing.T) {
	a := FromMap(map[int]float64{0: 1, 2: 2, 4: 3})
	b := FromMap(map[int]float64{2: 10, 3: 5, 4: 0.5})

	// Shared terms 2 and 4: 2*10 + 3*0.5.
	assert.InDelta(t, 21.5, Dot(a, b), 1e-12)

	disjoint := FromMap(map[int]float64{1: 4, 3: 4})
	assert.Equal(t, 0.0, Dot(a, disjoint))
}

func TestDot_IsCommutative(t *testing.T) {
	a := FromMap(map[int]float64{1: 0.3, 5: 1.7, 8: 2.2})
	b := FromMap(map[int]float64{1: 1.1, 8: 0.9, 12: 3.0})

	assert.Equal(t, Dot(a, b), Dot(b, a))
}

func TestDot_ZeroVectorScoresZeroAgainstAnything(t *testing.T) {
	var zero Sparse
	b := FromMap(map[int]float64{0: 1, 1: 1})

	assert.Equal(t, 0.0, Dot(zero, b))
	assert.Equal(t, 0.0, Dot(b, zero))
}

func TestIntersect_GathersAlignedWeightPairs(t *testing.T) {
	a := FromMap(map[int]float64{0: 1, 2: 2, 4: 3, 6: 4})
	b := FromMap(map[int]float64{2: 10, 4: 0.5, 5: 7})

	ax, bx := Intersect(a, b, nil, nil)

	require.Equal(t, []float64{2, 3}, ax)
	require.Equal(t, []float64{10, 0.5}, bx)
}

func TestIntersect_ReusesScratchSlices(t *testing.T) {
	a := FromMap(map[int]float64{1: 1, 3: 3})
	b := FromMap(map[int]float64{3: 2})

	scratchA := make([]float64, 0, 8)
	scratchB := make([]float64, 0, 8)
	ax, bx := Intersect(a, b, scratchA, scratchB)

	assert.Equal(t, []float64{3}, ax)
	assert.Equal(t, []float64{2}, bx)

	// The intersection walk and Dot must agree.
	var sum float64
	for i := range ax {
		sum += ax[i] * bx[i]
	}
	assert.InDelta(t, Dot(a, b), sum, 1e-12)
}

func TestAdd_UnionWithSummedWeights(t *testing.T) {
	a := FromMap(map[int]float64{0: 1, 2: 2})
	b := FromMap(map[int]float64{2: 3, 5: 4})

	sum := Add(a, b)

	assert.Equal(t, []int{0, 2, 5}, sum.Terms)
	assert.Equal(t, []float64{1, 5, 4}, sum.Weights)

	// Inputs untouched.
	assert.Equal(t, []float64{1, 2}, a.Weights)
	assert.Equal(t, []float64{3, 4}, b.Weights)
}

func TestScale_MultipliesEveryWeight(t *testing.T) {
	v := FromMap(map[int]float64{1: 2, 4: 8})

	scaled := Scale(v, 0.5)

	assert.Equal(t, []int{1, 4}, scaled.Terms)
	assert.Equal(t, []float64{1, 4}, scaled.Weights)
	// Original untouched.
	assert.Equal(t, []float64{2, 8}, v.Weights)
}

func TestEqual_ComparesByContent(t *testing.T) {
	a := FromMap(map[int]float64{1: 2, 3: 4})
	b := FromMap(map[int]float64{1: 2, 3: 4})
	c := FromMap(map[int]float64{1: 2, 3: 5})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Sparse{}))
}
