package search

import "github.com/beebytez/hivesearch/internal/chunk"

// scored pairs a piece with its relevance score.
type scored struct {
	piece *chunk.Piece
	score float64
}

// less orders results: score descending, ties broken by ascending file
// path then ascending start line. The same rule is applied inside every
// worker and in the coordinator merge, which is what makes the final
// ranking independent of how the piece list was partitioned.
func less(a, b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.piece.FilePath != b.piece.FilePath {
		return a.piece.FilePath < b.piece.FilePath
	}
	return a.piece.StartLine < b.piece.StartLine
}

// topK is a bounded accumulator holding the best k results seen so far in
// sorted order. With the small k used here, insertion into a sorted slice
// beats a heap and keeps per-worker memory at O(k).
type topK struct {
	k     int
	items []scored
}

func newTopK(k int) *topK {
	return &topK{k: k, items: make([]scored, 0, k)}
}

// push offers one result to the accumulator.
func (t *topK) push(s scored) {
	if len(t.items) == t.k && !less(s, t.items[t.k-1]) {
		return
	}

	// Find insertion point, keeping sorted order.
	i := len(t.items)
	for i > 0 && less(s, t.items[i-1]) {
		i--
	}

	if len(t.items) < t.k {
		t.items = append(t.items, scored{})
	}
	copy(t.items[i+1:], t.items[i:])
	t.items[i] = s
}

// mergeTopK folds several per-worker accumulators into one global top-k
// with the same ordering rule.
func mergeTopK(k int, parts []*topK) []scored {
	out := newTopK(k)
	for _, p := range parts {
		for _, s := range p.items {
			out.push(s)
		}
	}
	return out.items
}
