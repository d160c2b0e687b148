// Package corpus builds the in-memory TF-IDF index for one request.
//
// A Corpus is built atomically from a root path and is read-only once
// constructed: scoring workers share it without locking, and no query
// ever mutates it. There is no persistence; every request rebuilds from
// disk, trading index-reuse latency for freshness.
package corpus

import (
	"math"
	"time"

	"github.com/beebytez/hivesearch/internal/chunk"
	"github.com/beebytez/hivesearch/internal/vector"
)

// Corpus is the full indexed set of pieces plus vocabulary and
// document-frequency statistics for one build.
type Corpus struct {
	// Root is the absolute root path the corpus was built from.
	Root string

	// Pieces is the deduplicated, ordered piece list: ascending file
	// path, then ascending start line, regardless of worker scheduling.
	Pieces []*chunk.Piece

	// Terms maps term index to interned term string; indices are assigned
	// at first occurrence during the merge pass and never reused.
	Terms []string

	// Vocab maps term to its stable index.
	Vocab map[string]int

	// DocFreq holds per-term-index document frequency: the number of
	// distinct pieces containing the term. Always <= len(Pieces).
	DocFreq []int

	// IDF holds per-term-index inverse document frequency:
	// ln(1 + N/df), smoothed so it stays positive and finite even for
	// terms present in every piece.
	IDF []float64

	// Stats summarizes the build.
	Stats BuildStats
}

// BuildStats summarizes one corpus build.
type BuildStats struct {
	FilesIndexed    int
	FilesSkipped    int
	TotalPieces     int
	DuplicatePieces int
	VocabSize       int
	BuildTime       time.Duration
}

// TermIndex looks up the stable index for a term.
func (c *Corpus) TermIndex(term string) (int, bool) {
	idx, ok := c.Vocab[term]
	return idx, ok
}

// TermIDF returns the idf weight for a term, or 0 for terms outside the
// vocabulary. Out-of-vocabulary query tokens contribute nothing rather
// than failing.
func (c *Corpus) TermIDF(term string) float64 {
	idx, ok := c.Vocab[term]
	if !ok {
		return 0
	}
	return c.IDF[idx]
}

// Empty reports whether the corpus holds no pieces.
func (c *Corpus) Empty() bool {
	return len(c.Pieces) == 0
}

// idf computes the smoothed inverse document frequency for one term.
func idf(n, df int) float64 {
	if df == 0 {
		return 0
	}
	return math.Log(1 + float64(n)/float64(df))
}

// weigh fills a piece's TF-IDF vector: the raw term-frequency vector
// multiplied elementwise by each present term's idf.
func weigh(p *chunk.Piece, vocab map[string]int, idfs []float64) {
	weights := make(map[int]float64, len(p.TermFreq))
	for term, tf := range p.TermFreq {
		idx := vocab[term]
		weights[idx] = float64(tf) * idfs[idx]
	}
	p.TFIDF = vector.FromMap(weights)
}
