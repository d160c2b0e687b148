// Package search ranks corpus pieces against small keyword queries.
//
// Scoring partitions the read-only piece list across a bounded worker
// pool. Each worker keeps its own bounded top-K accumulator; only the
// coordinator ever touches the merged result, so the hot path runs
// without locks and peak merge memory stays at O(K x workers).
package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/beebytez/hivesearch/internal/backend"
	"github.com/beebytez/hivesearch/internal/chunk"
	"github.com/beebytez/hivesearch/internal/corpus"
	hiveerr "github.com/beebytez/hivesearch/internal/errors"
	"github.com/beebytez/hivesearch/internal/token"
	"github.com/beebytez/hivesearch/internal/vector"
)

// MaxQueryTerms is the most terms a single query may carry.
const MaxQueryTerms = 4

// DefaultTopK is the default ranked result cutoff.
const DefaultTopK = 10

// Result is one ranked piece; ephemeral, never persisted.
type Result struct {
	Piece *chunk.Piece
	// Rank is 1-based.
	Rank  int
	Score float64
}

// Engine scores one corpus. The corpus is read-only and shared by all
// scoring workers without locking.
type Engine struct {
	corpus  *corpus.Corpus
	backend backend.Backend
	tok     *token.Tokenizer
	topK    int
	workers int
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK sets the ranked result cutoff.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithWorkers caps the scoring worker pool.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithBackend overrides the compute backend.
func WithBackend(b backend.Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine over a built corpus. The tokenizer must use
// the same normalization the corpus was indexed with.
func NewEngine(c *corpus.Corpus, tok *token.Tokenizer, opts ...Option) *Engine {
	e := &Engine{
		corpus:  c,
		backend: backend.CPU{},
		tok:     tok,
		topK:    DefaultTopK,
		workers: 1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query validates terms, builds the query vector from the corpus IDF
// table, and returns the global top-K ranked results. An all-zero query
// vector (every term out of vocabulary) yields an empty result list.
func (e *Engine) Query(ctx context.Context, terms []string) ([]Result, time.Duration, error) {
	if err := ValidateTerms(terms); err != nil {
		return nil, 0, err
	}

	start := time.Now()

	query := e.queryVector(terms)
	if query.IsZero() || e.corpus.Empty() {
		return []Result{}, time.Since(start), nil
	}

	ranked, err := e.score(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	results := make([]Result, len(ranked))
	for i, s := range ranked {
		results[i] = Result{Piece: s.piece, Rank: i + 1, Score: s.score}
	}
	return results, time.Since(start), nil
}

// ValidateTerms rejects empty, blank, or oversized term lists before any
// work starts.
func ValidateTerms(terms []string) error {
	if len(terms) == 0 {
		return hiveerr.New(hiveerr.ErrCodeQueryEmpty, "query needs at least one term", nil)
	}
	if len(terms) > MaxQueryTerms {
		return hiveerr.New(hiveerr.ErrCodeTooManyTerms, "query accepts at most 4 terms", nil)
	}
	for _, t := range terms {
		if t == "" {
			return hiveerr.InvalidInput("query term is empty")
		}
	}
	return nil
}

// queryVector tokenizes each term with the indexing normalization and
// weighs tokens by occurrence-count-in-query times corpus idf. Unseen
// tokens contribute weight 0.
func (e *Engine) queryVector(terms []string) vector.Sparse {
	counts := make(map[string]int)
	for _, term := range terms {
		for _, tok := range e.tok.Tokenize(term) {
			counts[tok]++
		}
	}

	weights := make(map[int]float64, len(counts))
	for tok, n := range counts {
		idx, ok := e.corpus.TermIndex(tok)
		if !ok {
			continue
		}
		if w := float64(n) * e.corpus.IDF[idx]; w != 0 {
			weights[idx] = w
		}
	}
	return vector.FromMap(weights)
}

// score partitions the piece list, runs per-partition scoring on the
// worker pool, and merges the per-worker top-K lists.
func (e *Engine) score(ctx context.Context, query vector.Sparse) ([]scored, error) {
	pieces := e.corpus.Pieces

	workers := e.workers
	if workers > len(pieces) {
		workers = len(pieces)
	}
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, hiveerr.Wrap(hiveerr.ErrCodeSearchFailed, err)
	}
	defer pool.Release()

	parts := make([]*topK, workers)
	span := (len(pieces) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * span
		hi := lo + span
		if hi > len(pieces) {
			hi = len(pieces)
		}
		acc := newTopK(e.topK)
		parts[w] = acc
		if lo >= hi {
			continue
		}

		slice := pieces[lo:hi]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			e.scorePartition(query, slice, acc)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.ErrCodeSearchFailed, err)
	}
	return mergeTopK(e.topK, parts), nil
}

// scorePartition scores one contiguous slice of pieces into acc. A bulk
// backend failure falls back to the CPU path for this partition; scoring
// never surfaces an accelerator error.
func (e *Engine) scorePartition(query vector.Sparse, pieces []*chunk.Piece, acc *topK) {
	vecs := make([]vector.Sparse, len(pieces))
	for i, p := range pieces {
		vecs[i] = p.TFIDF
	}

	out := make([]float64, len(pieces))
	if err := e.backend.Score(query, vecs, out); err != nil {
		e.logger.Debug("bulk backend failed, falling back to cpu",
			slog.String("backend", e.backend.Name()),
			slog.String("error", err.Error()))
		_ = backend.CPU{}.Score(query, vecs, out)
	}

	for i, s := range out {
		if s > 0 {
			acc.push(scored{piece: pieces[i], score: s})
		}
	}
}
