// Package hive is the structured entry point to the hivesearch engine:
// one call builds a fresh corpus from a root path and answers a small
// keyword query with a ranked list of the most relevant code pieces.
//
// The corpus is rebuilt from disk on every call; there is no persistent
// or incrementally updated index, so results always reflect the current
// state of the tree.
package hive

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/beebytez/hivesearch/internal/backend"
	"github.com/beebytez/hivesearch/internal/config"
	"github.com/beebytez/hivesearch/internal/corpus"
	hiveerr "github.com/beebytez/hivesearch/internal/errors"
	"github.com/beebytez/hivesearch/internal/search"
	"github.com/beebytez/hivesearch/internal/token"
)

// previewLines is how many non-blank lines of a piece each result carries.
const previewLines = 3

// Result is one ranked search hit.
type Result struct {
	// File is the path relative to the search root.
	File string `json:"file"`
	// Rank is 1-based.
	Rank int `json:"rank"`
	// Score is the TF-IDF dot-product relevance; finite and positive.
	Score float64 `json:"score"`
	// Preview holds the first non-blank lines of the piece text.
	Preview string `json:"preview"`
	// StartLine is the 1-based first line of the piece in File.
	StartLine int `json:"start_line"`
}

// QueryResponse is the answer to one BuildAndQuery call.
type QueryResponse struct {
	Query           string   `json:"query"`
	Results         []Result `json:"results"`
	TotalPieces     int      `json:"total_pieces"`
	DuplicatePieces int      `json:"duplicate_pieces"`
	VocabSize       int      `json:"vocab_size"`
	FilesIndexed    int      `json:"files_indexed"`
	FilesSkipped    int      `json:"files_skipped"`
	// BuildTimeMS is the corpus construction time, reported separately
	// from the scoring phase.
	BuildTimeMS int64 `json:"build_time_ms"`
	// QueryTimeUS is the elapsed scoring time in microseconds.
	QueryTimeUS int64 `json:"query_time_us"`

	// BuildTime and QueryTime are the precise durations behind the
	// serialized fields.
	BuildTime time.Duration `json:"-"`
	QueryTime time.Duration `json:"-"`
}

// options collects per-call overrides on top of the loaded config.
type options struct {
	cfg         *config.Config
	extensions  []string
	exclude     []string
	topK        int
	workers     int
	backendMode string
	logger      *slog.Logger
}

// Option configures a BuildAndQuery call.
type Option func(*options)

// WithConfig supplies a pre-loaded configuration, skipping the
// .hivesearch.yaml lookup under the root.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithExtensions overrides the source-file extension allowlist.
func WithExtensions(exts []string) Option {
	return func(o *options) { o.extensions = exts }
}

// WithExclude adds extra exclusion patterns.
func WithExclude(patterns []string) Option {
	return func(o *options) { o.exclude = patterns }
}

// WithTopK overrides the ranked result cutoff.
func WithTopK(k int) Option {
	return func(o *options) { o.topK = k }
}

// WithWorkers caps the worker pool shared by indexing and scoring.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithBackendMode forces the compute backend: "auto", "cpu", or "blas".
func WithBackendMode(mode string) Option {
	return func(o *options) { o.backendMode = mode }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// BuildAndQuery indexes the tree under rootPath and ranks its pieces
// against one to four query terms.
//
// Input validation happens before any filesystem work. A nonexistent or
// unreadable root fails with no partial response. A root with no eligible
// files, or a query whose every term is out of vocabulary, succeeds with
// an empty result list.
func BuildAndQuery(ctx context.Context, rootPath string, terms []string, opts ...Option) (*QueryResponse, error) {
	if err := search.ValidateTerms(terms); err != nil {
		return nil, err
	}
	if rootPath == "" {
		return nil, hiveerr.InvalidInput("root path is empty")
	}

	o := &options{backendMode: backend.ModeAuto, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		loaded, err := config.Load(rootPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	workers := cfg.EffectiveWorkers()
	if o.workers > 0 {
		workers = o.workers
	}
	topK := cfg.Search.TopK
	if o.topK > 0 {
		topK = o.topK
	}
	mode := cfg.Backend.Mode
	if o.backendMode != "" {
		mode = o.backendMode
	}
	extensions := cfg.Paths.Extensions
	if len(o.extensions) > 0 {
		extensions = o.extensions
	}

	builder, err := corpus.NewBuilder(o.logger)
	if err != nil {
		return nil, err
	}
	builder.ChunkLines = cfg.Chunking.Lines
	builder.MinTokenLength = cfg.Chunking.MinTokenLength
	builder.Extensions = extensions
	builder.Exclude = append(append([]string{}, cfg.Paths.Exclude...), o.exclude...)
	builder.MaxFileSize = int64(cfg.Paths.MaxFileSizeKB) * 1024
	builder.Gitignore = *cfg.Paths.RespectGitignore
	builder.Workers = workers

	// Corpus construction is a hard barrier: scoring only starts once the
	// full document-frequency table and every TF-IDF vector exist.
	c, err := builder.Build(ctx, rootPath)
	if err != nil {
		return nil, err
	}

	tok := token.New(cfg.Chunking.MinTokenLength)
	engine := search.NewEngine(c, tok,
		search.WithTopK(topK),
		search.WithWorkers(workers),
		search.WithBackend(backend.Select(mode, len(c.Pieces), cfg.Backend.BLASThreshold)),
		search.WithLogger(o.logger),
	)

	ranked, queryTime, err := engine.Query(ctx, terms)
	if err != nil {
		return nil, err
	}

	resp := &QueryResponse{
		Query:           strings.Join(terms, " "),
		Results:         make([]Result, len(ranked)),
		TotalPieces:     c.Stats.TotalPieces,
		DuplicatePieces: c.Stats.DuplicatePieces,
		VocabSize:       c.Stats.VocabSize,
		FilesIndexed:    c.Stats.FilesIndexed,
		FilesSkipped:    c.Stats.FilesSkipped,
		BuildTime:       c.Stats.BuildTime,
		QueryTime:       queryTime,
		BuildTimeMS:     c.Stats.BuildTime.Milliseconds(),
		QueryTimeUS:     queryTime.Microseconds(),
	}
	for i, r := range ranked {
		resp.Results[i] = Result{
			File:      r.Piece.FilePath,
			Rank:      r.Rank,
			Score:     r.Score,
			Preview:   r.Piece.Preview(previewLines),
			StartLine: r.Piece.StartLine,
		}
	}
	return resp, nil
}
