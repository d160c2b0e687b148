package corpus

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/beebytez/hivesearch/internal/chunk"
	hiveerr "github.com/beebytez/hivesearch/internal/errors"
	"github.com/beebytez/hivesearch/internal/scanner"
	"github.com/beebytez/hivesearch/internal/token"
)

// Builder constructs a Corpus from a root path.
//
// Files are chunked and tokenized in parallel across a bounded worker
// pool; each worker produces a self-contained per-file result and never
// touches shared vocabulary state. A single coordinator pass then merges
// the per-file results in sorted file-path order, which makes term index
// assignment, document frequencies, and piece ordering deterministic no
// matter how the pool scheduled the work.
type Builder struct {
	ChunkLines     int
	MinTokenLength int
	Extensions     []string
	Exclude        []string
	MaxFileSize    int64
	Gitignore      bool
	Workers        int

	scanner *scanner.Scanner
	logger  *slog.Logger
}

// fileResult is one worker's output for a single file.
type fileResult struct {
	path   string
	pieces []*chunk.Piece
	failed bool
}

// NewBuilder creates a Builder. Zero-valued tunables fall back to their
// defaults during Build.
func NewBuilder(logger *slog.Logger) (*Builder, error) {
	sc, err := scanner.New()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		ChunkLines:     chunk.DefaultLines,
		MinTokenLength: token.DefaultMinLength,
		Gitignore:      true,
		scanner:        sc,
		logger:         logger,
	}, nil
}

// Build walks root, chunks every eligible file, and assembles the corpus.
// It fails fast when root is missing or unreadable and returns no partial
// result in that case. A root with zero eligible files yields an empty
// corpus, not an error.
func (b *Builder) Build(ctx context.Context, root string) (*Corpus, error) {
	start := time.Now()

	if root == "" {
		return nil, hiveerr.InvalidInput("root path is empty")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, hiveerr.PathError("cannot resolve root path", err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, hiveerr.PathError("root path not accessible: "+root, err)
	}

	files, err := b.scanner.Scan(ctx, &scanner.ScanOptions{
		RootDir:          absRoot,
		Extensions:       b.Extensions,
		ExcludePatterns:  b.Exclude,
		MaxFileSize:      b.MaxFileSize,
		RespectGitignore: b.Gitignore,
	})
	if err != nil {
		return nil, hiveerr.PathError("scan failed for "+root, err)
	}

	workers := b.Workers
	if workers < 1 {
		workers = defaultWorkers()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, hiveerr.InternalError("create worker pool", err)
	}
	defer pool.Release()

	tok := token.New(b.MinTokenLength)
	chunker := chunk.New(b.ChunkLines, tok)

	var (
		mu      sync.Mutex
		results []fileResult
		skipped int
		wg      sync.WaitGroup
	)

	collect := func(r fileResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for res := range files {
			switch {
			case res.Err != nil:
				return res.Err
			case res.Skipped != nil:
				mu.Lock()
				skipped++
				mu.Unlock()
				b.logger.Debug("file skipped",
					slog.String("path", res.Skipped.Path),
					slog.String("reason", string(res.Skipped.Reason)))
			case res.File != nil:
				file := res.File
				wg.Add(1)
				task := func() {
					defer wg.Done()
					collect(b.chunkFile(chunker, file))
				}
				if err := pool.Submit(task); err != nil {
					// Pool rejected the task; do the work inline.
					task()
				}
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		wg.Wait()
		return nil, hiveerr.Wrap(hiveerr.ErrCodeIndexFailed, err)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, hiveerr.Wrap(hiveerr.ErrCodeIndexFailed, err)
	}

	c := merge(absRoot, results)
	c.Stats.FilesSkipped += skipped
	c.Stats.BuildTime = time.Since(start)

	b.logger.Info("corpus built",
		slog.String("root", absRoot),
		slog.Int("files", c.Stats.FilesIndexed),
		slog.Int("skipped", c.Stats.FilesSkipped),
		slog.Int("pieces", c.Stats.TotalPieces),
		slog.Int("duplicates", c.Stats.DuplicatePieces),
		slog.Int("vocab", c.Stats.VocabSize),
		slog.Duration("elapsed", c.Stats.BuildTime))

	return c, nil
}

// chunkFile reads and chunks one file. Read failures mark the file as
// skipped; they never abort the build.
func (b *Builder) chunkFile(chunker *chunk.Chunker, file *scanner.FileInfo) fileResult {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		b.logger.Debug("file unreadable",
			slog.String("path", file.Path),
			slog.String("error", err.Error()))
		return fileResult{path: file.Path, failed: true}
	}
	return fileResult{
		path:   file.Path,
		pieces: chunker.Split(file.Path, string(data)),
	}
}

// merge is the single coordinator pass over per-file results. It runs on
// one goroutine after every worker has finished: vocabulary, document
// frequencies, and the ordered piece list are built here and nowhere
// else, so there are never concurrent writers to shared index state.
func merge(root string, results []fileResult) *Corpus {
	sort.Slice(results, func(i, j int) bool {
		return results[i].path < results[j].path
	})

	c := &Corpus{
		Root:  root,
		Vocab: make(map[string]int),
	}

	seen := make(map[uint64]bool)
	for _, r := range results {
		if r.failed {
			c.Stats.FilesSkipped++
			continue
		}
		c.Stats.FilesIndexed++
		for _, p := range r.pieces {
			if seen[p.Hash] {
				c.Stats.DuplicatePieces++
				continue
			}
			seen[p.Hash] = true
			c.Pieces = append(c.Pieces, p)

			// Terms within a piece are merged in sorted order so index
			// assignment does not depend on map iteration.
			for _, term := range sortedTerms(p.TermFreq) {
				idx, ok := c.Vocab[term]
				if !ok {
					idx = len(c.Terms)
					c.Vocab[term] = idx
					c.Terms = append(c.Terms, term)
					c.DocFreq = append(c.DocFreq, 0)
				}
				c.DocFreq[idx]++
			}
		}
	}

	n := len(c.Pieces)
	c.IDF = make([]float64, len(c.Terms))
	for i, df := range c.DocFreq {
		c.IDF[i] = idf(n, df)
	}
	for _, p := range c.Pieces {
		weigh(p, c.Vocab, c.IDF)
	}

	c.Stats.TotalPieces = n
	c.Stats.VocabSize = len(c.Terms)
	return c
}

func defaultWorkers() int {
	return runtime.NumCPU()
}

func sortedTerms(freq map[string]int) []string {
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
