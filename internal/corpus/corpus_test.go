package corpus

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree creates files under dir; keys are slash-relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func build(t *testing.T, root string, mutate func(*Builder)) *Corpus {
	t.Helper()
	b, err := NewBuilder(discardLogger())
	require.NoError(t, err)
	if mutate != nil {
		mutate(b)
	}
	c, err := b.Build(context.Background(), root)
	require.NoError(t, err)
	return c
}

func TestBuild_EmptyRootYieldsEmptyCorpus(t *testing.T) {
	c := build(t, t.TempDir(), nil)

	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.Stats.TotalPieces)
	assert.Equal(t, 0, c.Stats.FilesIndexed)
	assert.Empty(t, c.Terms)
}

func TestBuild_EmptyRootPathFails(t *testing.T) {
	b, err := NewBuilder(discardLogger())
	require.NoError(t, err)

	_, err = b.Build(context.Background(), "")

	assert.Error(t, err)
}

func TestBuild_MissingRootFails(t *testing.T) {
	b, err := NewBuilder(discardLogger())
	require.NoError(t, err)

	_, err = b.Build(context.Background(), filepath.Join(t.TempDir(), "nope"))

	assert.Error(t, err)
}

func TestBuild_PiecesOrderedByPathThenLine(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("some code line here\n", 25)
	writeTree(t, dir, map[string]string{
		"zz.go": "package zz",
		"aa.go": long,
		"mm.go": "package mm",
	})

	c := build(t, dir, func(b *Builder) { b.ChunkLines = 10 })

	require.GreaterOrEqual(t, len(c.Pieces), 4)
	for i := 1; i < len(c.Pieces); i++ {
		prev, cur := c.Pieces[i-1], c.Pieces[i]
		ordered := prev.FilePath < cur.FilePath ||
			(prev.FilePath == cur.FilePath && prev.StartLine < cur.StartLine)
		assert.True(t, ordered, "piece %d out of order: %s:%d after %s:%d",
			i, cur.FilePath, cur.StartLine, prev.FilePath, prev.StartLine)
	}
}

func TestBuild_DeterministicAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	files := make(map[string]string)
	for _, name := range []string{"auth", "cache", "db", "http", "queue", "util"} {
		files[name+".go"] = "package " + name + "\n\nfunc " + name + "Handler() {\n\tprocess(" + name + ")\n}\n"
	}
	writeTree(t, dir, files)

	serial := build(t, dir, func(b *Builder) { b.Workers = 1 })
	parallel := build(t, dir, func(b *Builder) { b.Workers = 8 })

	require.Equal(t, len(serial.Pieces), len(parallel.Pieces))
	assert.Equal(t, serial.Terms, parallel.Terms)
	assert.Equal(t, serial.DocFreq, parallel.DocFreq)
	assert.Equal(t, serial.IDF, parallel.IDF)
	for i := range serial.Pieces {
		assert.Equal(t, serial.Pieces[i].FilePath, parallel.Pieces[i].FilePath)
		assert.Equal(t, serial.Pieces[i].StartLine, parallel.Pieces[i].StartLine)
		assert.True(t, serial.Pieces[i].TFIDF.Equal(parallel.Pieces[i].TFIDF))
	}
}

func TestBuild_DeduplicatesIdenticalPieces(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"copy1.go": "duplicated piece body",
		"copy2.go": "duplicated piece body",
		"other.go": "unique piece body",
	})

	c := build(t, dir, nil)

	assert.Equal(t, 2, c.Stats.TotalPieces)
	assert.Equal(t, 1, c.Stats.DuplicatePieces)
	assert.Equal(t, 3, c.Stats.FilesIndexed)
}

func TestBuild_DocumentFrequencyCountsPiecesNotOccurrences(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		// "fetch" appears 3 times in one piece, once in another.
		"a.go": "fetch fetch fetch",
		"b.go": "fetch other",
	})

	c := build(t, dir, nil)

	idx, ok := c.TermIndex("fetch")
	require.True(t, ok)
	assert.Equal(t, 2, c.DocFreq[idx])
}

func TestBuild_IDFUsesSmoothedLog(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.go": "common rare_one",
		"b.go": "common middle",
		"c.go": "common middle",
	})

	c := build(t, dir, nil)

	require.Equal(t, 3, c.Stats.TotalPieces)
	// idf(t) = ln(1 + N/df): even a term in every piece keeps ln(2) > 0.
	assert.InDelta(t, math.Log(2), c.TermIDF("common"), 1e-12)
	assert.InDelta(t, math.Log(1+3.0/2.0), c.TermIDF("middle"), 1e-12)
	assert.InDelta(t, math.Log(4), c.TermIDF("rare_one"), 1e-12)
	// Rarer terms weigh more.
	assert.Greater(t, c.TermIDF("rare_one"), c.TermIDF("middle"))
	assert.Greater(t, c.TermIDF("middle"), c.TermIDF("common"))
}

func TestBuild_TFIDFVectorsCombineCountAndIDF(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.go": "token token token solo",
		"b.go": "token elsewhere",
	})

	c := build(t, dir, nil)

	require.Equal(t, 2, c.Stats.TotalPieces)
	pieceA := c.Pieces[0]
	require.Equal(t, "a.go", pieceA.FilePath)

	idxToken, ok := c.TermIndex("token")
	require.True(t, ok)
	idxSolo, ok := c.TermIndex("solo")
	require.True(t, ok)

	assert.InDelta(t, 3*c.IDF[idxToken], pieceA.TFIDF.Weight(idxToken), 1e-12)
	assert.InDelta(t, 1*c.IDF[idxSolo], pieceA.TFIDF.Weight(idxSolo), 1e-12)
}

func TestBuild_CountsSkippedFiles(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.go":   "package keep",
		"skip.jpeg": "not indexable",
	})

	c := build(t, dir, nil)

	assert.Equal(t, 1, c.Stats.FilesIndexed)
	assert.Equal(t, 1, c.Stats.FilesSkipped)
}

func TestBuild_CancelledContextFails(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.go": "package a"})

	b, err := NewBuilder(discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Build(ctx, dir)

	assert.Error(t, err)
}

func TestTermIndex_UnknownTerm(t *testing.T) {
	c := build(t, t.TempDir(), nil)

	_, ok := c.TermIndex("missing")
	assert.False(t, ok)
	assert.Equal(t, 0.0, c.TermIDF("missing"))
}
