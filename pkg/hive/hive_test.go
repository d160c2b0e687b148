package hive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hiveerr "github.com/beebytez/hivesearch/internal/errors"
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

func TestBuildAndQuery_FindsAuthenticationCode(t *testing.T) {
	dir := t.TempDir()

	// auth.py places the authenticate definition on line 47.
	var sb strings.Builder
	for i := 1; i < 47; i++ {
		sb.WriteString(fmt.Sprintf("# filler line %d\n", i))
	}
	sb.WriteString("def authenticate(user, password):\n")
	sb.WriteString("    return check_password(user, password)\n")

	writeTree(t, dir, map[string]string{
		"auth.py":  sb.String(),
		"shape.py": "def area(radius):\n    return 3.14 * radius * radius\n",
		"io.py":    "def read_file(path):\n    return open(path).read()\n",
	})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"auth", "password"}, WithLogger(discardLogger()))

	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	top := resp.Results[0]
	assert.Equal(t, "auth.py", top.File)
	assert.Equal(t, 1, top.Rank)
	assert.Greater(t, top.Score, 0.0)
	// The winning piece's line range must cover the definition on line 47.
	assert.LessOrEqual(t, top.StartLine, 47)
	assert.NotEmpty(t, top.Preview)
}

func TestBuildAndQuery_EmptyDirectory(t *testing.T) {
	resp, err := BuildAndQuery(context.Background(), t.TempDir(),
		[]string{"anything"}, WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Equal(t, 0, resp.TotalPieces)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.FilesIndexed)
}

func TestBuildAndQuery_AllTermsBelowMinTokenLength(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.go": "package main"})

	// Single-character terms normalize to nothing: valid call, no matches.
	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"a", "b"}, WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Greater(t, resp.TotalPieces, 0)
}

func TestBuildAndQuery_ValidationBeforeFilesystemWork(t *testing.T) {
	// Term validation fires even for a nonexistent root.
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := BuildAndQuery(context.Background(), missing, nil)
	assert.Equal(t, hiveerr.ErrCodeQueryEmpty, hiveerr.CodeOf(err))

	_, err = BuildAndQuery(context.Background(), missing, []string{"a", "b", "c", "d", "e"})
	assert.Equal(t, hiveerr.ErrCodeTooManyTerms, hiveerr.CodeOf(err))

	_, err = BuildAndQuery(context.Background(), "", []string{"term"})
	assert.Equal(t, hiveerr.ErrCodeInvalidInput, hiveerr.CodeOf(err))
}

func TestBuildAndQuery_MissingRootFails(t *testing.T) {
	_, err := BuildAndQuery(context.Background(),
		filepath.Join(t.TempDir(), "missing"), []string{"term"},
		WithLogger(discardLogger()))

	assert.Equal(t, hiveerr.ErrCodeInvalidPath, hiveerr.CodeOf(err))
}

func TestBuildAndQuery_DeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	files := make(map[string]string)
	for _, name := range []string{"auth", "cache", "db", "http", "queue"} {
		files[name+".go"] = "package " + name + "\n\nfunc process_" + name + "() {\n\ttoken_shared\n}\n"
	}
	writeTree(t, dir, files)

	first, err := BuildAndQuery(context.Background(), dir,
		[]string{"token_shared"}, WithWorkers(8), WithLogger(discardLogger()))
	require.NoError(t, err)

	for run := 0; run < 3; run++ {
		resp, err := BuildAndQuery(context.Background(), dir,
			[]string{"token_shared"}, WithWorkers(8), WithLogger(discardLogger()))
		require.NoError(t, err)
		require.Equal(t, len(first.Results), len(resp.Results))
		for i := range resp.Results {
			assert.Equal(t, first.Results[i].File, resp.Results[i].File)
			assert.Equal(t, first.Results[i].StartLine, resp.Results[i].StartLine)
			assert.Equal(t, first.Results[i].Score, resp.Results[i].Score)
		}
	}
}

func TestBuildAndQuery_TopKOption(t *testing.T) {
	dir := t.TempDir()
	files := make(map[string]string)
	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("f%d.go", i)
		files[name] = fmt.Sprintf("needle variant_%d content", i)
	}
	writeTree(t, dir, files)

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithTopK(2), WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, 8, resp.TotalPieces)
}

func TestBuildAndQuery_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"match.go": "needle in go",
		"match.py": "needle in python",
	})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithExtensions([]string{"py"}), WithLogger(discardLogger()))

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "match.py", resp.Results[0].File)
	assert.Equal(t, 1, resp.FilesSkipped)
}

func TestBuildAndQuery_ExcludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"keep.go":     "needle here",
		"skip_gen.go": "needle there",
	})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithExclude([]string{"*_gen.go"}), WithLogger(discardLogger()))

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "keep.go", resp.Results[0].File)
}

func TestBuildAndQuery_CPUBackendMode(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.go": "needle content"})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithBackendMode("cpu"), WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestBuildAndQuery_ReportsStatsAndTimings(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"dup1.go": "identical content",
		"dup2.go": "identical content",
		"uniq.go": "needle content",
	})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Equal(t, "needle", resp.Query)
	assert.Equal(t, 3, resp.FilesIndexed)
	assert.Equal(t, 2, resp.TotalPieces)
	assert.Equal(t, 1, resp.DuplicatePieces)
	assert.Greater(t, resp.VocabSize, 0)
	assert.GreaterOrEqual(t, resp.BuildTime.Nanoseconds(), int64(0))
	assert.GreaterOrEqual(t, resp.QueryTime.Nanoseconds(), int64(0))
}

func TestQueryResponse_JSONShape(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.go": "needle content"})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithLogger(discardLogger()))
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	for _, key := range []string{"query", "results", "total_pieces", "query_time_us", "build_time_ms"} {
		assert.Contains(t, decoded, key)
	}

	results := decoded["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	for _, key := range []string{"file", "rank", "score", "preview", "start_line"} {
		assert.Contains(t, first, key)
	}
}

func TestBuildAndQuery_RespectsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".hivesearch.yaml": "search:\n  top_k: 1\n",
		"a.go":             "needle one",
		"b.go":             "needle two",
	})

	resp, err := BuildAndQuery(context.Background(), dir,
		[]string{"needle"}, WithLogger(discardLogger()))

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}
