// Package scanner discovers indexable source files under a root path.
//
// The scanner streams results over a channel so the corpus builder can
// chunk files while the walk is still in progress. Conventional noise
// directories, binary files, oversized files, and files outside the
// extension allowlist are skipped and reported, never fatal; only a
// missing or unreadable root fails the scan.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/beebytez/hivesearch/internal/gitignore"
)

// gitignoreCacheSize bounds the number of cached gitignore matchers so a
// deep tree with many nested .gitignore files cannot grow memory without
// limit.
const gitignoreCacheSize = 256

// Scanner discovers indexable files in a source tree.
type Scanner struct {
	gitignoreCache *lru.Cache[string, *gitignore.Matcher]
}

// New creates a Scanner.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.Matcher](gitignoreCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create gitignore cache: %w", err)
	}
	return &Scanner{gitignoreCache: cache}, nil
}

// Scan validates the root and streams eligible files. The returned channel
// is closed when the walk finishes. Scan fails fast if the root does not
// exist or is not a directory; everything after that is per-file.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	maxFileSize := opts.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}

	allowed := make(map[string]bool)
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	results := make(chan ScanResult, 64)
	go func() {
		defer close(results)
		s.walk(ctx, absRoot, opts, allowed, maxFileSize, results)
	}()

	return results, nil
}

// walk performs the directory traversal.
func (s *Scanner) walk(ctx context.Context, absRoot string, opts *ScanOptions, allowed map[string]bool, maxFileSize int64, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if s.shouldExcludeDir(relPath, absRoot, opts) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}

		if s.shouldExcludeFile(relPath, absRoot, opts) {
			return nil
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(relPath), "."))
		if !allowed[ext] {
			return emit(ctx, results, ScanResult{Skipped: &SkippedFile{Path: relPath, Reason: SkipReasonExtension}})
		}

		info, err := d.Info()
		if err != nil {
			return emit(ctx, results, ScanResult{Skipped: &SkippedFile{Path: relPath, Reason: SkipReasonUnreadable}})
		}
		if info.Size() > maxFileSize {
			return emit(ctx, results, ScanResult{Skipped: &SkippedFile{Path: relPath, Reason: SkipReasonTooLarge}})
		}

		if isBinaryFile(path) {
			return emit(ctx, results, ScanResult{Skipped: &SkippedFile{Path: relPath, Reason: SkipReasonBinary}})
		}

		return emit(ctx, results, ScanResult{File: &FileInfo{
			Path:    relPath,
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}})
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Err: err}:
		case <-ctx.Done():
		}
	}
}

// emit sends one result, honoring cancellation.
func emit(ctx context.Context, results chan<- ScanResult, r ScanResult) error {
	select {
	case results <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shouldExcludeDir checks noise-directory and custom exclusions.
func (s *Scanner) shouldExcludeDir(relPath, absRoot string, opts *ScanOptions) bool {
	base := filepath.Base(relPath)
	for _, name := range defaultExcludeDirs {
		if base == name {
			return true
		}
	}
	// Hidden directories are VCS or tool metadata.
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	if opts.RespectGitignore && s.isGitignored(relPath, absRoot, true) {
		return true
	}
	return false
}

// shouldExcludeFile checks filename exclusions and gitignore.
func (s *Scanner) shouldExcludeFile(relPath, absRoot string, opts *ScanOptions) bool {
	baseName := filepath.Base(relPath)
	if strings.HasPrefix(baseName, ".") {
		return true
	}
	for _, pattern := range opts.ExcludePatterns {
		if matched, _ := filepath.Match(pattern, baseName); matched {
			return true
		}
	}
	if opts.RespectGitignore && s.isGitignored(relPath, absRoot, false) {
		return true
	}
	return false
}

// isBinaryFile sniffs the first 512 bytes for a NUL byte.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	return bytes.Contains(buf[:n], []byte{0})
}

// isGitignored checks the root .gitignore and every nested .gitignore on
// the path to relPath.
func (s *Scanner) isGitignored(relPath, absRoot string, isDir bool) bool {
	if m := s.matcherFor(absRoot, ""); m != nil && m.Match(relPath, isDir) {
		return true
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return false
	}
	currentDir := absRoot
	currentBase := ""
	for _, part := range strings.Split(dir, "/") {
		currentDir = filepath.Join(currentDir, part)
		currentBase = filepath.ToSlash(filepath.Join(currentBase, part))
		if m := s.matcherFor(currentDir, currentBase); m != nil && m.Match(relPath, isDir) {
			return true
		}
	}
	return false
}

// matcherFor returns the cached gitignore matcher for a directory, or nil
// when the directory has no .gitignore.
func (s *Scanner) matcherFor(dir, base string) *gitignore.Matcher {
	if m, ok := s.gitignoreCache.Get(dir); ok {
		return m
	}

	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	m := gitignore.New()
	if err := m.AddFromFile(path, base); err != nil {
		return nil
	}
	s.gitignoreCache.Add(dir, m)
	return m
}

// defaultExcludeDirs are conventional noise directories never worth
// indexing: VCS metadata, dependency trees, and build output.
var defaultExcludeDirs = []string{
	"node_modules",
	"vendor",
	"target",
	"dist",
	"build",
	"out",
	"bin",
	"__pycache__",
	"venv",
	"coverage",
}
