// Package gitignore implements the subset of gitignore pattern syntax the
// scanner needs to keep ignored files out of the corpus: literal names,
// globs, ** wildcards, trailing-/ directory patterns, leading-/ anchors,
// and ! negation. See https://git-scm.com/docs/gitignore.
package gitignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Matcher holds compiled gitignore patterns. A Matcher is immutable after
// loading and safe for concurrent Match calls.
type Matcher struct {
	rules []rule
}

// rule is a single compiled gitignore pattern.
type rule struct {
	regex    *regexp.Regexp
	negation bool
	dirOnly  bool
	anchored bool
	// base restricts the rule to paths under this directory, for nested
	// .gitignore files. Empty means the rule applies from the root.
	base string
}

// New creates an empty Matcher.
func New() *Matcher {
	return &Matcher{}
}

// AddPattern adds a single gitignore pattern applying from the root.
func (m *Matcher) AddPattern(pattern string) {
	m.addPattern(pattern, "")
}

// AddFromFile loads patterns from a gitignore file. base is the directory
// the file lives in, relative to the scan root ("" for the root file).
func (m *Matcher) AddFromFile(path, base string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open gitignore: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.addPattern(sc.Text(), base)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read gitignore: %w", err)
	}
	return nil
}

func (m *Matcher) addPattern(pattern, base string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}

	r := rule{base: filepath.ToSlash(base)}

	if strings.HasPrefix(pattern, "!") {
		r.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	// A slash anywhere else in the pattern also anchors it to the base:
	// "doc/frotz" means "/doc/frotz", not "**/doc/frotz".
	if strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**/") {
		r.anchored = true
	}

	r.regex = regexp.MustCompile("^" + patternToRegex(pattern) + "$")
	m.rules = append(m.rules, r)
}

// Match reports whether path (slash-separated, relative to the scan root)
// is ignored. Later rules override earlier ones, so negations work.
func (m *Matcher) Match(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, r := range m.rules {
		if r.match(path, isDir) {
			ignored = !r.negation
		}
	}
	return ignored
}

func (r rule) match(path string, isDir bool) bool {
	if r.base != "" {
		if !strings.HasPrefix(path, r.base+"/") {
			return false
		}
		path = strings.TrimPrefix(path, r.base+"/")
	}

	parts := strings.Split(path, "/")

	if r.anchored {
		if r.regex.MatchString(path) {
			return !r.dirOnly || isDir
		}
		// A matched directory ignores everything inside it.
		for i := range parts[:len(parts)-1] {
			if r.regex.MatchString(strings.Join(parts[:i+1], "/")) {
				return true
			}
		}
		return false
	}

	// Unanchored: try the basename, the full path, and every directory
	// component (a matched parent directory ignores its contents).
	for i, part := range parts {
		if r.regex.MatchString(part) {
			if i == len(parts)-1 {
				return !r.dirOnly || isDir
			}
			return true
		}
	}
	return r.regex.MatchString(path)
}

// patternToRegex converts a gitignore glob to a regular expression.
func patternToRegex(pattern string) string {
	var b strings.Builder

	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '*':
			if strings.HasPrefix(pattern[i:], "**/") {
				b.WriteString("(?:.*/)?")
				i += 3
				continue
			}
			if strings.HasPrefix(pattern[i:], "**") {
				b.WriteString(".*")
				i += 2
				continue
			}
			b.WriteString("[^/]*")
			i++
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			if j := strings.IndexByte(pattern[i:], ']'); j > 0 {
				b.WriteString(pattern[i : i+j+1])
				i += j + 1
			} else {
				b.WriteString(regexp.QuoteMeta(string(c)))
				i++
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}
