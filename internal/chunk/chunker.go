// Package chunk splits file content into fixed line-window pieces.
//
// Windows are purely line-based and language-agnostic: a piece closes when
// the line budget is reached or the input ends. That sometimes splits a
// logical code unit across two pieces, which is acceptable; in exchange the
// chunker needs no parser and treats every text file the same way.
package chunk

import (
	"hash/fnv"
	"strings"

	"github.com/beebytez/hivesearch/internal/token"
	"github.com/beebytez/hivesearch/internal/vector"
)

// DefaultLines is the target line budget per piece.
const DefaultLines = 40

// Piece is one contiguous line-range chunk of a file, the atomic unit of
// indexing and search results. It is created once during chunking and not
// modified afterwards, except for the TFIDF vector which the owning corpus
// fills in after global document frequencies are known.
type Piece struct {
	// FilePath is the path relative to the corpus root.
	FilePath string
	// StartLine and EndLine are 1-based and inclusive; StartLine <= EndLine.
	StartLine int
	EndLine   int
	// Text is the raw piece content.
	Text string
	// Hash is an FNV-1a hash of Text, used for duplicate detection.
	Hash uint64
	// TermFreq maps normalized terms to raw occurrence counts.
	TermFreq map[string]int
	// TFIDF is the weighted vector over the owning corpus vocabulary.
	TFIDF vector.Sparse
}

// Preview returns up to n leading non-blank lines of the piece text.
func (p *Piece) Preview(n int) string {
	var out []string
	for _, line := range strings.Split(p.Text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return strings.Join(out, "\n")
}

// Chunker splits one file into ordered line-bounded pieces.
type Chunker struct {
	lines int
	tok   *token.Tokenizer
}

// New creates a Chunker with the given line budget per piece. A budget
// below 1 falls back to DefaultLines.
func New(lines int, tok *token.Tokenizer) *Chunker {
	if lines < 1 {
		lines = DefaultLines
	}
	return &Chunker{lines: lines, tok: tok}
}

// Split breaks content into consecutive pieces of up to the line budget,
// recording exact 1-based line ranges and tokenizing each piece into a raw
// term-frequency table. A trailing all-blank piece is dropped. Empty
// content yields no pieces.
func (c *Chunker) Split(filePath, content string) []*Piece {
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	pieces := make([]*Piece, 0, (len(lines)+c.lines-1)/c.lines)

	for start := 0; start < len(lines); start += c.lines {
		end := start + c.lines
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.Join(lines[start:end], "\n")

		pieces = append(pieces, &Piece{
			FilePath:  filePath,
			StartLine: start + 1,
			EndLine:   end,
			Text:      text,
			Hash:      hashText(text),
			TermFreq:  token.Frequencies(c.tok.Tokenize(text)),
		})
	}

	// Drop a trailing piece that holds nothing but blank lines.
	if n := len(pieces); n > 0 && isBlank(pieces[n-1].Text) {
		pieces = pieces[:n-1]
	}

	return pieces
}

func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}
