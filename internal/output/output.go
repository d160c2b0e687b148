// Package output renders CLI search results and status messages.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates an output Writer. Color is enabled only when out is a
// terminal.
func New(out io.Writer) *Writer {
	return &Writer{out: out, styles: NewStyles(isTerminal(out))}
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Warningf prints a formatted warning line.
func (w *Writer) Warningf(format string, args ...any) {
	_, _ = fmt.Fprintln(w.out, w.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(w.out, w.styles.Error.Render(fmt.Sprintf(format, args...)))
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// Result prints one ranked search hit with its preview block.
func (w *Writer) Result(rank int, score float64, file string, startLine int, preview string) {
	header := fmt.Sprintf("#%d", rank)
	location := fmt.Sprintf("%s:%d", file, startLine)
	_, _ = fmt.Fprintf(w.out, "%s  %s  %s\n",
		w.styles.Rank.Render(header),
		w.styles.File.Render(location),
		w.styles.Score.Render(fmt.Sprintf("score %.4f", score)))

	for _, line := range strings.Split(preview, "\n") {
		_, _ = fmt.Fprintf(w.out, "   %s %s\n", w.styles.Dim.Render("|"), strings.TrimRight(line, " \t"))
	}
}

// Summary prints the build/query statistics footer.
func (w *Writer) Summary(totalPieces, shown int, buildMillis, queryMicros int64) {
	_, _ = fmt.Fprintln(w.out, w.styles.Dim.Render(fmt.Sprintf(
		"%d of %d pieces shown · build %dms · query %dµs",
		shown, totalPieces, buildMillis, queryMicros)))
}
