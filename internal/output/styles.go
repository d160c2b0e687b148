package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette: single amber accent, matching the hive theme.
const (
	colorAmber  = "214" // rank numbers, highlights
	colorWhite  = "255" // file locations
	colorGray   = "245" // scores, secondary text
	colorDark   = "238" // separators, previews
	colorRed    = "196" // errors
	colorYellow = "220" // warnings
)

// Styles holds the lipgloss styles used for result rendering.
type Styles struct {
	Rank    lipgloss.Style
	File    lipgloss.Style
	Score   lipgloss.Style
	Dim     lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns the style set; with color disabled every style is a
// plain passthrough.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{
			Rank:    plain,
			File:    plain,
			Score:   plain,
			Dim:     plain,
			Warning: plain,
			Error:   plain,
		}
	}
	return Styles{
		Rank:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAmber)),
		File:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorWhite)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorDark)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
	}
}

// isTerminal reports whether out is an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
