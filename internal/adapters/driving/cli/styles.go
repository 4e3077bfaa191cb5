package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// renderer styles a single line. plain is the identity.
type renderer interface {
	Render(strs ...string) string
}

type plain struct{}

func (plain) Render(strs ...string) string {
	return strings.Join(strs, " ")
}

// summaryStyles colours the summary lines, one style per outcome.
type summaryStyles struct {
	copied  renderer
	ignored renderer
	skipped renderer
	failed  renderer
	muted   renderer
}

// newSummaryStyles returns coloured styles when w is a terminal and
// plain ones otherwise.
func newSummaryStyles(w io.Writer) summaryStyles {
	if !isTerminal(w) {
		return summaryStyles{copied: plain{}, ignored: plain{}, skipped: plain{}, failed: plain{}, muted: plain{}}
	}
	return summaryStyles{
		copied:  lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true), // Green
		ignored: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),            // Yellow
		skipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),            // Medium gray
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true), // Red
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
