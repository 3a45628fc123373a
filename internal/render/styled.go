package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lucasnoah/deliverynote/internal/reconcile"
)

// Theme colors the terminal variant of the text report.
type Theme struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// DefaultTheme returns the terminal color theme.
func DefaultTheme() Theme {
	return Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

func (t Theme) category(c reconcile.Category) lipgloss.Style {
	switch c {
	case reconcile.Passed:
		return t.Success
	case reconcile.Failed:
		return t.Error
	case reconcile.NotFound:
		return t.Warning
	default:
		return t.Muted
	}
}

// Styled is Text with the status column colored by category. The words
// and layout are identical; only ANSI styling is added.
func Styled(rep reconcile.Report, t Theme) string {
	var b strings.Builder
	for _, r := range rep.Rows {
		fmt.Fprintf(&b, "%s | %s | %s\n",
			t.Bold.Render(r.ID),
			t.Muted.Render(r.DisplayKind),
			t.category(r.Category).Render(r.Status()))
	}
	b.WriteString("\n")
	for i, l := range summary(rep.Stats) {
		line := l.text()
		if i == 0 {
			line = t.Bold.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
