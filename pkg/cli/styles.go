package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/invar-dev/invar/pkg/resolve"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true)
	styleID       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleVersion  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleCategory = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// printChanges renders the diff of a committed resolution.
func printChanges(w io.Writer, changes []resolve.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(w, styleDim.Render("nothing changed"))
		return
	}
	for _, ch := range changes {
		switch {
		case ch.Old == "":
			fmt.Fprintf(w, "  + %s %s\n", styleID.Render(ch.Component.String()), styleVersion.Render(ch.New))
		case ch.New == "":
			fmt.Fprintf(w, "  - %s %s\n", styleID.Render(ch.Component.String()), styleDim.Render(ch.Old))
		default:
			fmt.Fprintf(w, "  ~ %s %s -> %s\n", styleID.Render(ch.Component.String()), styleDim.Render(ch.Old), styleVersion.Render(ch.New))
		}
	}
}
