package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle       = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim         = lipgloss.NewStyle().Foreground(colorDim)
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell        = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styleIconSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

func printError(w io.Writer, id, msg, suggestion string) {
	fmt.Fprintf(w, "%s %s\n", styleIconError.Render(iconError), withElement(id, msg))
	if suggestion != "" {
		fmt.Fprintf(w, "  %s\n", styleDim.Render(suggestion))
	}
}

func printWarning(w io.Writer, id, msg string) {
	fmt.Fprintf(w, "%s %s\n", styleIconWarning.Render(iconWarning), withElement(id, msg))
}

func withElement(id, msg string) string {
	if id == "" {
		return msg
	}
	return "[" + id + "] " + msg
}
