// Package cliui provides the colored status output used by the
// makemigrations CLI: headers, success/error lines, and a summary box for a
// generated migration.
package cliui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginTop(1).
			MarginBottom(1)

	SeparatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func Separator() string {
	return SeparatorStyle.Render(strings.Repeat("─", TerminalWidth()))
}

func Header(text string) string {
	return HeaderStyle.Render(text)
}

func Success(text string) string {
	return SuccessStyle.Render(fmt.Sprintf("✓ %s", text))
}

func Error(text string) string {
	return ErrorStyle.Render(fmt.Sprintf("✗ %s", text))
}

func Dim(text string) string {
	return DimStyle.Render(text)
}

// MigrationSummaryBox renders a summary of a generated migration: its name
// and the list of operation descriptions.
func MigrationSummaryBox(name string, opDescriptions []string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(name)

	var body strings.Builder
	for _, op := range opDescriptions {
		body.WriteString("  • ")
		body.WriteString(op)
		body.WriteString("\n")
	}

	content := fmt.Sprintf("%s\n\n%s", title, strings.TrimRight(body.String(), "\n"))
	return BoxStyle.Render(content)
}
