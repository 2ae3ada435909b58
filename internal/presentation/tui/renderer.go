package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// CodeBlock wraps text in a fenced markdown block of the given language.
func CodeBlock(lang, text string) string {
	return "```" + lang + "\n" + text + "\n```\n"
}

// TreeRenderer renders a behavior tree as a markdown code block.
func TreeRenderer() func(string) (string, error) {
	render := NewRenderer()
	return func(tree string) (string, error) {
		return render(CodeBlock("text", tree))
	}
}
