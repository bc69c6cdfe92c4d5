package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// renderMarkdown renders markdown content, using glamour for terminal output or plain text otherwise
func renderMarkdown(markdown string, theme string, isTerminal bool) string {
	if !isTerminal {
		return markdown
	}
	rendered, err := glamour.Render(markdown, theme)
	if err != nil {
		// Fall back to plain markdown if rendering fails
		return markdown
	}
	return rendered
}

// printMarkdown renders and prints markdown using the theme of the current context
func printMarkdown(w io.Writer, markdown string, ctx *Context) error {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	_, err := fmt.Fprint(w, renderMarkdown(markdown, ctx.Theme(), tty))
	return err
}
