package cli

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed docs.md
var docsMarkdown string

// docsCommand prints the built-in manual. On a terminal the markdown is
// rendered with glamour; everywhere else (and when rendering fails) the raw
// markdown is printed so the output stays grep-able.
func docsCommand(getenv func(string) string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "print the manual",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out := docsMarkdown
			if colorEnabled(getenv, stdout) {
				if renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
					if rendered, err := renderer.Render(docsMarkdown); err == nil {
						out = rendered
					}
				}
			}
			_, err := fmt.Fprint(stdout, out)
			return err
		},
	}
}
