package cli

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func versionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the fix-pdf-escape version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			v, ok := cliVersion()
			if !ok {
				return fmt.Errorf("missing CLI version")
			}
			_, err := fmt.Fprintln(stdout, v)
			return err
		},
	}
}

func cliVersion() (string, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "", false
	}
	return bi.Main.Version, true
}
