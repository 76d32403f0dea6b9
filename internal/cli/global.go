package cli

import (
	"flag"
	"io"
	"path/filepath"
)

// global peels the -C flag off the argument list before cobra sees it, so
// every command resolves the target path against the requested directory.
// It returns the absolute root directory and the remaining arguments.
func global(wd string, args []string, stderr io.Writer) (string, []string, error) {
	var changeDir string
	flagSet := flag.NewFlagSet("fix-pdf-escape", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&changeDir, "C", "", "change root directory")
	if err := flagSet.Parse(args); err != nil {
		return "", nil, err
	}
	if filepath.IsAbs(changeDir) {
		return changeDir, flagSet.Args(), nil
	}
	root, err := filepath.Abs(filepath.Join(wd, changeDir))
	if err != nil {
		return "", nil, err
	}
	return root, flagSet.Args(), nil
}
