package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/etraffic/fix-pdf-escape/internal/patch"
)

// targetFile is the one file this tool rewrites. The path is fixed at
// authoring time and resolved against the working directory, or against the
// -C directory when one is given.
const targetFile = "client/src/pages/admin/Reports.js"

// The two success lines are a contract: deployment scripts match on them,
// so they never change and never carry details. Details go to stderr.
const (
	updatedMessage      = "File updated successfully!"
	replacementsMessage = "Replacements made"
)

const (
	dryRunFlag  = "dry-run"
	verboseFlag = "verbose"
)

// Commands runs the fix-pdf-escape command line. wd is the directory the
// target path resolves against, args are the program arguments without the
// program name, getenv looks up environment variables, and stdout and
// stderr receive output. Callers own process exit.
func Commands(wd string, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	root, rest, err := global(wd, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return rootCommand(wd, getenv, stdout, stderr).Help()
		}
		return err
	}
	cmd := rootCommand(root, getenv, stdout, stderr)
	// cobra falls back to os.Args when SetArgs gets nil
	if rest == nil {
		rest = []string{}
	}
	cmd.SetArgs(rest)
	return cmd.Execute()
}

func rootCommand(root string, getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix-pdf-escape",
		Short: "remove HTML escaping from the admin Reports page",
		Long: "fix-pdf-escape rewrites " + targetFile + " in place,\n" +
			"replacing the HTML-escaping chain the report generator emits with a bare\n" +
			"return so text renders correctly in exported PDFs. Run it with no\n" +
			"arguments from the repository root (or pass -C) to apply the fix.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return runPatch(root, patchConfiguration{}, getenv, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.AddCommand(
		patchCommand(root, getenv, stdout, stderr),
		checkCommand(root, stderr),
		docsCommand(getenv, stdout),
		versionCommand(stdout),
	)
	return cmd
}

type patchConfiguration struct {
	dryRun  bool
	verbose bool
}

func newPatchConfiguration(args []string, stderr io.Writer) (patchConfiguration, error) {
	var config patchConfiguration
	flagSet := pflag.NewFlagSet("patch", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&config.dryRun, dryRunFlag, false, "print the pending change as a diff instead of writing it")
	flagSet.BoolVar(&config.verbose, verboseFlag, false, "log run details to stderr")
	if err := flagSet.Parse(args); err != nil {
		return config, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return config, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return config, nil
}

func patchCommand(root string, getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "patch [--" + dryRunFlag + "] [--" + verboseFlag + "]",
		Short:              "rewrite the Reports page in place (the default command)",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newPatchConfiguration(args, stderr)
			if err != nil {
				if errors.Is(err, pflag.ErrHelp) {
					return nil
				}
				return err
			}
			return runPatch(root, config, getenv, stdout, stderr)
		},
	}
}

type checkConfiguration struct {
	verbose bool
}

func newCheckConfiguration(args []string, stderr io.Writer) (checkConfiguration, error) {
	var config checkConfiguration
	flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&config.verbose, verboseFlag, false, "log the scan result even when the page is clean")
	if err := flagSet.Parse(args); err != nil {
		return config, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return config, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return config, nil
}

func checkCommand(root string, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:                "check [--" + verboseFlag + "]",
		Short:              "report whether the escape chain is present, without writing",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := newCheckConfiguration(args, stderr)
			if err != nil {
				if errors.Is(err, pflag.ErrHelp) {
					return nil
				}
				return err
			}
			return runCheck(root, config, stderr)
		},
	}
}

func runPatch(root string, config patchConfiguration, getenv func(string) string, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, config.verbose)
	target := filepath.Join(root, filepath.FromSlash(targetFile))
	if config.dryRun {
		return previewPatch(target, logger, getenv, stdout)
	}
	outcome, err := patch.File(target, patch.EscapeChain)
	if err != nil {
		return err
	}
	logger.Debug("rewrote target", "path", outcome.Path, "replacements", outcome.Replacements, "changed", outcome.Changed)
	if _, err := fmt.Fprintln(stdout, updatedMessage); err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, replacementsMessage)
	return err
}

func previewPatch(target string, logger *log.Logger, getenv func(string) string, stdout io.Writer) error {
	content, err := patch.Load(target)
	if err != nil {
		return err
	}
	replaced, count := patch.EscapeChain.Apply(content)
	if count == 0 {
		logger.Info("escape chain not found, nothing to rewrite", "path", target)
		return nil
	}
	logger.Debug("previewing rewrite", "path", target, "replacements", count)
	_, err = io.WriteString(stdout, patch.Preview(content, replaced, colorEnabled(getenv, stdout)))
	return err
}

func runCheck(root string, config checkConfiguration, stderr io.Writer) error {
	logger := newLogger(stderr, config.verbose)
	target := filepath.Join(root, filepath.FromSlash(targetFile))
	occurrences, err := patch.Scan(target, patch.EscapeChain)
	if err != nil {
		return err
	}
	if len(occurrences) == 0 {
		if config.verbose {
			logger.Info("OK", "path", target)
		}
		return nil
	}
	for _, line := range occurrences {
		logger.Error("escape chain present", "location", fmt.Sprintf("%s:%d", targetFile, line))
	}
	return fmt.Errorf("found %d occurrence(s) of the escape chain in %s", len(occurrences), targetFile)
}

func newLogger(stderr io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}

// colorEnabled reports whether stdout can take ANSI color. NO_COLOR wins
// over terminal detection.
func colorEnabled(getenv func(string) string, stdout io.Writer) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd())
}
