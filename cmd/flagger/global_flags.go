package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"flagger/internal/diag"
	"flagger/internal/diagfmt"
	"flagger/internal/source"
)

type globalFlags struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readGlobalFlags(cmd *cobra.Command) (globalFlags, error) {
	pf := cmd.Root().PersistentFlags()
	colorFlag, err := pf.GetString("color")
	if err != nil {
		return globalFlags{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := resolveColor(colorFlag, os.Stdout)
	if err != nil {
		return globalFlags{}, err
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return globalFlags{}, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := pf.GetBool("timings")
	if err != nil {
		return globalFlags{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiagnostics, err := pf.GetInt("max-diagnostics")
	if err != nil {
		return globalFlags{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return globalFlags{color: useColor, quiet: quiet, timings: timings, maxDiagnostics: maxDiagnostics}, nil
}

func resolveColor(value string, out *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return isTerminal(out), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

func readFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (must be %s)", format, strings.Join(allowed, "|"))
}

// printDiagnostics renders bag in the chosen format. Pretty output goes to
// stderr so that generated listings on stdout stay clean.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, format string, g globalFlags, withNotes bool) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	var out io.Writer = cmd.OutOrStdout()
	switch format {
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeAuto,
			IncludeNotes:     withNotes,
			IncludeFixes:     true,
		})
	case "short":
		if s := diag.FormatShortDiagnostics(bag.Items(), fs, withNotes); s != "" {
			fmt.Fprintln(out, s)
		}
		return nil
	default:
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{
			Color:     g.color,
			Context:   1,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: withNotes,
			ShowFixes: true,
		})
		return nil
	}
}

// errDiagnostics signals exit status 1 after diagnostics were printed.
var errDiagnostics = errors.New("errors reported")
