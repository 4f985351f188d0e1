package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flagger/internal/diag"
	"flagger/internal/diagfmt"
	"flagger/internal/driver"
	"flagger/internal/flagset"
	"flagger/internal/project"
	"flagger/internal/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file.flg|directory>",
	Short: "Print resolved flag values and backing widths",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	resolveCmd.Flags().Int("min-width", 0, "minimum backing width (8|16|32|64|128)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	path := args[0]

	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	format, err := readFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	minWidth, err := readMinWidth(cmd)
	if err != nil {
		return err
	}
	settings, _, err := loadSettings(path, project.Overrides{MinWidth: minWidth})
	if err != nil {
		return err
	}
	opts := driver.DiagnoseOptions{
		MaxDiagnostics: g.maxDiagnostics,
		Resolve:        settings.ResolveOptions(),
		EnableTimings:  g.timings,
	}

	var (
		fs   *source.FileSet
		bag  *diag.Bag
		sets []*flagset.FlagSet
	)
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if st.IsDir() {
		var results []*driver.DiagnoseResult
		fs, results, err = driver.DiagnoseDir(cmd.Context(), path, opts, 0)
		if err != nil {
			return fmt.Errorf("resolve failed: %w", err)
		}
		bags := make([]*diag.Bag, 0, len(results))
		for _, r := range results {
			bags = append(bags, r.Bag)
			sets = append(sets, r.Sets...)
		}
		bag = driver.MergeBags(g.maxDiagnostics, bags...)
	} else {
		res, err := driver.Diagnose(cmd.Context(), path, opts)
		if err != nil {
			return fmt.Errorf("resolve failed: %w", err)
		}
		fs, bag, sets = res.FileSet, res.Bag, res.Sets
	}

	switch format {
	case "json":
		err = diagfmt.FormatResolvedJSON(cmd.OutOrStdout(), sets)
	default:
		err = diagfmt.FormatResolvedPretty(cmd.OutOrStdout(), sets, g.color)
	}
	if err != nil {
		return err
	}
	if err := printDiagnostics(cmd, bag, fs, "pretty", g, false); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func readMinWidth(cmd *cobra.Command) (flagset.Width, error) {
	n, err := cmd.Flags().GetInt("min-width")
	if err != nil {
		return 0, fmt.Errorf("failed to get min-width flag: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	w, err := flagset.WidthOf(n)
	if err != nil {
		return 0, fmt.Errorf("--min-width: %w", err)
	}
	return w, nil
}
