package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flagger/internal/diagfmt"
	"flagger/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.flg>",
	Short: "Dump the parsed flag sets of a .flg file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer dumpTraceOnPanic()
		g, err := readGlobalFlags(cmd)
		if err != nil {
			return err
		}
		format, err := readFormat(cmd, "tree", "json")
		if err != nil {
			return err
		}

		res, err := driver.Parse(args[0], g.maxDiagnostics)
		if err != nil {
			return fmt.Errorf("parse failed: %w", err)
		}
		switch format {
		case "json":
			err = diagfmt.FormatASTJSON(cmd.OutOrStdout(), res.Builder, res.FileID)
		default:
			err = diagfmt.FormatASTPretty(cmd.OutOrStdout(), res.Builder, res.FileID, res.FileSet)
		}
		if err != nil {
			return err
		}
		if err := printDiagnostics(cmd, res.Bag, res.FileSet, "pretty", g, false); err != nil {
			return err
		}
		if res.Bag.HasErrors() {
			return errDiagnostics
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|json)")
}
