package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flagger/internal/diagfmt"
	"flagger/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file.flg>",
	Short: "Dump the tokens of a .flg file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer dumpTraceOnPanic()
		g, err := readGlobalFlags(cmd)
		if err != nil {
			return err
		}
		format, err := readFormat(cmd, "pretty", "json")
		if err != nil {
			return err
		}

		res, err := driver.Tokenize(args[0], g.maxDiagnostics)
		if err != nil {
			return fmt.Errorf("tokenize failed: %w", err)
		}
		switch format {
		case "json":
			err = diagfmt.FormatTokensJSON(cmd.OutOrStdout(), res.Tokens)
		default:
			err = diagfmt.FormatTokensPretty(cmd.OutOrStdout(), res.Tokens, res.FileSet)
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
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
