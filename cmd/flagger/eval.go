package main

import (
	"github.com/spf13/cobra"

	"flagger/internal/diagfmt"
	"flagger/internal/driver"
	"flagger/internal/project"
)

var evalCmd = &cobra.Command{
	Use:   "eval <file.flg> <Set> <expr>",
	Short: "Evaluate a discriminant expression against a resolved set",
	Long: `Evaluate an expression written in discriminant syntax, e.g.
'Self::Read | Self::Exec', against a set of the file. Prints the value and
whether it has any or all bits of every flag.`,
	Example: `  flagger eval perms.flg Perms 'Self::Read | Self::Write'`,
	Args:    cobra.ExactArgs(3),
	RunE:    runEval,
}

func init() {
	evalCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runEval(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	path, setName, exprText := args[0], args[1], args[2]

	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	format, err := readFormat(cmd, "pretty", "json")
	if err != nil {
		return err
	}
	settings, _, err := loadSettings(path, project.Overrides{})
	if err != nil {
		return err
	}

	res, err := driver.Eval(cmd.Context(), path, setName, exprText, driver.DiagnoseOptions{
		MaxDiagnostics: g.maxDiagnostics,
		Resolve:        settings.ResolveOptions(),
	})
	if err != nil {
		return err
	}
	if !res.OK {
		if err := printDiagnostics(cmd, res.Diagnose.Bag, res.Diagnose.FileSet, "pretty", g, true); err != nil {
			return err
		}
		return errDiagnostics
	}

	switch format {
	case "json":
		return diagfmt.FormatEvalJSON(cmd.OutOrStdout(), res.Set, exprText, res.Value, res.Queries)
	default:
		return diagfmt.FormatEvalPretty(cmd.OutOrStdout(), res.Set, exprText, res.Value, res.Queries)
	}
}
