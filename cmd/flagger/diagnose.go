package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flagger/internal/buildpipeline"
	"flagger/internal/project"
	"flagger/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.flg|directory>",
	Short: "Check .flg files and report diagnostics",
	Long: `Run lexing, parsing, collection, resolution and a dry emit over a .flg file
or every .flg file of a directory. Nothing is written. Exits with status 1
when any error is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	path := args[0]

	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	format, err := readFormat(cmd, "pretty", "json", "short")
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	settings, _, err := loadSettings(path, project.Overrides{NoCache: true})
	if err != nil {
		return err
	}

	res, err := buildpipeline.Generate(cmd.Context(), &buildpipeline.GenRequest{
		Path:           path,
		Settings:       settings,
		ToolVersion:    version.Version,
		Jobs:           jobs,
		MaxDiagnostics: g.maxDiagnostics,
		DryRun:         true,
		EnableTimings:  g.timings,
	})
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	if err := printDiagnostics(cmd, res.Bag, res.FileSet, format, g, withNotes); err != nil {
		return err
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	if !g.quiet && format == "pretty" {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d file(s)\n", len(res.Files))
	}
	return nil
}
