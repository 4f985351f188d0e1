package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flagger/internal/buildpipeline"
	"flagger/internal/driver"
	"flagger/internal/emit"
	"flagger/internal/project"
	"flagger/internal/version"
)

var genCmd = &cobra.Command{
	Use:   "gen [flags] <file.flg|directory>",
	Short: "Generate Go code from .flg files",
	Long: `Generate one Go file per .flg input. A directory is walked for .flg files,
skipping testdata and directories starting with "." or "_".
Outputs are only rewritten when their content changes.`,
	Example: `  //go:generate flagger gen perms.flg
  flagger gen ./internal --jobs 4
  flagger gen perms.flg -o perms_gen.go --package access`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringP("output", "o", "", "output file (single input only)")
	genCmd.Flags().String("package", "", "package clause of generated files")
	genCmd.Flags().Int("jobs", 0, "max parallel workers (0=GOMAXPROCS)")
	ui := uiModeOff
	genCmd.Flags().Var(&ui, "ui", "progress UI (auto|on|off)")
	genCmd.Flags().Bool("watch", false, "regenerate whenever a .flg file changes")
	genCmd.Flags().Bool("no-cache", false, "bypass the generation cache")
	genCmd.Flags().Bool("clear-cache", false, "drop every cached generation before running")
	genCmd.Flags().Bool("dry-run", false, "print generated code instead of writing it")
	genCmd.Flags().Int("min-width", 0, "minimum backing width (8|16|32|64|128)")
}

type genFlags struct {
	output  string
	pkg     string
	jobs    int
	ui         uiMode
	watch      bool
	noCache    bool
	clearCache bool
	dryRun     bool
}

func readGenFlags(cmd *cobra.Command) (genFlags, error) {
	var (
		f   genFlags
		err error
	)
	if f.output, err = cmd.Flags().GetString("output"); err != nil {
		return f, fmt.Errorf("failed to get output flag: %w", err)
	}
	if f.pkg, err = cmd.Flags().GetString("package"); err != nil {
		return f, fmt.Errorf("failed to get package flag: %w", err)
	}
	if f.pkg != "" {
		if err := emit.ValidatePackage(f.pkg); err != nil {
			return f, fmt.Errorf("--package: %w", err)
		}
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	f.ui = uiModeOff
	if mode, ok := cmd.Flags().Lookup("ui").Value.(*uiMode); ok {
		f.ui = *mode
	}
	if f.watch, err = cmd.Flags().GetBool("watch"); err != nil {
		return f, fmt.Errorf("failed to get watch flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if f.clearCache, err = cmd.Flags().GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if f.dryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return f, fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	return f, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()
	path := args[0]

	g, err := readGlobalFlags(cmd)
	if err != nil {
		return err
	}
	f, err := readGenFlags(cmd)
	if err != nil {
		return err
	}
	minWidth, err := readMinWidth(cmd)
	if err != nil {
		return err
	}
	settings, _, err := loadSettings(path, project.Overrides{Package: f.pkg, MinWidth: minWidth, NoCache: f.noCache})
	if err != nil {
		return err
	}

	req := &buildpipeline.GenRequest{
		Path:           path,
		Output:         f.output,
		Settings:       settings,
		ToolVersion:    version.Version,
		Jobs:           f.jobs,
		MaxDiagnostics: g.maxDiagnostics,
		DryRun:         f.dryRun,
		EnableTimings:  g.timings,
	}
	if settings.Cache || f.clearCache {
		cache, err := driver.OpenDiskCache("flagger")
		if err != nil {
			// без кэша всё равно работаем
			if !g.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
			}
		} else {
			if f.clearCache {
				if err := cache.DropAll(); err != nil {
					return err
				}
				if !g.quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "cleared cache %s\n", cache.Dir())
				}
			}
			if settings.Cache {
				req.Cache = cache
			}
		}
	}

	useTUI := progressUI(f)
	once := func(ctx context.Context) error {
		res, err := generate(ctx, req, useTUI)
		if err != nil {
			return err
		}
		return reportGen(cmd, res, g, f.dryRun)
	}

	if !f.watch {
		return once(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if err := once(ctx); err != nil && !isDiagnosticsErr(err) {
		return err
	}
	if !g.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c to stop)\n", path)
	}
	err = driver.Watch(ctx, path, driver.WatchOptions{
		OnError: func(err error) { fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err) },
	}, func(ctx context.Context, changed []string) error {
		if !g.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "changed: %s\n", strings.Join(changed, ", "))
		}
		if err := once(ctx); err != nil && !isDiagnosticsErr(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "flagger: %v\n", err)
		}
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func generate(ctx context.Context, req *buildpipeline.GenRequest, useTUI bool) (*buildpipeline.GenResult, error) {
	if !useTUI {
		return buildpipeline.Generate(ctx, req)
	}
	files, _, err := driver.Inputs(req.Path)
	if err != nil {
		return nil, err
	}
	return runGenWithUI(ctx, "flagger gen "+req.Path, files, req)
}

func reportGen(cmd *cobra.Command, res *buildpipeline.GenResult, g globalFlags, dryRun bool) error {
	if err := printDiagnostics(cmd, res.Bag, res.FileSet, "pretty", g, g.timings); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dryRun {
		for _, file := range res.Files {
			if file.Output == nil {
				continue
			}
			if len(res.Files) > 1 {
				fmt.Fprintf(out, "// ==> %s\n", file.Output.Path)
			}
			if _, err := out.Write(file.Output.Code); err != nil {
				return err
			}
		}
	} else if !g.quiet {
		cached := 0
		for _, file := range res.Files {
			if file.Cached {
				cached++
			}
		}
		for _, p := range res.Written() {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", displayPath(res.FileSet.BaseDir(), p))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s), %d written, %d from cache\n", len(res.Files), len(res.Written()), cached)
	}
	if g.timings {
		printStageTimings(cmd.ErrOrStderr(), res.Timings)
	}
	if res.HasErrors() {
		return errDiagnostics
	}
	return nil
}

func isDiagnosticsErr(err error) bool {
	return err == errDiagnostics
}

func displayPath(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
