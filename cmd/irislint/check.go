package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"irislint/internal/config"
	"irislint/internal/diag"
	"irislint/internal/diagfmt"
	"irislint/internal/driver"
	"irislint/internal/source"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file|dir|glob>...",
		Short: "Check Iris files for balanced parentheses",
		Long: `Check one or more Iris files for unmatched ')' and unclosed '('.
Arguments may be files, directories (walked recursively, filtered by extension)
or glob patterns such as 'examples/*.iris'.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Int("context", 0, "lines of context to show around each diagnostic")
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json)")
	cmd.Flags().StringSlice("ext", driver.DefaultExtensions, "file extensions picked up from directories")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().String("ui", "auto", "progress view for batches (auto|on|off)")
	cmd.Flags().Bool("cache", false, "reuse scan results stored in the user cache directory")
	cmd.Flags().Bool("clear-cache", false, "drop stored scan results before checking")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	addScanFlags(cmd)
	return cmd
}

type checkSettings struct {
	format    string
	context   int
	withNotes bool
	fullPath  bool
	quiet     bool
	timings   bool
	ui        uiMode
	useColor  bool
	driver    driver.Options
}

// runCheck executes "check": it resolves settings (defaults < irislint.toml <
// flags), checks every target, renders the results and maps them to the exit
// status.
func runCheck(cmd *cobra.Command, args []string) error {
	// аргументы разобраны, дальше ошибки не про использование
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings, err := resolveCheckSettings(cmd, cfg)
	if err != nil {
		return err
	}

	targets, err := driver.Discover(args, settings.driver.Discover)
	if err != nil {
		return err
	}

	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	settings.driver.Cache = cache

	var res *driver.Result
	if shouldUseTUI(settings.ui, settings.format, len(targets)) {
		res, err = runCheckWithUI(cmd.Context(), cmd.ErrOrStderr(), fmt.Sprintf("checking %d files", len(targets)), targets, settings.driver)
	} else {
		res, err = driver.CheckTargets(cmd.Context(), targets, settings.driver)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	idx := res.Timer.Begin("render")
	err = renderCheck(cmd.OutOrStdout(), cmd.ErrOrStderr(), res, settings)
	res.Timer.End(idx, settings.format)
	if err != nil {
		return err
	}

	if settings.timings {
		fmt.Fprint(cmd.ErrOrStderr(), res.Timer.Summary())
	}

	switch {
	case res.HasEnvErrors():
		return &exitError{code: exitEnvironment, silent: true}
	case res.HasDiagnostics():
		return &exitError{code: exitDiagnostics, silent: true}
	}
	return nil
}

// openCache returns the result cache when --cache is set. --clear-cache drops
// every stored result first; a cache that cannot be opened only disables
// caching, but a failed clear is an error.
func openCache(cmd *cobra.Command) (*driver.ResultCache, error) {
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if !useCache && !clearCache {
		return nil, nil
	}

	cache, err := driver.OpenResultCache("irislint")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: result cache disabled: %v\n", err)
		return nil, nil
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear result cache %s: %w", cache.Dir(), err)
		}
	}
	if !useCache {
		return nil, nil
	}
	return cache, nil
}

func resolveCheckSettings(cmd *cobra.Command, cfg *config.File) (checkSettings, error) {
	var s checkSettings
	var err error

	if s.format, err = cmd.Flags().GetString("format"); err != nil {
		return s, fmt.Errorf("failed to get format flag: %w", err)
	}
	s.format = strings.ToLower(s.format)
	switch s.format {
	case "pretty", "short", "json":
	default:
		return s, fmt.Errorf("unknown format %q (expected pretty|short|json)", s.format)
	}

	if s.context, err = cmd.Flags().GetInt("context"); err != nil {
		return s, fmt.Errorf("failed to get context flag: %w", err)
	}
	if s.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.fullPath, err = cmd.Flags().GetBool("fullpath"); err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if s.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.useColor, err = colorEnabled(cmd); err != nil {
		return s, err
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}

	d := &s.driver
	if d.MaxDiagnostics, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if d.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if d.Discover.Extensions, err = cmd.Flags().GetStringSlice("ext"); err != nil {
		return s, fmt.Errorf("failed to get ext flag: %w", err)
	}
	encValue, err := cmd.Flags().GetString("encoding")
	if err != nil {
		return s, fmt.Errorf("failed to get encoding flag: %w", err)
	}
	if d.Encoding, err = source.ParseEncoding(encValue); err != nil {
		return s, err
	}

	if cfg != nil {
		c := cfg.Config.Check
		if cfg.IsDefined("check", "context") && !cmd.Flags().Changed("context") {
			s.context = c.Context
		}
		if cfg.IsDefined("check", "jobs") && !cmd.Flags().Changed("jobs") {
			d.Jobs = c.Jobs
		}
		if cfg.IsDefined("check", "extensions") && !cmd.Flags().Changed("ext") {
			d.Discover.Extensions = c.Extensions
		}
		d.Discover.Exclude = c.Exclude
	}
	if s.context < 0 {
		return s, fmt.Errorf("--context must be >= 0, got %d", s.context)
	}

	if d.Scan, err = resolveScanOptions(cmd, cfg); err != nil {
		return s, err
	}
	return s, nil
}

func renderCheck(out, errOut io.Writer, res *driver.Result, s checkSettings) error {
	reports := reportsOf(res)
	pathMode := diagfmt.PathModeAuto
	if s.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	switch s.format {
	case "pretty":
		var shown, failed []*diagfmt.FileReport
		for _, r := range reports {
			switch {
			case !r.Loaded:
				failed = append(failed, r)
			case s.quiet && r.OK():
			default:
				shown = append(shown, r)
			}
		}
		opts := diagfmt.PrettyOpts{
			Color:     s.useColor,
			Context:   s.context,
			PathMode:  pathMode,
			ShowNotes: s.withNotes,
		}
		if err := diagfmt.Pretty(out, shown, res.FileSet, opts); err != nil {
			return err
		}
		return diagfmt.Pretty(errOut, failed, res.FileSet, opts)
	case "short":
		return diagfmt.Short(out, reports, res.FileSet, s.withNotes)
	case "json":
		return diagfmt.JSON(out, reports, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     s.withNotes,
		})
	}
	return fmt.Errorf("unknown format: %s", s.format)
}

func reportsOf(res *driver.Result) []*diagfmt.FileReport {
	reports := make([]*diagfmt.FileReport, len(res.Files))
	for i, f := range res.Files {
		bag := f.Bag
		if bag == nil {
			bag = diag.NewBag(0)
		}
		reports[i] = &diagfmt.FileReport{
			File:    f.FileID,
			Path:    f.Path,
			Loaded:  f.Loaded,
			Bag:     bag,
			Balance: f.Scan.Balance,
			Opens:   f.Scan.Opens,
			Closes:  f.Scan.Closes,
		}
	}
	return reports
}
