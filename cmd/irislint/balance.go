package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"irislint/internal/driver"
	"irislint/internal/source"
)

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [flags] <file|dir|glob>...",
		Short: "Print the raw '(' minus ')' count of each file",
		Long: `Print "<file> balance: N" for every file, where N is the number of '('
minus the number of ')' outside strings and comments. N is not re-zeroed when
a ')' has no partner, so it can be 0 for an unbalanced file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBalance,
	}
	addScanFlags(cmd)
	return cmd
}

func runBalance(cmd *cobra.Command, args []string) error {
	// аргументы разобраны, дальше ошибки не про использование
	cmd.SilenceUsage = true

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scanOpts, err := resolveScanOptions(cmd, cfg)
	if err != nil {
		return err
	}
	encValue, err := cmd.Flags().GetString("encoding")
	if err != nil {
		return fmt.Errorf("failed to get encoding flag: %w", err)
	}
	enc, err := source.ParseEncoding(encValue)
	if err != nil {
		return err
	}

	opts := driver.Options{Scan: scanOpts, Encoding: enc}
	if cfg != nil {
		opts.Discover.Extensions = cfg.Config.Check.Extensions
		opts.Discover.Exclude = cfg.Config.Check.Exclude
	}

	res, err := driver.CheckPaths(cmd.Context(), args, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range res.Files {
		if !f.Loaded {
			fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", f.Err)
			continue
		}
		fmt.Fprintf(out, "%s balance: %d\n", f.Path, f.Scan.Balance)
	}
	if res.HasEnvErrors() {
		return &exitError{code: exitEnvironment, silent: true}
	}
	return nil
}
