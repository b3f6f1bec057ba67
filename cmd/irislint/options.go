package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"irislint/internal/balance"
	"irislint/internal/config"
)

// addScanFlags registers the lexical rule flags shared by check and balance.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("comment", balance.DefaultCommentMarker, "line comment marker")
	cmd.Flags().String("strings", "span", "string literal policy at newline (span|line)")
	cmd.Flags().String("encoding", "utf-8", "input encoding (utf-8|utf-16|windows-1252|latin1)")
}

// loadConfig returns the --config file or the nearest irislint.toml. A nil
// File means there is no configuration.
func loadConfig(cmd *cobra.Command) (*config.File, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	f, _, err := config.Discover(wd)
	return f, err
}

// resolveScanOptions applies defaults, then the config file, then flags that
// were set explicitly.
func resolveScanOptions(cmd *cobra.Command, cfg *config.File) (balance.Options, error) {
	opts := balance.DefaultOptions()
	if cfg != nil {
		fileOpts, err := cfg.Config.ScanOptions()
		if err != nil {
			return opts, err
		}
		if cfg.IsDefined("scan", "comment") {
			opts.CommentMarker = fileOpts.CommentMarker
		}
		if cfg.IsDefined("scan", "strings") {
			opts.Strings = fileOpts.Strings
		}
	}

	if cmd.Flags().Changed("comment") {
		marker, err := cmd.Flags().GetString("comment")
		if err != nil {
			return opts, fmt.Errorf("failed to get comment flag: %w", err)
		}
		opts.CommentMarker = marker
	}
	if cmd.Flags().Changed("strings") {
		value, err := cmd.Flags().GetString("strings")
		if err != nil {
			return opts, fmt.Errorf("failed to get strings flag: %w", err)
		}
		policy, err := balance.ParseStringPolicy(value)
		if err != nil {
			return opts, err
		}
		opts.Strings = policy
	}

	if opts.CommentMarker == "" {
		return opts, fmt.Errorf("comment marker must not be empty")
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
