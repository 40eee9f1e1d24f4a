// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ManuGH/eosvc/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var format string

	dump := func(cmd *cobra.Command, _ []string) error {
		cfg, err := opts.load()
		if err != nil {
			return err
		}
		return writeMasked(cmd.OutOrStdout(), cfg, format)
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE:  dump,
	}
	cmd.PersistentFlags().StringVar(&format, "format", "yaml", "output format: yaml or json")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "dump",
			Short: "Print the effective configuration with secrets masked",
			Args:  cobra.NoArgs,
			RunE:  dump,
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Load and validate the configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := opts.load(); err != nil {
					return err
				}
				source := opts.resolvedConfigPath()
				if source == "" {
					source = "environment"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", source)
				return nil
			},
		},
	)
	return cmd
}

func writeMasked(w io.Writer, cfg config.AppConfig, format string) error {
	masked := config.MaskSecrets(cfg)
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(masked); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(masked)
	default:
		return &exitError{code: exitConfig, err: fmt.Errorf("unsupported format %q (want yaml or json)", format)}
	}
}
