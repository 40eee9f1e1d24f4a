// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command eosvc relays Space-Track TLE history over HTTP.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/version"
	"github.com/spf13/cobra"
)

// envConfigPath names the config file when --config is not given.
const envConfigPath = "EOSVC_CONFIG"

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "eosvc",
		Short:         "Space-Track TLE relay",
		Long:          "eosvc authenticates against Space-Track and relays TLE history for a NORAD catalog number.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML); defaults to $"+envConfigPath)

	root.AddCommand(
		newServeCmd(opts),
		newFetchCmd(opts),
		newHealthcheckCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// resolvedConfigPath applies the --config > $EOSVC_CONFIG precedence.
func (o *rootOptions) resolvedConfigPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(config.ParseString(envConfigPath, ""))
}

func (o *rootOptions) load() (config.AppConfig, error) {
	cfg, err := config.NewLoader(o.resolvedConfigPath(), version.Version).Load()
	if err != nil {
		return cfg, &exitError{code: exitConfig, err: err}
	}
	return cfg, nil
}

const (
	exitFailure  = 1
	exitConfig   = 2
	exitUpstream = 3
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	fmt.Fprintln(os.Stderr, "Error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}
