// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	xglog "github.com/ManuGH/eosvc/internal/log"
	"github.com/ManuGH/eosvc/internal/spacetrack"
	"github.com/spf13/cobra"
)

func newFetchCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <norad_id>",
		Short: "Fetch TLE history once and print it",
		Long: `Logs in to Space-Track, queries the TLE history of one catalog object and
prints the relayed result as JSON (or the raw TLE text with --raw).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noradID, err := strconv.Atoi(args[0])
			if err != nil {
				return &exitError{code: exitConfig, err: fmt.Errorf("invalid norad_id %q: must be an integer", args[0])}
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			// stdout carries the result; logs go to stderr.
			xglog.Configure(xglog.Config{
				Level:   cfg.LogLevel,
				Service: cfg.LogService,
				Version: cfg.Version,
				Output:  cmd.ErrOrStderr(),
			})

			gateway := spacetrack.NewGateway(spacetrack.StaticSettings(cfg.SpaceTrack))
			defer func() { _ = gateway.Close() }()

			history, err := gateway.FetchHistory(cmd.Context(), noradID, limit)
			if err != nil {
				return fetchError(err)
			}
			return printHistory(cmd.OutOrStdout(), history, raw)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", spacetrack.DefaultLimit,
		fmt.Sprintf("maximum number of TLE records (%d-%d)", spacetrack.MinLimit, spacetrack.MaxLimit))
	cmd.Flags().BoolVar(&raw, "raw", false, "print the TLE text only")
	return cmd
}

func fetchError(err error) error {
	switch {
	case errors.Is(err, spacetrack.ErrInvalidQuery), errors.Is(err, spacetrack.ErrNotConfigured):
		return &exitError{code: exitConfig, err: err}
	default:
		return &exitError{code: exitUpstream, err: err}
	}
}

func printHistory(w io.Writer, h spacetrack.History, raw bool) error {
	if raw {
		_, err := io.WriteString(w, h.TLE)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
