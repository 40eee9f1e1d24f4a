// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/eosvc/internal/platform/httpx"
	"github.com/spf13/cobra"
)

func newHealthcheckCmd(opts *rootOptions) *cobra.Command {
	var (
		mode    string
		baseURL string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running instance (for container health checks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := healthPath(mode)
			if err != nil {
				return &exitError{code: exitConfig, err: err}
			}

			target := strings.TrimRight(strings.TrimSpace(baseURL), "/")
			if target == "" {
				cfg, err := opts.load()
				if err != nil {
					return err
				}
				target = localBaseURL(cfg.APIListenAddr)
			}

			client := httpx.NewClient(timeout)
			defer client.CloseIdleConnections()

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, target+path, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("healthcheck failed (network): %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("healthcheck failed (status): %s", resp.Status)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Healthcheck successful (%s)\n", mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "ready", "healthcheck mode: ready or live")
	cmd.Flags().StringVar(&baseURL, "url", "", "base URL of the instance (default: derived from the configured listen address)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "check timeout")
	return cmd
}

func healthPath(mode string) (string, error) {
	switch mode {
	case "ready":
		return "/readyz", nil
	case "live":
		return "/healthz", nil
	default:
		return "", fmt.Errorf("unknown healthcheck mode %q (want ready or live)", mode)
	}
}

// localBaseURL turns a listen address into a loopback URL. Wildcard hosts
// are probed on 127.0.0.1.
func localBaseURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://127.0.0.1:8000"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
