// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/eosvc/internal/api"
	"github.com/ManuGH/eosvc/internal/config"
	"github.com/ManuGH/eosvc/internal/daemon"
	"github.com/ManuGH/eosvc/internal/health"
	xglog "github.com/ManuGH/eosvc/internal/log"
	"github.com/ManuGH/eosvc/internal/spacetrack"
	"github.com/ManuGH/eosvc/internal/telemetry"
	"github.com/ManuGH/eosvc/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// upstreamStaleAfter bounds how long a failed lookup degrades readiness.
const upstreamStaleAfter = 10 * time.Minute

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP relay (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *rootOptions) error {
	if parent == nil {
		parent = context.Background()
	}

	// Configure logger with safe defaults until config is loaded
	xglog.Configure(xglog.Config{Level: "info", Service: "eosvc", Version: version.Version})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := opts.resolvedConfigPath()
	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", configPath).
			Msg("failed to load configuration")
		return &exitError{code: exitConfig, err: err}
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger = xglog.WithComponent("daemon")

	source := "env+defaults"
	if configPath != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", configPath).
		Msg("configuration loaded")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("startup checks failed")
		return &exitError{code: exitConfig, err: err}
	}

	tracer, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: version.Version,
		Environment:    cfg.Tracing.Environment,
		ExporterType:   cfg.Tracing.Exporter,
		Endpoint:       cfg.Tracing.Endpoint,
		SamplingRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	serverCfg := config.ParseServerConfigForApp(cfg)
	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", serverCfg.ListenAddr).
		Str("metrics_addr", cfg.MetricsListenAddr).
		Str("upstream", config.MaskURL(cfg.SpaceTrack.BaseURL)).
		Bool("credentials", cfg.SpaceTrack.HasCredentials()).
		Bool("tracing", cfg.Tracing.Enabled).
		Msg("starting eosvc")

	holder := config.NewConfigHolder(cfg, loader)
	gateway := spacetrack.NewGateway(holder)

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewCredentialsChecker(holder))
	hm.RegisterChecker(health.NewUpstreamChecker(gateway.LastLookup, upstreamStaleAfter))

	server := api.NewServer(cfg, gateway, hm)

	mgr, err := daemon.NewManager(serverCfg, daemon.Deps{
		Logger:         logger,
		Config:         cfg,
		APIHandler:     server.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    cfg.MetricsListenAddr,
	})
	if err != nil {
		return err
	}

	// LIFO: the session closes before the tracer flushes its last spans.
	mgr.RegisterShutdownHook("tracer_provider", tracer.Shutdown)
	mgr.RegisterShutdownHook("spacetrack_session", func(context.Context) error {
		return gateway.Close()
	})
	mgr.RegisterShutdownHook("config_watcher", func(context.Context) error {
		holder.Stop()
		return nil
	})

	app := daemon.NewApp(logger, mgr, holder)
	app.OnReload(logLevelReloader(cfg.LogLevel))

	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
		return err
	}

	logger.Info().Msg("server exiting")
	return nil
}

// logLevelReloader reconfigures the global logger when a reload changes the
// log level.
func logLevelReloader(initialLevel string) daemon.ReloadFunc {
	current := initialLevel
	return func(cfg config.AppConfig) {
		if cfg.LogLevel == current {
			return
		}
		current = cfg.LogLevel
		xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
		logger := xglog.WithComponent("daemon")
		logger.Info().
			Str("event", "log.level_changed").
			Str("level", cfg.LogLevel).
			Msg("log level updated")
	}
}
