package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/takashialpha/motmot/internal/acceptloop"
	"github.com/takashialpha/motmot/internal/config"
	"github.com/takashialpha/motmot/internal/dispatch"
	"github.com/takashialpha/motmot/internal/h3driver"
	"github.com/takashialpha/motmot/internal/logging"
	"github.com/takashialpha/motmot/internal/metrics"
	"github.com/takashialpha/motmot/internal/netendpoint"
	"github.com/takashialpha/motmot/internal/signalctl"
	"github.com/takashialpha/motmot/internal/tlsprovider"
)

// run loads configPath, installs a Generation, and runs every configured
// server until shutdown. A reload (SIGHUP) drains every server, reloads
// the file from disk, and starts the next generation. run returns nil
// once shutdown wins, and an error as soon as loading the config fails or
// any server of a generation stopped with an error, on the first
// generation or after any reload.
func run(ctx context.Context, configPath string) error {
	defer logging.Sync()

	sig := signalctl.New()

	for {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("motmotd: load config: %w", err)
		}
		// Configure must run before the first logger-dependent call of
		// this generation: it rebuilds the root zap logger in place, so
		// any logger already handed out (e.g. from a previous
		// generation) keeps writing through its own, now-stale core.
		logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
		logger := logging.Root()

		gen := config.NewGeneration(cfg)
		logger.Info("generation installed",
			zap.Uint64("generation", gen.ID), zap.Int("servers", len(gen.Config.Servers)))

		var metricsSrv *http.Server
		var metricsSet *metrics.Set
		if cfg.Metrics.Addr != "" {
			metricsSet = metrics.New()
			metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsSet.Handler()}
			go func() {
				if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics listener failed", zap.Error(err))
				}
			}()
		}

		reloaded, err := runGeneration(ctx, gen, sig, logger, metricsSet)
		if metricsSrv != nil {
			_ = metricsSrv.Close()
		}
		if err != nil {
			return err
		}
		if !reloaded {
			return nil
		}
		logger.Info("reload requested; rebuilding generation", zap.Uint64("previous_generation", gen.ID))
	}
}

// runGeneration fans out one server task per ServerSpec in gen and waits
// for all of them to stop (by shutdown, reload, or fatal error). A fatal
// error on one server does not stop the others (spec.md §7: "Config and
// TLS errors at server startup are fatal to that server only").
func runGeneration(ctx context.Context, gen *config.Generation, sig *signalctl.Handle, parentLogger *zap.Logger, m *metrics.Set) (reloaded bool, err error) {
	type outcome struct {
		name     string
		reloaded bool
		err      error
	}

	results := make(chan outcome, len(gen.Config.Servers))
	for name, spec := range gen.Config.Servers {
		go func(name string, spec config.ServerSpec) {
			r, serveErr := runServer(ctx, name, spec, sig, parentLogger, m)
			results <- outcome{name: name, reloaded: r, err: serveErr}
		}(name, spec)
	}

	var firstErr error
	anyReloaded := false
	for range gen.Config.Servers {
		o := <-results
		if o.err != nil {
			parentLogger.Error("server stopped with error", zap.String("server", o.name), zap.Error(o.err))
			if firstErr == nil {
				firstErr = fmt.Errorf("server %s: %w", o.name, o.err)
			}
			continue
		}
		if o.reloaded {
			anyReloaded = true
		}
	}
	return anyReloaded, firstErr
}

// runServer builds one ServerSpec's TLS config, QUIC endpoint, H3 driver
// and accept loop, then runs the loop until shutdown or reload.
func runServer(ctx context.Context, name string, spec config.ServerSpec, sig *signalctl.Handle, parentLogger *zap.Logger, m *metrics.Set) (bool, error) {
	logger := parentLogger.With(zap.String("server", name))

	var certPath, keyPath string
	if spec.TLS != nil {
		certPath, keyPath = spec.TLS.CertPath, spec.TLS.KeyPath
	}
	tlsConfig, err := tlsprovider.LoadOrGenerate(name, certPath, keyPath, logger)
	if err != nil {
		return false, fmt.Errorf("tls: %w", err)
	}

	endpoint, err := netendpoint.Build(ctx, spec.Host, spec.Port, tlsConfig, spec.WebTransport)
	if err != nil {
		return false, fmt.Errorf("endpoint: %w", err)
	}

	dispatcher := dispatch.New(name, spec, logger, m)
	driver := h3driver.New(name, tlsConfig, spec.WebTransport, dispatcher, logger, m)
	loop := acceptloop.New(name, endpoint, driver, logger, m)

	logger.Info("server listening",
		zap.String("addr", endpoint.Addr.String()), zap.Bool("webtransport", spec.WebTransport))

	return loop.Run(ctx, sig.WaitShutdown(ctx), sig.WaitReload(ctx))
}
