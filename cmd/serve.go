package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calview/internal/config"
	"github.com/teemow/calview/internal/ics"
	"github.com/teemow/calview/internal/instrumentation"
	"github.com/teemow/calview/internal/logging"
	"github.com/teemow/calview/internal/server"
)

// serverStartTimeout bounds how long we wait for a listener to come up.
const serverStartTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var (
		listenAddr     string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar web UI",
		Long: `Start the calendar web UI.

The server renders the login screen for users who have not connected their
Google account yet and the month calendar for those who have. The CRM passes
the current user in the X-User-Id header; requests without it use the
configured default user. The header is not verified, so run the server
behind the CRM or an authenticating proxy that sets it.

Endpoints:
  /                        Calendar tab (login screen or month calendar)
  /login                   Login screen
  /login/google            Start Google sign-in
  /oauth2/callback         Google OAuth redirect target
  /api/status              Sign-in status as JSON
  /api/calendar            Month view as JSON (?month=YYYY-MM&nav=prev|next|today)
  /healthz, /readyz        Health checks

Metrics are served on a dedicated port (default :9090) at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *appConfig
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listenAddr
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.Metrics.Enabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			return runServe(&cfg, appLogger)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListenAddr, "Address for the web UI. Can also use CALVIEW_LISTEN env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(cfg *config.Config, logger *slog.Logger) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	if !cfg.Metrics.Enabled {
		instrConfig.Enabled = false
	}
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("Error during instrumentation shutdown", "error", err)
		}
	}()

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if cfg.Metrics.Enabled && provider.Enabled() && provider.PrometheusHandler() != nil {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		if err := startAndWait("metrics server", metricsServer.StartWithReadySignal); err != nil {
			return err
		}
		logger.Info("Metrics server started", "addr", metricsServer.ListenAddr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Error("Error during metrics server shutdown", "error", err)
			}
		}()
	}

	formatter, err := newFormatter(cfg)
	if err != nil {
		return err
	}
	auth := newAuthenticator(cfg, logger)
	src, err := newEventSource(cfg, auth, provider.Metrics(), logger)
	if err != nil {
		return err
	}

	if src.ics != nil {
		loc, _ := cfg.Location()
		refresher, err := ics.NewRefresher(src.ics, cfg.ICS.RefreshSchedule, loc, logging.NewSlogAdapter(logger, "ics_refresh"))
		if err != nil {
			return err
		}
		refresher.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			refresher.Stop(ctx)
		}()
	}

	sc := server.NewServerContext(shutdownCtx, server.Dependencies{
		Source:            src.EventSource,
		Auth:              auth,
		Formatter:         formatter,
		SignInNotRequired: cfg.EventSource == config.EventSourceICS,
		DefaultUser:       cfg.DefaultUser,
		LogoURL:           cfg.LogoURL,
		Metrics:           provider.Metrics(),
		Logger:            logger,
	})
	defer func() {
		if err := sc.Shutdown(); err != nil {
			logger.Error("Error during server context shutdown", "error", err)
		}
	}()

	health := server.NewHealthChecker(sc, version)
	web, err := server.NewWebServer(sc, server.WebServerConfig{
		Addr:   cfg.Listen,
		Health: health,
	})
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	webErr := make(chan error, 1)
	webReady := make(chan struct{})
	go func() {
		if err := web.StartWithReadySignal(webReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webErr <- err
		}
		close(webErr)
	}()

	select {
	case <-webReady:
	case err := <-webErr:
		return fmt.Errorf("web server failed to start: %w", err)
	case <-time.After(serverStartTimeout):
		return fmt.Errorf("web server startup timed out")
	}

	fmt.Printf("calview web UI listening on http://%s\n", web.ListenAddr())
	fmt.Printf("  Event source: %s\n", cfg.EventSource)
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	if metricsServer != nil {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsServer.ListenAddr())
	}

	select {
	case <-shutdownCtx.Done():
		logger.Info("Shutdown signal received, stopping web server")
	case err, ok := <-webErr:
		if ok && err != nil {
			return fmt.Errorf("web server error: %w", err)
		}
	}

	health.SetReady(false)
	ctx, cancelShutdown := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancelShutdown()
	if err := web.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down web server: %w", err)
	}
	return nil
}

// startAndWait runs start in a goroutine and waits until it signals ready,
// fails, or serverStartTimeout passes.
func startAndWait(name string, start func(ready chan<- struct{}) error) error {
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		if err := start(ready); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ready:
		return nil
	case err := <-errCh:
		if err == nil {
			select {
			case <-ready:
				return nil
			default:
			}
			return fmt.Errorf("%s stopped before it was ready", name)
		}
		return fmt.Errorf("%s failed to start: %w", name, err)
	case <-time.After(serverStartTimeout):
		return fmt.Errorf("%s startup timed out", name)
	}
}
