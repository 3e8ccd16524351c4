// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/cache"
	"github.com/gatehouse/gatehouse/internal/config"
	"github.com/gatehouse/gatehouse/internal/logging"
	"github.com/gatehouse/gatehouse/internal/observability"
	"github.com/gatehouse/gatehouse/internal/web"
)

// janitorInterval is how often the session store evicts expired entries.
const janitorInterval = time.Minute

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gatehouse HTTP server",
		Long: `Start the HTTP server for the login flow, plus the metrics and
health endpoints. Configuration comes from defaults, the --config file,
and flags, in that precedence order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flag names are dotted so they map directly onto config keys.
	cmd.Flags().String("listen.addr", config.DefaultListenAddr, "HTTP listen address")
	cmd.Flags().String("listen.metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().Duration("session.ttl", config.DefaultSessionTTL, "session lifetime")
	cmd.Flags().String("session.cookie_name", config.DefaultCookieName, "session cookie name")
	cmd.Flags().String("log.format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("seed", "", "account seed file (YAML); empty uses built-in dev accounts")

	return cmd
}

// devAccountID is the stable id of the built-in development account.
const devAccountID = "01JGZ9ZC8J2JD4Q3W4E5R6T7Y8"

// devPasswordHash is the bcrypt hash of "secret" for the built-in dev
// account. Never ship a deployment without a seed file.
const devPasswordHash = "$2a$10$iqJSHD.BGr0E2IxQwYgJmeP3NvhPrXAeLSaGCj6IR/XU5QtjVu5Tm"

// loadAccounts returns the provisioned accounts: the seed file when
// configured, otherwise the built-in development account.
func loadAccounts(seedPath string) ([]*auth.Account, error) {
	if seedPath != "" {
		return auth.LoadSeedAccounts(seedPath)
	}

	slog.Warn("no seed file configured, using built-in development accounts")
	john, err := auth.NewAccount(ulid.MustParse(devAccountID), "john", devPasswordHash, "John Doe")
	if err != nil {
		return nil, err
	}
	return []*auth.Account{john}, nil
}

// runServe wires the subsystem together and blocks until a signal.
func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("gatehouse", version, cfg.Log.Format)

	slog.Info("starting gatehouse",
		"addr", cfg.Listen.Addr,
		"metrics_addr", cfg.Listen.MetricsAddr,
		"session_ttl", cfg.Session.TTL.String(),
		"log_format", cfg.Log.Format,
	)

	accounts, err := loadAccounts(cfg.Seed)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	credentials, err := auth.NewStaticCredentialStore(accounts)
	if err != nil {
		return fmt.Errorf("failed to build credential store: %w", err)
	}
	slog.Info("credential store ready", "accounts", credentials.Len())

	verifier, err := auth.NewVerifier(credentials, auth.NewBcryptHasher())
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	sessionCache := cache.New[auth.Session](janitorInterval)
	defer sessionCache.Stop()

	sessions, err := auth.NewSessionManager(verifier, auth.NewCacheSessionStore(sessionCache), cfg.Session.TTL)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start observability server if configured
	var obsServer *observability.Server
	if cfg.Listen.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.Listen.MetricsAddr, func() bool { return true }, sessionCache.Len)
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return fmt.Errorf("failed to start observability server: %w", obsErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	handler := web.NewHandler(sessions, verifier, cfg.Session.CookieName, slog.Default())
	webServer := web.NewServer(cfg.Listen.Addr, handler)
	webErrChan, err := webServer.Start()
	if err != nil {
		stopObservability(obsServer)
		return fmt.Errorf("failed to start web server: %w", err)
	}
	go monitorServerErrors(ctx, cancel, webErrChan, "web")

	slog.Info("gatehouse ready", "addr", webServer.Addr())

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		slog.Warn("failed to stop web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("failed to stop observability server", "error", err)
		}
	}

	return nil
}

// monitorServerErrors cancels the run context when a server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	}
}

// stopObservability stops the observability server if it was started.
func stopObservability(s *observability.Server) {
	if s == nil {
		return
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := s.Stop(stopCtx); err != nil {
		slog.Warn("failed to stop observability server during cleanup", "error", err)
	}
}
