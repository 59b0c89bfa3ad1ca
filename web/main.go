package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/chirp/internal/client"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/web/internal/config"
	"github.com/devilmonastery/chirp/web/internal/handlers"
	"github.com/devilmonastery/chirp/web/internal/middleware"
	"github.com/devilmonastery/chirp/web/internal/session"
)

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // Web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// sessionSecret decodes the configured cookie key, or generates a temporary one
func sessionSecret(configured string, log *slog.Logger) ([]byte, error) {
	if configured != "" {
		secret, err := base64.StdEncoding.DecodeString(configured)
		if err != nil {
			return nil, fmt.Errorf("failed to decode session secret: %w", err)
		}
		log.Info("using configured session secret (sessions will persist across restarts)")
		return secret, nil
	}

	log.Warn("no session secret configured, generating random one (sessions won't persist)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging (must be done before any logging calls)
	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")

	if err := run(cfg, log); err != nil {
		log.Error("web service failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.WebServerConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	secret, err := sessionSecret(cfg.Session.Secret, log)
	if err != nil {
		return err
	}
	sessionMgr := session.NewManager(secret, cfg.Session.Secure)

	backend, err := client.NewClient(cfg.GRPC.Address, cfg.GRPC.ServerName, nil)
	if err != nil {
		return err
	}
	defer backend.Close()

	h := handlers.New(backend.ProfileClient(), sessionMgr, log)
	authMw := middleware.NewAuthMiddleware(sessionMgr, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handlers.Router(h, authMw, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.Server.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", slog.Any("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting chirp web service",
			slog.String("address", srv.Addr),
			slog.String("grpc_address", cfg.GRPC.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down web service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = metricsSrv.Shutdown(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
