package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/devilmonastery/chirp/api/profilev1"
	"github.com/devilmonastery/chirp/internal/config"
	"github.com/devilmonastery/chirp/internal/domain/services"
	"github.com/devilmonastery/chirp/internal/pkg/idgen"
	"github.com/devilmonastery/chirp/internal/pkg/logger"
	"github.com/devilmonastery/chirp/internal/pkg/ratelimit"
	"github.com/devilmonastery/chirp/server/internal/grpc/handlers"
	"github.com/devilmonastery/chirp/server/internal/grpc/interceptors"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion int
		configPath   string
		logLevel     string
		logFile      string
		logToStderr  bool
		logFormat    string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Chirp profile server",
		Long:  "The gRPC server for chirp user profiles",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath, forceVersion)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.PersistentFlags().BoolVar(&logToStderr, "alsologtostderr", false, "Log to stderr as well as the log file")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	cmd.AddCommand(newUserCommand(&configPath))
	cmd.AddCommand(newTokenCommand(&configPath))

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr bool, logFormat string) error {
	if logFile == "" {
		logToStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogFile:     logFile,
		LogToStderr: logToStderr,
		Format:      logFormat,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

func runServer(ctx context.Context, configPath string, forceVersion int) error {
	log := slog.Default().With("component", "server")
	log.Info("starting server initialization")

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if forceVersion >= 0 {
		return forceMigration(cfg, forceVersion)
	}

	provider, cleanup, err := buildIdentityProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	verifier, err := buildTokenVerifier(cfg)
	if err != nil {
		return err
	}

	profileService := services.NewProfileService(provider)
	profileHandler := handlers.NewProfileHandler(profileService)

	chain := []grpc.UnaryServerInterceptor{
		interceptors.Observability(),
		interceptors.NewAuthInterceptor(verifier).Unary(),
	}

	if cfg.RateLimit.Enabled() {
		redisClient, err := ratelimit.NewRedisClient(ctx, cfg.RateLimit.RedisAddr, cfg.RateLimit.RedisPassword, cfg.RateLimit.RedisDB)
		if err != nil {
			// The limiter fails open anyway; an unreachable Redis at startup is not fatal
			log.Warn("rate limiting disabled", "error", err)
		} else {
			defer redisClient.Close()
			limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, "chirp:ratelimit")
			chain = append(chain, interceptors.RateLimit(limiter, profilev1.ProfileService_UpdateProfile_FullMethodName))
			log.Info("rate limiting enabled",
				"limit", cfg.RateLimit.Limit,
				"window", cfg.RateLimit.Window.String())
		}
	}

	authStream := interceptors.NewAuthInterceptor(verifier).Stream()
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(chain...),
		grpc.StreamInterceptor(authStream),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)

	profilev1.RegisterProfileServiceServer(grpcServer, profileHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(profilev1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	address := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	var adminServer *http.Server
	if cfg.Admin.Port > 0 {
		adminServer = newAdminServer(cfg.Admin.Port)
		go func() {
			log.Info("starting admin server", "port", cfg.Admin.Port)
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server failed", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()
		if adminServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			adminServer.Shutdown(shutdownCtx)
		}
		grpcServer.GracefulStop()
	}()

	log.Info("gRPC server starting",
		"address", listener.Addr().String(),
		"identity_mode", cfg.Identity.Mode,
		"environment", cfg.Environment)
	if err := grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("failed to serve gRPC server: %w", err)
	}
	return nil
}

// newAdminServer serves liveness, readiness and Prometheus metrics
func newAdminServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/readiness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
