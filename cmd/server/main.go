package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"industry-console/internal/config"
	"industry-console/internal/grpcweb"
	"industry-console/internal/handler"
	"industry-console/internal/logging"
	"industry-console/internal/middleware"
	"industry-console/internal/rpc"
	"industry-console/internal/store"
)

var (
	cfgPath  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Industry console backend (REST, gRPC and gRPC-Web)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC server and the HTTP server (REST + gRPC-Web)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "YAML config file (default $CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type backend interface {
	handler.Store
	Close() error
}

func openStore(ctx context.Context) (backend, error) {
	if cfg.UsesSQLite() {
		return store.OpenLite(ctx, cfg.DatabaseURL)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	return store.New(pool), nil
}

// migrate applies the Postgres schema; the SQLite store migrates on open.
func migrate(ctx context.Context, st backend) error {
	pg, ok := st.(*store.Store)
	if !ok {
		return nil
	}
	return pg.Migrate(ctx, cfg.Migrations)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := migrate(ctx, st); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema applied", zap.String("file", cfg.Migrations))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := migrate(ctx, st); err != nil {
		logger.Warn("migration failed", zap.Error(err))
	}
	logger.Info("store ready", zap.Bool("sqlite", cfg.UsesSQLite()))

	h := handler.New(st, cfg.JWTSecret, logger)
	rl := middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.RateLimit(rl),
		middleware.Auth(cfg.JWTSecret),
	))
	rpc.Register(grpcSrv, rpc.NewService(h))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// browsers reach gRPC through the bridge on the HTTP port
	bridge, err := grpcweb.New("localhost:"+cfg.GRPCPort, logger)
	if err != nil {
		return err
	}
	defer bridge.Close()

	if cfg.CORSOrigin == "" {
		logger.Warn("CORS_ORIGIN not set; cross-origin browsers cannot send session cookies")
	}
	httpSrv := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           middleware.CORS(cfg.CORSOrigin, middleware.Log(logger, bridge.Wrap(h.Routes(rl)))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(sctx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}
