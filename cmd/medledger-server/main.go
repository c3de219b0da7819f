package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medledger/medledger/internal/config"
	"github.com/medledger/medledger/internal/domain/audit"
	"github.com/medledger/medledger/internal/domain/identity"
	"github.com/medledger/medledger/internal/domain/permission"
	"github.com/medledger/medledger/internal/domain/profile"
	"github.com/medledger/medledger/internal/domain/record"
	"github.com/medledger/medledger/internal/platform/auth"
	"github.com/medledger/medledger/internal/platform/blobstore"
	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medledger-server",
		Short: "Medical records ledger API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := ledger.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := ledger.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := ledger.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := ledger.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore from a database backup instead; the audit log is append-only by design.")
			return nil
		},
	})

	return cmd
}

func openBlobStore(cfg *config.Config) (blobstore.Store, func(), error) {
	switch cfg.BlobBackend {
	case "memory":
		return blobstore.NewMemoryStore(), func() {}, nil
	case "fs":
		s, err := blobstore.NewFSStore(cfg.BlobPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	case "leveldb":
		s, err := blobstore.OpenLevelDBStore(cfg.BlobPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := ledger.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Blob store
	blobs, closeBlobs, err := openBlobStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.BlobBackend).Msg("failed to open blob store")
	}
	defer closeBlobs()
	logger.Info().Str("backend", cfg.BlobBackend).Msg("blob store ready")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Account-Address", "X-Account-Role"},
	}))

	// Auth: token issuer is needed for login even in dev mode, where the
	// request middleware trusts headers instead of tokens.
	issuer := auth.NewTokenIssuer(cfg.AuthSecret, time.Duration(cfg.TokenTTLMin)*time.Minute)

	public := e.Group("/api/v1")
	apiV1 := e.Group("/api/v1")
	if cfg.ResolvedAuthMode() == "development" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.TokenMiddleware(issuer))
	}

	// Rate limiting
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Health check
	e.GET("/health", ledger.HealthHandler(pool))

	txRunner := ledger.TxRunner{Pool: pool}

	// Identity domain
	userRepo := identity.NewUserRepoPG(pool)
	identitySvc := identity.NewService(userRepo)
	identityHandler := identity.NewHandler(identitySvc, issuer, cfg.AuditorAddress)
	identityHandler.RegisterRoutes(apiV1)
	identityHandler.RegisterAuthRoutes(public)

	// Audit log
	entryRepo := audit.NewEntryRepoPG(pool)
	auditSvc := audit.NewService(entryRepo)
	auditHandler := audit.NewHandler(auditSvc)
	auditHandler.RegisterRoutes(apiV1)

	// Permission graph
	edgeRepo := permission.NewEdgeRepoPG(pool)
	permSvc := permission.NewService(edgeRepo, identitySvc, auditSvc, txRunner)
	permHandler := permission.NewHandler(permSvc)
	permHandler.RegisterRoutes(apiV1)

	// Patient profiles
	profileRepo := profile.NewProfileRepoPG(pool)
	profileSvc := profile.NewService(profileRepo, permSvc, auditSvc, txRunner)
	profileHandler := profile.NewHandler(profileSvc)
	profileHandler.RegisterRoutes(apiV1)

	// Record index + content
	recordRepo := record.NewRecordRepoPG(pool)
	recordSvc := record.NewService(recordRepo, permSvc, auditSvc, blobs, txRunner)
	recordHandler := record.NewHandler(recordSvc)
	recordHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("auth_mode", cfg.ResolvedAuthMode()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
