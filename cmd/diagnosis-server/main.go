package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/diagnosis/internal/config"
	"github.com/ehr/diagnosis/internal/domain/diagnosis"
	"github.com/ehr/diagnosis/internal/platform/db"
	"github.com/ehr/diagnosis/internal/platform/logging"
	"github.com/ehr/diagnosis/migrations"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "diagnosis-server",
		Short:         "Clinical diagnosis record API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the diagnosis API server",
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

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, migrations.FS, ".").Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, migrations.FS, ".").Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			printStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace all diagnoses with the example data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			st := &store{
				repo: diagnosis.NewDiagnosisRepoPG(pool, cfg.DBQueryTimeout),
				pool: pool,
			}
			n, err := seed(ctx, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d diagnoses.\n", n)
			return nil
		},
	}
}

// openPool is used by the one-shot commands, which always talk to Postgres.
func openPool(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.UsesPostgres() {
		return nil, nil, fmt.Errorf("this command needs STORE_DRIVER=%s", config.StoreDriverPostgres)
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.DefaultPoolOptions(cfg.DBMaxConns, cfg.DBMinConns))
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

// store is the record repository plus the pool behind it, if any.
type store struct {
	repo diagnosis.DiagnosisRepository
	pool *pgxpool.Pool
}

func (s *store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping reports the memory store as always reachable.
func (s *store) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	return ctx.Err()
}

func (s *store) pinger() db.Pinger {
	if s.pool != nil {
		return s.pool
	}
	return s
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*store, error) {
	if !cfg.UsesPostgres() {
		logger.Warn().Msg("using in-memory store, records are lost on restart")
		return &store{repo: diagnosis.NewDiagnosisRepoMemory()}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.DefaultPoolOptions(cfg.DBMaxConns, cfg.DBMinConns))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		n, err := db.NewMigrator(pool, migrations.FS, ".").Up(ctx)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
		logger.Info().Int("applied", n).Msg("migrations up to date")
	}

	return &store{
		repo: diagnosis.NewDiagnosisRepoPG(pool, cfg.DBQueryTimeout),
		pool: pool,
	}, nil
}

// seed runs the seeder, inside one transaction when backed by Postgres.
func seed(ctx context.Context, st *store) (int, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var n int
	run := func(ctx context.Context) error {
		var err error
		n, err = diagnosis.Seed(ctx, st.repo, time.Now(), rng)
		return err
	}
	if st.pool == nil {
		return n, run(ctx)
	}
	return n, db.InTx(ctx, st.pool, run)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	logger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Console:    cfg.IsDev(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}, os.Stdout)
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid config")
		return err
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open store")
		return err
	}
	defer st.Close()

	if cfg.SeedOnStart {
		n, err := seed(ctx, st)
		if err != nil {
			logger.Error().Err(err).Msg("seeding failed")
			return err
		}
		total, _ := st.repo.Count(ctx)
		logger.Info().Int("seeded", n).Int64("total", total).Msg("seeded example diagnoses")
	}

	e := newServer(cfg, logger, st)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
