package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/patron/internal/buildconfig"
	"github.com/Harshitk-cp/patron/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "patronctl",
		Short:         "Administer the patron customer database",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildconfig.Version(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load()
		},
	}

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newTierCmd(),
	)
	return root
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(config.LogLevel())
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connect opens and pings the configured database.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
