package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/Patator33/Gestion-locative/internal/config"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

const (
	maxRetries     = 5
	connectTimeout = 5 * time.Second
	initialBackoff = 500 * time.Millisecond
)

type App struct {
	Config *config.Config
	Store  repositories.Store
}

// NewApp opens the configured storage backend. Postgres connections are
// retried with exponential backoff and the schema is migrated up.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg.StorageBackend == config.StorageBackendMemory {
		store, err := repositories.NewMemoryStore()
		if err != nil {
			return nil, fmt.Errorf("init memory store: %w", err)
		}
		utils.Logger.Warn("Using the in-memory store; data is lost on restart.")
		return &App{Config: cfg, Store: store}, nil
	}

	if err := MigrateUp(cfg.DBUrl); err != nil {
		return nil, err
	}

	var (
		dbPool  *pgxpool.Pool
		err     error
		backoff = initialBackoff
	)

	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		dbPool, err = newDBPool(ctx, cfg.DBUrl)
		cancel()
		if err == nil {
			utils.Logger.Infof("Successfully connected to database on attempt %d", i)
			break
		}

		utils.Logger.WithError(err).Warnf(
			"Failed to connect to database on attempt %d/%d. Retrying in %v...",
			i, maxRetries, backoff,
		)

		if i == maxRetries {
			return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
		}

		time.Sleep(backoff)
		backoff *= 2
	}

	return &App{
		Config: cfg,
		Store:  repositories.NewPGStore(dbPool),
	}, nil
}

func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
		utils.Logger.Info("Store closed.")
	}
}

// newDBPool retires idle sockets before proxies drop them and keeps the
// rest warm with a periodic health check.
func newDBPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnIdleTime = 2 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.ConnectConfig(ctx, cfg)
}
