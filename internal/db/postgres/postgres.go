// Package postgres manages the PostgreSQL connection.
// A pgxpool pool serves all request goroutines: it opens and recycles
// connections, reconnects after drops and caps the connection count.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/config"
)

// NewPool creates a connection pool and checks that the database answers.
//
// Example:
//
//	pool, err := postgres.NewPool(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	log.WithFields(log.Fields{
		"host": cfg.DBHost,
		"db":   cfg.DBName,
	}).Info("Connected to PostgreSQL")
	return pool, nil
}

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// RunMigrations creates the schema_migrations table and applies every
// migration that is not recorded there yet, in order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, migrations []Migration) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := ExecMigrationSQL(ctx, pool, m.Version, m.SQL)
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if applied {
			log.WithField("version", m.Version).Infof("Migration %s applied", m.Name)
		}
	}
	return nil
}
