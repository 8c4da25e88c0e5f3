// Package app wires every component of the service.
// app.go is the assembly point: it opens the store, loads the reward tables,
// builds the services and handlers and puts them behind one router.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/config"
	"github.com/sunusimusa/scratch-app/internal/db/postgres"
	"github.com/sunusimusa/scratch-app/internal/db/sqlite"
	"github.com/sunusimusa/scratch-app/internal/features/admin"
	"github.com/sunusimusa/scratch-app/internal/features/cooldown"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
	"github.com/sunusimusa/scratch-app/internal/features/game"
	"github.com/sunusimusa/scratch-app/internal/features/rewards"
	"github.com/sunusimusa/scratch-app/internal/jobs"
	"github.com/sunusimusa/scratch-app/internal/server"
	"github.com/sunusimusa/scratch-app/internal/server/middleware"
)

// App holds every long-lived component.
type App struct {
	Handler   http.Handler
	Scheduler *jobs.Scheduler
	Store     economy.Store
	Limiter   *middleware.RateLimiter

	pool *pgxpool.Pool // nil unless STORE_DRIVER=postgres
}

// New creates and wires the application.
// Order matters: later components depend on earlier ones.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1. Storage
	store, pool, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 2. Reward tables
	tables, err := rewards.LoadTables(cfg.RewardTablesPath)
	if err != nil {
		store.Close()
		closePool(pool)
		return nil, fmt.Errorf("failed to load reward tables: %w", err)
	}

	// 3. Services
	gate := cooldown.NewGate(cfg.AdsPerDay, cfg.BonusInterval, cfg.MysteryInterval)
	gameService := game.NewService(store, tables, gate, rewards.NewRoller(nil), game.Settings{
		ScratchCost: cfg.ScratchCost,
		DailyEnergy: cfg.DailyEnergy,
		AdEnergy:    cfg.AdEnergy,
	}, nil)
	adminService := admin.NewService(cfg.AdminPasswordHash, gameService, nil)

	// 4. HTTP
	sessions := middleware.NewSessions(cfg.SessionCookie, cfg.IsProduction())
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	opts := server.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Sessions:       sessions,
		Limiter:        limiter,
		Game:           game.NewHandler(gameService, sessions),
		Health:         store,
		TrustProxy:     cfg.TrustProxy,
	}
	if adminService.Enabled() {
		opts.Admin = admin.NewHandler(adminService)
	} else {
		log.Warn("ADMIN_PASSWORD_HASH is empty, admin routes are disabled")
	}

	// 5. Jobs
	scheduler := jobs.NewScheduler(store, cfg.AuditCron)

	return &App{
		Handler:   server.NewRouter(opts),
		Scheduler: scheduler,
		Store:     store,
		Limiter:   limiter,
		pool:      pool,
	}, nil
}

// Close releases the store and the rate limiter.
func (a *App) Close() {
	a.Limiter.Close()
	if err := a.Store.Close(); err != nil {
		log.WithError(err).Error("Failed to close store")
	}
	closePool(a.pool)
}

func openStore(ctx context.Context, cfg *config.Config) (economy.Store, *pgxpool.Pool, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to the database: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool, migrations); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrations failed: %w", err)
		}
		return economy.NewRepository(pool), pool, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := economy.NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, nil, nil

	case config.DriverMemory:
		log.Warn("Using the in-memory store, records are lost on restart")
		return economy.NewMemoryStore(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

// SQL migrations are embedded in the binary to keep deployment to one file.
var migrations = []postgres.Migration{
	{Version: 1, Name: "economy_records", SQL: migration001EconomyRecords},
}

var migration001EconomyRecords = `
CREATE TABLE IF NOT EXISTS economy_records (
    session_id VARCHAR(64) PRIMARY KEY,
    user_id VARCHAR(64) NOT NULL,
    energy BIGINT NOT NULL DEFAULT 0 CHECK (energy >= 0),
    points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
    gold BIGINT NOT NULL DEFAULT 0 CHECK (gold >= 0),
    diamond BIGINT NOT NULL DEFAULT 0 CHECK (diamond >= 0),
    level INTEGER NOT NULL DEFAULT 1,
    luck INTEGER NOT NULL DEFAULT 0 CHECK (luck BETWEEN 0 AND 100),
    achievements TEXT[] NOT NULL DEFAULT '{}',
    referral_code VARCHAR(16) NOT NULL,
    referred_by VARCHAR(16) NOT NULL DEFAULT '',
    referrals_count INTEGER NOT NULL DEFAULT 0,
    daily_energy_date VARCHAR(10) NOT NULL DEFAULT '',
    last_ads_date VARCHAR(10) NOT NULL DEFAULT '',
    ads_watched_today INTEGER NOT NULL DEFAULT 0,
    last_spin_date VARCHAR(10) NOT NULL DEFAULT '',
    last_bonus_at BIGINT NOT NULL DEFAULT 0,
    last_mystery_at BIGINT NOT NULL DEFAULT 0,
    last_streak_at BIGINT NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    scratches INTEGER NOT NULL DEFAULT 0,
    last_active TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    version BIGINT NOT NULL DEFAULT 0,
    CONSTRAINT economy_records_referral_code_key UNIQUE (referral_code)
);
CREATE INDEX IF NOT EXISTS idx_economy_records_created_at ON economy_records(created_at);
`
