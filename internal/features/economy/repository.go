// Package economy: repository.go stores records in the economy_records table.
// Saves are conditional on the version column; the referral pair is written in one DB transaction.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sunusimusa/scratch-app/internal/common"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

const recordColumns = `
	session_id, user_id, energy, points, gold, diamond, level, luck, achievements,
	referral_code, referred_by, referrals_count,
	daily_energy_date, last_ads_date, ads_watched_today, last_spin_date,
	last_bonus_at, last_mystery_at, last_streak_at,
	streak, longest_streak, scratches, last_active, created_at, version`

// Repository is the PostgreSQL Store.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repository on top of an open pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new record with version 0.
func (r *Repository) Create(ctx context.Context, rec *Record) error {
	query := `INSERT INTO economy_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := r.db.Exec(ctx, query,
		rec.SessionID, rec.UserID, rec.Energy, rec.Points, rec.Gold, rec.Diamond,
		rec.Level, rec.Luck, rec.Achievements,
		rec.ReferralCode, rec.ReferredBy, rec.ReferralsCount,
		rec.DailyEnergyDate, rec.LastAdsDate, rec.AdsWatchedToday, rec.LastSpinDate,
		rec.LastBonusAt, rec.LastMysteryAt, rec.LastStreakAt,
		rec.Streak, rec.LongestStreak, rec.Scratches, rec.LastActive, rec.CreatedAt, rec.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "referral_code") {
				return common.ErrDuplicateReferralCode
			}
			return common.ErrSessionExists
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Get loads a record by session id.
func (r *Repository) Get(ctx context.Context, sessionID string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM economy_records WHERE session_id = $1`
	return r.queryOne(ctx, query, sessionID)
}

// FindByReferralCode loads the owner of a referral code.
func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM economy_records WHERE referral_code = $1`
	return r.queryOne(ctx, query, code)
}

// Save writes rec if nobody saved it since it was loaded.
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	if err := r.update(ctx, r.db, rec); err != nil {
		return err
	}
	rec.Version++
	return nil
}

// SavePair writes both records in one transaction.
// If either version check fails, neither record changes.
func (r *Repository) SavePair(ctx context.Context, a, b *Record) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.update(ctx, tx, a); err != nil {
		return err
	}
	if err := r.update(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit pair: %w", err)
	}
	a.Version++
	b.Version++
	return nil
}

// ForEach streams every record to fn, ordered by creation time.
func (r *Repository) ForEach(ctx context.Context, fn func(*Record) error) error {
	rows, err := r.db.Query(ctx, `SELECT `+recordColumns+` FROM economy_records ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Ping checks the pool.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close is a no-op: the pool is owned by the app and closed there.
func (r *Repository) Close() error {
	return nil
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *Repository) update(ctx context.Context, db execer, rec *Record) error {
	tag, err := db.Exec(ctx, `
		UPDATE economy_records SET
			energy = $3, points = $4, gold = $5, diamond = $6, level = $7, luck = $8,
			achievements = $9, referred_by = $10, referrals_count = $11,
			daily_energy_date = $12, last_ads_date = $13, ads_watched_today = $14,
			last_spin_date = $15, last_bonus_at = $16, last_mystery_at = $17,
			last_streak_at = $18, streak = $19, longest_streak = $20, scratches = $21,
			last_active = $22, version = version + 1
		WHERE session_id = $1 AND version = $2
	`,
		rec.SessionID, rec.Version,
		rec.Energy, rec.Points, rec.Gold, rec.Diamond, rec.Level, rec.Luck,
		rec.Achievements, rec.ReferredBy, rec.ReferralsCount,
		rec.DailyEnergyDate, rec.LastAdsDate, rec.AdsWatchedToday,
		rec.LastSpinDate, rec.LastBonusAt, rec.LastMysteryAt,
		rec.LastStreakAt, rec.Streak, rec.LongestStreak, rec.Scratches,
		rec.LastActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", rec.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrConflict
	}
	return nil
}

func (r *Repository) queryOne(ctx context.Context, query string, arg any) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrRecordNotFound
	}
	return rec, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.SessionID, &rec.UserID, &rec.Energy, &rec.Points, &rec.Gold, &rec.Diamond,
		&rec.Level, &rec.Luck, &rec.Achievements,
		&rec.ReferralCode, &rec.ReferredBy, &rec.ReferralsCount,
		&rec.DailyEnergyDate, &rec.LastAdsDate, &rec.AdsWatchedToday, &rec.LastSpinDate,
		&rec.LastBonusAt, &rec.LastMysteryAt, &rec.LastStreakAt,
		&rec.Streak, &rec.LongestStreak, &rec.Scratches, &rec.LastActive, &rec.CreatedAt, &rec.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	return &rec, nil
}
