package economy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/sunusimusa/scratch-app/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS economy_records (
	session_id    TEXT PRIMARY KEY,
	referral_code TEXT NOT NULL UNIQUE,
	version       INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	doc           TEXT NOT NULL
);
`

// SQLiteStore keeps each record as a JSON document keyed by session id.
// The referral code and version are lifted into columns so SQLite enforces
// uniqueness and the compare-and-swap.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the schema if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, rec *Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO economy_records (session_id, referral_code, version, created_at, doc) VALUES (?, ?, ?, ?, ?)`,
		rec.SessionID, rec.ReferralCode, rec.Version, rec.CreatedAt.Format(timeLayout), string(doc),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			if strings.Contains(sqliteErr.Error(), "referral_code") {
				return common.ErrDuplicateReferralCode
			}
			return common.ErrSessionExists
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*Record, error) {
	return s.queryOne(ctx, `SELECT doc, version FROM economy_records WHERE session_id = ?`, sessionID)
}

func (s *SQLiteStore) FindByReferralCode(ctx context.Context, code string) (*Record, error) {
	return s.queryOne(ctx, `SELECT doc, version FROM economy_records WHERE referral_code = ?`, code)
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if err := s.update(ctx, s.db, rec); err != nil {
		return err
	}
	rec.Version++
	return nil
}

func (s *SQLiteStore) SavePair(ctx context.Context, a, b *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.update(ctx, tx, a); err != nil {
		return err
	}
	if err := s.update(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pair: %w", err)
	}
	a.Version++
	b.Version++
	return nil
}

func (s *SQLiteStore) ForEach(ctx context.Context, fn func(*Record) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT doc, version FROM economy_records ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	// Collect first: with a single connection, fn must not run while rows hold it.
	var recs []*Record
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, rec := range recs {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// sqlExecer is satisfied by both *sql.DB and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) update(ctx context.Context, db sqlExecer, rec *Record) error {
	next := rec.Clone()
	next.Version = rec.Version + 1
	doc, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	res, err := db.ExecContext(ctx,
		`UPDATE economy_records SET doc = ?, version = version + 1 WHERE session_id = ? AND version = ?`,
		string(doc), rec.SessionID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", rec.SessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return common.ErrConflict
	}
	return nil
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, arg any) (*Record, error) {
	rec, err := scanDocument(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrRecordNotFound
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Record, error) {
	var (
		doc     string
		version int64
	)
	if err := row.Scan(&doc, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	// The column is authoritative for the compare-and-swap.
	rec.Version = version
	return &rec, nil
}
