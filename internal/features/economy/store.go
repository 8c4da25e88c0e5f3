// Package economy: store.go declares the persistence contract shared by the
// PostgreSQL, SQLite and in-memory backends.
package economy

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Store persists economy records.
//
// Every backend gives the same guarantees:
//   - Save is a compare-and-swap on Version; a stale version returns common.ErrConflict
//     and leaves storage untouched. On success the caller's record gets the new Version.
//   - SavePair writes two records atomically with the same version check on both.
//   - ReferralCode is unique; Create returns common.ErrDuplicateReferralCode on a clash.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, sessionID string) (*Record, error)
	FindByReferralCode(ctx context.Context, code string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	SavePair(ctx context.Context, a, b *Record) error
	ForEach(ctx context.Context, fn func(*Record) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ReferralCodeLength is the number of characters in a generated referral code.
const ReferralCodeLength = 8

// NewReferralCode returns a random upper-case code such as "9F1C2A7B".
// Uniqueness is enforced by the store, callers retry on a clash.
func NewReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:ReferralCodeLength])
}

// NormalizeCode canonicalizes user input before a referral lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
