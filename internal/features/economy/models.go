// Package economy owns the per-session economy record: balances, gate stamps,
// luck, achievements and referral bookkeeping.
// models.go describes the record and the invariants every mutation must keep.
package economy

import (
	"fmt"
	"slices"
	"time"

	"github.com/sunusimusa/scratch-app/internal/common"
)

const (
	PointsPerLevel = 100
	MaxLevel       = 1000
	MaxLuck        = 100
)

// Record is the persisted economy of one session.
// Only the game service mutates it; it is never deleted.
type Record struct {
	SessionID string `json:"sessionId"` // Immutable session identifier
	UserID    string `json:"userId"`    // Public id, "USER_<unix ms>"

	Energy  int64 `json:"energy"`  // Spent on scratches
	Points  int64 `json:"points"`  // Drives the level
	Gold    int64 `json:"gold"`    // Mid-tier currency
	Diamond int64 `json:"diamond"` // Scarcest currency

	Level int `json:"level"` // Derived from Points, see LevelFor
	Luck  int `json:"luck"`  // Pity meter, 0..MaxLuck

	Achievements []string `json:"achievements"` // Unlocked keys, append-only

	ReferralCode   string `json:"referralCode"`   // Own code, globally unique
	ReferredBy     string `json:"referredBy"`     // Code claimed by this session, set once
	ReferralsCount int    `json:"referralsCount"` // Successful claims of ReferralCode

	DailyEnergyDate string `json:"dailyEnergyDate"` // YYYY-MM-DD of the last daily claim
	LastAdsDate     string `json:"lastAdsDate"`     // YYYY-MM-DD the ad counter belongs to
	AdsWatchedToday int    `json:"adsWatchedToday"`
	LastSpinDate    string `json:"lastSpinDate"`

	LastBonusAt   int64 `json:"lastBonusAt"`   // Epoch ms, 0 = never
	LastMysteryAt int64 `json:"lastMysteryAt"` // Epoch ms, 0 = never
	LastStreakAt  int64 `json:"lastStreakAt"`  // Epoch ms, 0 = never

	Streak        int `json:"streak"`        // Current check-in streak
	LongestStreak int `json:"longestStreak"` // Personal best
	Scratches     int `json:"scratches"`     // Total scratches performed

	LastActive time.Time `json:"lastActive"`
	CreatedAt  time.Time `json:"createdAt"`

	// Version is bumped by every successful save. A save carrying a stale
	// version is rejected with common.ErrConflict.
	Version int64 `json:"version"`
}

// NewRecord creates a fresh record with zero balances and level 1.
func NewRecord(sessionID, referralCode string, now time.Time) *Record {
	now = now.UTC()
	return &Record{
		SessionID:    sessionID,
		UserID:       fmt.Sprintf("USER_%d", now.UnixMilli()),
		Level:        1,
		Achievements: []string{},
		ReferralCode: referralCode,
		LastActive:   now,
		CreatedAt:    now,
	}
}

// LevelFor returns min(MaxLevel, points/PointsPerLevel + 1).
func LevelFor(points int64) int {
	if points < 0 {
		points = 0
	}
	return int(common.MinInt64(MaxLevel, points/PointsPerLevel+1))
}

// LevelProgress returns how far the record is into its current level, in percent.
func (r *Record) LevelProgress() int {
	if r.Level >= MaxLevel {
		return 100
	}
	return int(r.Points % PointsPerLevel * 100 / PointsPerLevel)
}

// Normalize repairs a record read from storage: missing sets become empty,
// negative balances are floored, luck is clamped, duplicate achievements are
// dropped and the level is recomputed. It runs once per load.
func (r *Record) Normalize() {
	if r.Achievements == nil {
		r.Achievements = []string{}
	}
	r.Energy = max(r.Energy, 0)
	r.Points = max(r.Points, 0)
	r.Gold = max(r.Gold, 0)
	r.Diamond = max(r.Diamond, 0)
	r.AdsWatchedToday = max(r.AdsWatchedToday, 0)
	r.ReferralsCount = max(r.ReferralsCount, 0)
	r.Streak = max(r.Streak, 0)
	r.LongestStreak = max(r.LongestStreak, r.Streak)

	seen := make(map[string]struct{}, len(r.Achievements))
	unique := r.Achievements[:0]
	for _, key := range r.Achievements {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	r.Achievements = unique

	r.Settle()
}

// Settle recomputes derived fields after a mutation.
func (r *Record) Settle() {
	r.Luck = common.ClampInt(r.Luck, 0, MaxLuck)
	r.Level = LevelFor(r.Points)
}

// Touch marks the record as active at now.
func (r *Record) Touch(now time.Time) {
	r.LastActive = now.UTC()
}

// HasAchievement reports whether key is already unlocked.
func (r *Record) HasAchievement(key string) bool {
	return slices.Contains(r.Achievements, key)
}

// AddAchievement unlocks key. It returns false if it was already unlocked.
func (r *Record) AddAchievement(key string) bool {
	if r.HasAchievement(key) {
		return false
	}
	r.Achievements = append(r.Achievements, key)
	return true
}

// Clone returns a deep copy, so callers can mutate without touching stored state.
func (r *Record) Clone() *Record {
	c := *r
	c.Achievements = slices.Clone(r.Achievements)
	if c.Achievements == nil {
		c.Achievements = []string{}
	}
	return &c
}

// Violations lists every broken invariant. An empty result means the record is sound.
func (r *Record) Violations() []string {
	var out []string
	if r.Energy < 0 || r.Points < 0 || r.Gold < 0 || r.Diamond < 0 {
		out = append(out, "negative balance")
	}
	if r.Luck < 0 || r.Luck > MaxLuck {
		out = append(out, fmt.Sprintf("luck %d out of range", r.Luck))
	}
	if want := LevelFor(r.Points); r.Level != want {
		out = append(out, fmt.Sprintf("level %d, expected %d", r.Level, want))
	}
	seen := make(map[string]struct{}, len(r.Achievements))
	for _, key := range r.Achievements {
		if _, dup := seen[key]; dup {
			out = append(out, "duplicate achievement "+key)
		}
		seen[key] = struct{}{}
	}
	if r.ReferredBy != "" && r.ReferredBy == r.ReferralCode {
		out = append(out, "referred by own code")
	}
	return out
}

// Grant is a bundle of currency credited by a reward, bonus or purchase.
type Grant struct {
	Energy  int64 `json:"energy,omitempty" yaml:"energy"`
	Points  int64 `json:"points,omitempty" yaml:"points"`
	Gold    int64 `json:"gold,omitempty" yaml:"gold"`
	Diamond int64 `json:"diamond,omitempty" yaml:"diamond"`
}

// IsZero reports whether the grant credits nothing.
func (g Grant) IsZero() bool {
	return g == Grant{}
}

// Plus returns the sum of two grants.
func (g Grant) Plus(o Grant) Grant {
	return Grant{
		Energy:  g.Energy + o.Energy,
		Points:  g.Points + o.Points,
		Gold:    g.Gold + o.Gold,
		Diamond: g.Diamond + o.Diamond,
	}
}

// Apply credits the grant to r.
func (g Grant) Apply(r *Record) {
	r.Energy += g.Energy
	r.Points += g.Points
	r.Gold += g.Gold
	r.Diamond += g.Diamond
}

// Labels renders the non-zero parts, e.g. ["+5 Energy", "+2 Gold"].
func (g Grant) Labels() []string {
	var out []string
	for _, part := range []struct {
		amount   int64
		currency string
	}{
		{g.Energy, "energy"},
		{g.Points, "points"},
		{g.Gold, "gold"},
		{g.Diamond, "diamond"},
	} {
		if part.amount != 0 {
			out = append(out, common.FormatAmount(part.amount, part.currency))
		}
	}
	return out
}
