// Package cooldown decides whether a rate-limited action may run now.
//
// Three gate shapes exist:
//   - calendar day (daily energy, spin): blocked while the stored day equals today (UTC)
//   - counter with cap (ads): the counter resets when the day rolls over
//   - fixed interval (bonus, mystery box): open once now - last >= interval
//
// A gate is only stamped when the action succeeds, inside the same mutation
// that gets persisted, so a failed save leaves the gate open.
package cooldown

import (
	"fmt"
	"time"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// Kind names a gated action.
type Kind string

const (
	DailyEnergy Kind = "daily_energy"
	AdWatch     Kind = "ad_watch"
	Spin        Kind = "spin"
	Bonus       Kind = "bonus"
	Mystery     Kind = "mystery"
)

// Gate holds the limits for every Kind.
type Gate struct {
	AdsPerDay       int
	BonusInterval   time.Duration
	MysteryInterval time.Duration
}

// NewGate creates a gate with the given limits.
func NewGate(adsPerDay int, bonusInterval, mysteryInterval time.Duration) *Gate {
	return &Gate{
		AdsPerDay:       adsPerDay,
		BonusInterval:   bonusInterval,
		MysteryInterval: mysteryInterval,
	}
}

// Allowed reports whether rec may perform kind at now. It never mutates rec.
func (g *Gate) Allowed(rec *economy.Record, kind Kind, now time.Time) bool {
	today := common.DayString(now)
	switch kind {
	case DailyEnergy:
		return rec.DailyEnergyDate != today
	case Spin:
		return rec.LastSpinDate != today
	case AdWatch:
		return g.adsToday(rec, today) < g.AdsPerDay
	case Bonus:
		return intervalElapsed(rec.LastBonusAt, g.BonusInterval, now)
	case Mystery:
		return intervalElapsed(rec.LastMysteryAt, g.MysteryInterval, now)
	default:
		panic(fmt.Sprintf("cooldown: unknown kind %q", kind))
	}
}

// Stamp records a successful kind at now.
func (g *Gate) Stamp(rec *economy.Record, kind Kind, now time.Time) {
	today := common.DayString(now)
	switch kind {
	case DailyEnergy:
		rec.DailyEnergyDate = today
	case Spin:
		rec.LastSpinDate = today
	case AdWatch:
		rec.AdsWatchedToday = g.adsToday(rec, today) + 1
		rec.LastAdsDate = today
	case Bonus:
		rec.LastBonusAt = common.UnixMillis(now)
	case Mystery:
		rec.LastMysteryAt = common.UnixMillis(now)
	default:
		panic(fmt.Sprintf("cooldown: unknown kind %q", kind))
	}
}

// NextAt returns when kind opens again. The zero time means it is open now.
func (g *Gate) NextAt(rec *economy.Record, kind Kind, now time.Time) time.Time {
	if g.Allowed(rec, kind, now) {
		return time.Time{}
	}
	switch kind {
	case Bonus:
		return common.FromMillis(rec.LastBonusAt).Add(g.BonusInterval)
	case Mystery:
		return common.FromMillis(rec.LastMysteryAt).Add(g.MysteryInterval)
	default:
		// Day-based gates reopen at the next UTC midnight.
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	}
}

// AdsLeft returns how many ads may still be watched today.
func (g *Gate) AdsLeft(rec *economy.Record, now time.Time) int {
	return max(g.AdsPerDay-g.adsToday(rec, common.DayString(now)), 0)
}

// adsToday returns the counter, treating a stale day as zero.
func (g *Gate) adsToday(rec *economy.Record, today string) int {
	if rec.LastAdsDate != today {
		return 0
	}
	return rec.AdsWatchedToday
}

func intervalElapsed(lastMillis int64, interval time.Duration, now time.Time) bool {
	if lastMillis == 0 {
		return true
	}
	return now.Sub(common.FromMillis(lastMillis)) >= interval
}
