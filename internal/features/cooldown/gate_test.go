package cooldown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

func newGate() *Gate {
	return NewGate(20, 30*time.Minute, 24*time.Hour)
}

func newRecord(now time.Time) *economy.Record {
	return economy.NewRecord("sess-1", "CODE0001", now)
}

func TestDailyGate_BlocksUntilMidnight(t *testing.T) {
	g := newGate()
	// GIVEN: a claim one second before UTC midnight
	claimed := time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)
	rec := newRecord(claimed)
	require.True(t, g.Allowed(rec, DailyEnergy, claimed))
	g.Stamp(rec, DailyEnergy, claimed)

	// THEN: the same day stays blocked, the next day opens
	assert.False(t, g.Allowed(rec, DailyEnergy, claimed))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), g.NextAt(rec, DailyEnergy, claimed))
	assert.True(t, g.Allowed(rec, DailyEnergy, claimed.Add(time.Second)))
}

func TestDailyGate_UsesUTCDay(t *testing.T) {
	g := newGate()
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("EST", -5*60*60)
	local := time.Date(2026, 3, 10, 23, 30, 0, 0, loc)
	rec := newRecord(local)
	g.Stamp(rec, Spin, local)

	assert.Equal(t, "2026-03-11", rec.LastSpinDate)
}

func TestAdGate_CapAndRollover(t *testing.T) {
	g := newGate()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := newRecord(now)

	// WHEN: twenty ads are watched
	for i := 0; i < 20; i++ {
		require.True(t, g.Allowed(rec, AdWatch, now), "ad %d should be allowed", i+1)
		g.Stamp(rec, AdWatch, now)
	}

	// THEN: the 21st is blocked
	assert.False(t, g.Allowed(rec, AdWatch, now))
	assert.Equal(t, 0, g.AdsLeft(rec, now))
	assert.Equal(t, 20, rec.AdsWatchedToday)

	// WHEN: the day rolls over
	tomorrow := now.Add(24 * time.Hour)
	require.True(t, g.Allowed(rec, AdWatch, tomorrow))
	g.Stamp(rec, AdWatch, tomorrow)

	// THEN: the counter restarted
	assert.Equal(t, 1, rec.AdsWatchedToday)
	assert.Equal(t, "2026-03-11", rec.LastAdsDate)
	assert.Equal(t, 19, g.AdsLeft(rec, tomorrow))
}

func TestIntervalGates(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		interval time.Duration
	}{
		{"bonus", Bonus, 30 * time.Minute},
		{"mystery", Mystery, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGate()
			now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
			rec := newRecord(now)

			// No prior use: open
			require.True(t, g.Allowed(rec, tt.kind, now))
			assert.True(t, g.NextAt(rec, tt.kind, now).IsZero())

			g.Stamp(rec, tt.kind, now)

			assert.False(t, g.Allowed(rec, tt.kind, now.Add(tt.interval-time.Millisecond)))
			assert.Equal(t, now.Add(tt.interval), g.NextAt(rec, tt.kind, now.Add(time.Minute)))
			assert.True(t, g.Allowed(rec, tt.kind, now.Add(tt.interval)))
		})
	}
}

func TestAllowed_DoesNotMutate(t *testing.T) {
	g := newGate()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := newRecord(now)
	rec.LastAdsDate = "2026-03-09"
	rec.AdsWatchedToday = 20
	before := rec.Clone()

	for _, kind := range []Kind{DailyEnergy, AdWatch, Spin, Bonus, Mystery} {
		g.Allowed(rec, kind, now)
	}

	assert.Equal(t, before, rec)
}
