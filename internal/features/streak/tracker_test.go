package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestCheckIn_FirstEver(t *testing.T) {
	rec := economy.NewRecord("s", "C", start)

	res, err := NewTracker().CheckIn(rec, start)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, int64(5), rec.Energy)
	assert.Equal(t, start.UnixMilli(), rec.LastStreakAt)
	assert.False(t, res.Continued)
}

func TestCheckIn_SevenDayCycle(t *testing.T) {
	// GIVEN: seven check-ins exactly 25 hours apart
	rec := economy.NewRecord("s", "C", start)
	tracker := NewTracker()

	var energy []int64
	var streaks []int
	now := start
	for day := 1; day <= 7; day++ {
		before := rec.Energy
		_, err := tracker.CheckIn(rec, now)
		require.NoError(t, err, "day %d", day)
		energy = append(energy, rec.Energy-before)
		streaks = append(streaks, rec.Streak)
		now = now.Add(25 * time.Hour)
	}

	// THEN: day 3 pays 15, day 7 pays 50 + 3 gold and resets the streak
	assert.Equal(t, []int64{5, 5, 15, 5, 5, 5, 50}, energy)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 0}, streaks)
	assert.Equal(t, int64(3), rec.Gold)
	assert.Equal(t, 7, rec.LongestStreak)

	// AND: the next check-in starts a new cycle at 1
	res, err := tracker.CheckIn(rec, now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Reached)
	assert.Equal(t, 1, rec.Streak)
}

func TestCheckIn_TooEarlyLeavesRecordUntouched(t *testing.T) {
	rec := economy.NewRecord("s", "C", start)
	tracker := NewTracker()
	_, err := tracker.CheckIn(rec, start)
	require.NoError(t, err)
	before := rec.Clone()

	_, err = tracker.CheckIn(rec, start.Add(Day-time.Millisecond))

	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, before, rec)
}

func TestCheckIn_Boundaries(t *testing.T) {
	tests := []struct {
		name       string
		elapsed    time.Duration
		wantStreak int
	}{
		{"exactly one day continues", Day, 5},
		{"just under two days continues", Grace - time.Millisecond, 5},
		{"exactly two days restarts", Grace, 1},
		{"a week later restarts", 7 * Day, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := economy.NewRecord("s", "C", start)
			rec.Streak = 4
			rec.LongestStreak = 4
			rec.LastStreakAt = start.UnixMilli()

			res, err := NewTracker().CheckIn(rec, start.Add(tt.elapsed))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStreak, rec.Streak)
			assert.Equal(t, int64(5), res.Reward.Energy)
			assert.Equal(t, max(4, tt.wantStreak), rec.LongestStreak, "longest streak never shrinks")
		})
	}
}

func TestRewardFor(t *testing.T) {
	assert.Equal(t, economy.Grant{Energy: 5}, RewardFor(1))
	assert.Equal(t, economy.Grant{Energy: 15}, RewardFor(3))
	assert.Equal(t, economy.Grant{Energy: 50, Gold: 3}, RewardFor(7))
}
