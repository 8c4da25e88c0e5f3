// Package streak tracks consecutive daily check-ins.
//
// The elapsed time since the last accepted check-in decides the outcome:
//   - no previous check-in: the streak starts at 1
//   - less than a day: rejected, nothing changes
//   - one to two days: the streak grows by one
//   - two days or more: the streak restarts at 1
//
// Reaching CycleLength pays the cycle reward and resets the streak to 0,
// so the following check-in is day 1 of a new cycle.
package streak

import (
	"errors"
	"time"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// ErrAlreadyCheckedIn is returned when less than a day has passed.
// It is not a client error: the action reports "already claimed".
var ErrAlreadyCheckedIn = errors.New("streak already checked in")

const (
	Day   = 24 * time.Hour
	Grace = 2 * Day
)

// Result is an accepted check-in.
type Result struct {
	Reached   int           // Streak value reached, before a cycle reset
	Streak    int           // Streak value stored on the record
	Reward    economy.Grant // Credited to the record
	Continued bool          // The previous streak was extended
	Reset     bool          // The cycle completed and the streak went back to 0
}

// Tracker applies check-ins.
type Tracker struct{}

// NewTracker creates a tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// CheckIn applies a check-in at now to rec.
// On ErrAlreadyCheckedIn rec is untouched.
func (t *Tracker) CheckIn(rec *economy.Record, now time.Time) (*Result, error) {
	res := &Result{}

	if rec.LastStreakAt == 0 {
		res.Reached = 1
	} else {
		elapsed := now.Sub(common.FromMillis(rec.LastStreakAt))
		switch {
		case elapsed < Day:
			return nil, ErrAlreadyCheckedIn
		case elapsed < Grace:
			res.Reached = rec.Streak + 1
			res.Continued = true
		default:
			res.Reached = 1
		}
	}

	res.Reward = RewardFor(res.Reached)
	res.Streak = res.Reached
	if res.Reached >= CycleLength {
		res.Streak = 0
		res.Reset = true
	}

	res.Reward.Apply(rec)
	rec.Streak = res.Streak
	rec.LongestStreak = max(rec.LongestStreak, res.Reached)
	rec.LastStreakAt = common.UnixMillis(now)
	return res, nil
}
