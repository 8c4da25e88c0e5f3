// Package game orchestrates every player action over the economy record.
// models.go describes what actions return to the client.
package game

import (
	"time"

	"github.com/sunusimusa/scratch-app/internal/features/achievements"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
	"github.com/sunusimusa/scratch-app/internal/features/rewards"
)

// Settings are the fixed economy knobs.
type Settings struct {
	ScratchCost int64
	DailyEnergy int64
	AdEnergy    int64
}

// DefaultSettings returns the standard economy.
func DefaultSettings() Settings {
	return Settings{ScratchCost: 3, DailyEnergy: 5, AdEnergy: 10}
}

// Snapshot is the record as the client sees it after an action.
type Snapshot struct {
	UserID         string   `json:"userId"`
	Energy         int64    `json:"energy"`
	Points         int64    `json:"points"`
	Gold           int64    `json:"gold"`
	Diamond        int64    `json:"diamond"`
	Level          int      `json:"level"`
	Luck           int      `json:"luck"`
	Streak         int      `json:"streak"`
	Achievements   []string `json:"achievements"`
	ReferralCode   string   `json:"referralCode"`
	ReferredBy     string   `json:"referredBy,omitempty"`
	ReferralsCount int      `json:"referralsCount"`
	AdsLeft        int      `json:"adsLeft"`
}

// RewardView is a rolled outcome with display labels.
type RewardView struct {
	rewards.Outcome
	Labels []string `json:"labels"`
}

func newRewardView(o rewards.Outcome) *RewardView {
	labels := o.Labels()
	if labels == nil {
		labels = []string{}
	}
	return &RewardView{Outcome: o, Labels: labels}
}

// UnlockView is an achievement unlocked by the action.
type UnlockView struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Reward string `json:"reward"`
}

func newUnlockViews(as []achievements.Achievement) []UnlockView {
	if len(as) == 0 {
		return nil
	}
	out := make([]UnlockView, 0, len(as))
	for _, a := range as {
		out = append(out, UnlockView{Key: a.Key, Title: a.Title, Reward: a.RewardText()})
	}
	return out
}

// ActionResult is the common response of every mutating action.
type ActionResult struct {
	Success bool `json:"success"`
	Snapshot
	Reward          *RewardView  `json:"reward,omitempty"`
	NewAchievements []UnlockView `json:"newAchievements,omitempty"`
}

// ScratchResult adds the luck outcome of a scratch.
type ScratchResult struct {
	ActionResult
	Lucky bool `json:"lucky"` // The full luck meter paid the guaranteed reward
}

// BonusResult reports whether the bonus was available.
// An unavailable bonus is not an error; nothing is persisted.
type BonusResult struct {
	ActionResult
	Available bool  `json:"available"`
	NextAt    int64 `json:"nextAt,omitempty"` // Epoch ms when the bonus reopens
}

// StreakResult reports a check-in. AlreadyClaimed is not an error.
type StreakResult struct {
	ActionResult
	AlreadyClaimed bool `json:"alreadyClaimed"`
	Day            int  `json:"day,omitempty"` // Streak day reached by this check-in
	CycleComplete  bool `json:"cycleComplete,omitempty"`
}

// PurchaseResult reports a shop purchase.
type PurchaseResult struct {
	ActionResult
	Item string `json:"item"`
}

// Dashboard is the full read-only view of a record.
type Dashboard struct {
	Snapshot
	Success          bool      `json:"success"`
	// Shadows Snapshot.Achievements: the dashboard shows a count.
	AchievementCount int       `json:"achievements"`
	LevelProgress    int       `json:"levelProgress"` // Percent into the current level
	LongestStreak    int       `json:"longestStreak"`
	Scratches        int       `json:"scratches"`
	DailyAvailable   bool      `json:"dailyAvailable"`
	SpinAvailable    bool      `json:"spinAvailable"`
	NextBonusAt      int64     `json:"nextBonusAt,omitempty"`
	NextMysteryAt    int64     `json:"nextMysteryAt,omitempty"`
	LastActive       time.Time `json:"lastActive"`
	CreatedAt        time.Time `json:"createdAt"`
	DaysPlaying      int       `json:"daysPlaying"`
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func newSnapshot(rec *economy.Record, adsLeft int) Snapshot {
	achieved := append([]string{}, rec.Achievements...)
	return Snapshot{
		UserID:         rec.UserID,
		Energy:         rec.Energy,
		Points:         rec.Points,
		Gold:           rec.Gold,
		Diamond:        rec.Diamond,
		Level:          rec.Level,
		Luck:           rec.Luck,
		Streak:         rec.Streak,
		Achievements:   achieved,
		ReferralCode:   rec.ReferralCode,
		ReferredBy:     rec.ReferredBy,
		ReferralsCount: rec.ReferralsCount,
		AdsLeft:        adsLeft,
	}
}
