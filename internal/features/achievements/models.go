// Package achievements unlocks one-time milestones and pays their bonuses.
// models.go holds the catalog shown to players.
package achievements

import (
	"strings"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// Achievement keys, as stored on the record.
const (
	FirstScratch = "FIRST_SCRATCH"
	BigWin       = "BIG_WIN"
	LuckMaster   = "LUCK_MASTER"
	Streak7      = "STREAK_7"
)

// BigWinPoints is the single-scratch points payout that counts as a big win.
const BigWinPoints = 20

// Achievement is a catalog entry.
type Achievement struct {
	Key         string        `json:"key"`
	Title       string        `json:"title"`
	Description string        `json:"desc"`
	Reward      economy.Grant `json:"-"`
}

// RewardText renders the bonus, e.g. "+5 Energy, +2 Gold".
func (a Achievement) RewardText() string {
	return strings.Join(a.Reward.Labels(), ", ")
}

// Status is a catalog entry with the caller's unlock state.
type Status struct {
	Achievement
	RewardText string `json:"reward"`
	Unlocked   bool   `json:"unlocked"`
}

// Catalog lists every achievement in evaluation order.
var Catalog = []Achievement{
	{
		Key:         FirstScratch,
		Title:       "First Scratch",
		Description: "Complete your first scratch",
		Reward:      economy.Grant{Energy: 3},
	},
	{
		Key:         BigWin,
		Title:       "Big Win",
		Description: "Win 20 points in one scratch",
		Reward:      economy.Grant{Energy: 5, Gold: 2},
	},
	{
		Key:         LuckMaster,
		Title:       "Luck Master",
		Description: "Fill Luck Meter to 100%",
		Reward:      economy.Grant{Points: 20},
	},
	{
		Key:         Streak7,
		Title:       "7 Days Streak",
		Description: "Play 7 days in a row",
		Reward:      economy.Grant{Energy: 50},
	},
}

// StatusFor returns the catalog annotated with rec's unlocks.
func StatusFor(rec *economy.Record) []Status {
	out := make([]Status, 0, len(Catalog))
	for _, a := range Catalog {
		out = append(out, Status{
			Achievement: a,
			RewardText:  a.RewardText(),
			Unlocked:    rec.HasAchievement(a.Key),
		})
	}
	return out
}
