// Package streak: rewards.go holds the check-in reward schedule.
package streak

import "github.com/sunusimusa/scratch-app/internal/features/economy"

// CycleLength is the streak day that pays the big reward and restarts the cycle.
const CycleLength = 7

// Reward table:
//
//	Day 3: 15 energy
//	Day 7: 50 energy + 3 gold (cycle restarts)
//	Any other day, including a fresh start: 5 energy
var (
	DefaultReward = economy.Grant{Energy: 5}
	DayRewards    = map[int]economy.Grant{
		3:           {Energy: 15},
		CycleLength: {Energy: 50, Gold: 3},
	}
)

// RewardFor returns the grant paid when the streak becomes day.
func RewardFor(day int) economy.Grant {
	if g, ok := DayRewards[day]; ok {
		return g
	}
	return DefaultReward
}
