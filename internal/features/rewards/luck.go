package rewards

import (
	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// DefaultLuckStep is the luck gained per losing scratch. Four misses in a row
// fill the meter, so the fifth scratch is always a win.
const DefaultLuckStep = 25

// LuckResult is the outcome of one luck-gated roll.
type LuckResult struct {
	Outcome Outcome
	Luck    int  // Meter value after the roll
	Forced  bool // The full meter paid the guaranteed outcome
}

// LuckAccumulator implements the pity meter around a roller.
type LuckAccumulator struct {
	Step       int
	Guaranteed Outcome
}

// NewLuckAccumulator creates an accumulator paying guaranteed on a full meter.
func NewLuckAccumulator(step int, guaranteed Outcome) *LuckAccumulator {
	return &LuckAccumulator{Step: step, Guaranteed: guaranteed}
}

// Resolve runs one scratch against the meter.
//
//   - luck >= MaxLuck: the guaranteed outcome is paid, the meter resets and the roller is not consulted.
//   - otherwise the roller draws from table; any win resets the meter, a miss adds Step.
func (a *LuckAccumulator) Resolve(luck int, roller *Roller, table Table) LuckResult {
	if luck >= economy.MaxLuck {
		return LuckResult{Outcome: a.Guaranteed, Luck: 0, Forced: true}
	}

	outcome := roller.Roll(table)
	if outcome.Win() {
		return LuckResult{Outcome: outcome, Luck: 0}
	}
	return LuckResult{
		Outcome: outcome,
		Luck:    common.ClampInt(luck+a.Step, 0, economy.MaxLuck),
	}
}
