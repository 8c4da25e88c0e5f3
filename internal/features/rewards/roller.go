package rewards

import (
	"math/rand/v2"
)

// SampleSource yields samples uniformly distributed in [0, SampleSpace).
type SampleSource interface {
	Sample() float64
}

// SampleFunc adapts a plain function to SampleSource.
type SampleFunc func() float64

func (f SampleFunc) Sample() float64 { return f() }

// RandomSource is the production source. Rewards are cosmetic, so a
// non-cryptographic generator is enough.
type RandomSource struct{}

func (RandomSource) Sample() float64 {
	return rand.Float64() * SampleSpace
}

// Pick returns the outcome of the first tier whose cumulative threshold
// exceeds sample. If no tier matches (sample out of range or chances summing
// below 100) the last tier wins. Pick panics on an empty table; tables are
// validated when loaded.
func Pick(table Table, sample float64) Outcome {
	var threshold float64
	for _, tier := range table.Tiers {
		threshold += tier.Chance
		if sample < threshold {
			return tier.Outcome
		}
	}
	return table.Tiers[len(table.Tiers)-1].Outcome
}

// Roller draws outcomes from tables using an injected sample source.
type Roller struct {
	src SampleSource
}

// NewRoller creates a roller. A nil source falls back to RandomSource.
func NewRoller(src SampleSource) *Roller {
	if src == nil {
		src = RandomSource{}
	}
	return &Roller{src: src}
}

// Roll draws one outcome from table.
func (r *Roller) Roll(table Table) Outcome {
	return Pick(table, r.src.Sample())
}
