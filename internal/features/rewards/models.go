// Package rewards rolls probabilistic rewards from cumulative-threshold tables
// and applies the luck (pity) meter to scratches.
// models.go describes outcomes, tiers and tables.
package rewards

import (
	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// SampleSpace is the exclusive upper bound of a roll sample: samples are in [0, 100).
const SampleSpace = 100.0

// Outcome is what a tier pays out.
type Outcome struct {
	Key           string `json:"key" yaml:"key"`
	economy.Grant `yaml:",inline"`
	Luck          int `json:"luck,omitempty" yaml:"luck"` // Added to the luck meter (spin wheel)
}

// Win reports whether the outcome credits any currency.
// A luck-only outcome is not a win.
func (o Outcome) Win() bool {
	return !o.Grant.IsZero()
}

// Labels renders the outcome for the client, e.g. ["+10 Points"].
func (o Outcome) Labels() []string {
	labels := o.Grant.Labels()
	if o.Luck != 0 {
		labels = append(labels, common.FormatAmount(int64(o.Luck), "luck"))
	}
	return labels
}

// Tier is one band of a table. Chance is a percentage of SampleSpace.
type Tier struct {
	Chance  float64 `json:"chance" yaml:"chance"`
	Outcome `yaml:",inline"`
}

// Table is an ordered list of tiers. The tiers' chances are accumulated in
// order into thresholds that partition [0, 100).
type Table struct {
	Name  string `json:"name" yaml:"-"`
	Tiers []Tier `json:"tiers" yaml:"tiers"`
}

// Tables is the full reward configuration of the game.
type Tables struct {
	Scratch Table `yaml:"scratch"`
	Spin    Table `yaml:"spin"`
	Mystery Table `yaml:"mystery"`
	Bonus   Table `yaml:"bonus"`

	// Guaranteed is paid instead of a roll when the luck meter is full.
	Guaranteed Outcome `yaml:"guaranteed"`
}
