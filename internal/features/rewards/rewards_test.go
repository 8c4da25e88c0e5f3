package rewards

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// fixed returns a source that always yields v.
func fixed(v float64) SampleSource {
	return SampleFunc(func() float64 { return v })
}

// sequence yields samples in order, repeating the last one.
func sequence(vs ...float64) SampleSource {
	i := 0
	return SampleFunc(func() float64 {
		v := vs[min(i, len(vs)-1)]
		i++
		return v
	})
}

func TestPick_CumulativeThresholds(t *testing.T) {
	table := DefaultTables().Scratch

	tests := []struct {
		sample float64
		want   string
	}{
		{0, "points_5"},
		{39.999, "points_5"},
		{40, "points_10"},
		{64.999, "points_10"},
		{65, "energy_2"},
		{79.999, "energy_2"},
		{80, "miss"},
		{99.999, "miss"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pick(table, tt.sample).Key, "sample %v", tt.sample)
	}
}

func TestPick_FallsBackToLastTier(t *testing.T) {
	// Chances sum to 50: anything above falls through to the last tier.
	table := Table{Name: "short", Tiers: []Tier{
		{Chance: 25, Outcome: Outcome{Key: "a"}},
		{Chance: 25, Outcome: Outcome{Key: "b"}},
	}}

	assert.Equal(t, "b", Pick(table, 75).Key)
	assert.Equal(t, "b", Pick(table, 150).Key)
}

func TestRoller_UsesInjectedSource(t *testing.T) {
	roller := NewRoller(fixed(99))
	got := roller.Roll(DefaultTables().Mystery)

	assert.Equal(t, "diamond_1", got.Key)
	assert.Equal(t, int64(1), got.Diamond)
}

func TestRandomSource_Range(t *testing.T) {
	src := RandomSource{}
	for i := 0; i < 1000; i++ {
		v := src.Sample()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, SampleSpace)
	}
}

func TestLuck_MissAddsStepAndWinResets(t *testing.T) {
	tables := DefaultTables()
	acc := NewLuckAccumulator(DefaultLuckStep, tables.Guaranteed)

	// GIVEN: a miss at luck 50
	res := acc.Resolve(50, NewRoller(fixed(90)), tables.Scratch)
	assert.False(t, res.Forced)
	assert.False(t, res.Outcome.Win())
	assert.Equal(t, 75, res.Luck)

	// WHEN: a win follows
	res = acc.Resolve(res.Luck, NewRoller(fixed(10)), tables.Scratch)

	// THEN: the meter resets
	assert.True(t, res.Outcome.Win())
	assert.Equal(t, 0, res.Luck)
}

func TestLuck_ClampsAtMax(t *testing.T) {
	tables := DefaultTables()
	acc := NewLuckAccumulator(DefaultLuckStep, tables.Guaranteed)

	res := acc.Resolve(90, NewRoller(fixed(90)), tables.Scratch)

	assert.Equal(t, economy.MaxLuck, res.Luck)
}

func TestLuck_PityGuaranteesWinWithinFiveScratches(t *testing.T) {
	tables := DefaultTables()
	acc := NewLuckAccumulator(DefaultLuckStep, tables.Guaranteed)
	// Every roll would miss; the roller must not be consulted on the fifth.
	rolls := 0
	roller := NewRoller(SampleFunc(func() float64 {
		rolls++
		return 95
	}))

	luck := 0
	for i := 0; i < 4; i++ {
		res := acc.Resolve(luck, roller, tables.Scratch)
		require.False(t, res.Outcome.Win())
		luck = res.Luck
	}
	require.Equal(t, 100, luck)

	res := acc.Resolve(luck, roller, tables.Scratch)

	assert.True(t, res.Forced)
	assert.Equal(t, "lucky_20", res.Outcome.Key)
	assert.Equal(t, int64(20), res.Outcome.Points)
	assert.Equal(t, 0, res.Luck)
	assert.Equal(t, 4, rolls)
}

func TestLuck_SequenceNeverLeavesRange(t *testing.T) {
	tables := DefaultTables()
	acc := NewLuckAccumulator(DefaultLuckStep, tables.Guaranteed)
	roller := NewRoller(sequence(85, 95, 81, 99, 10, 90, 90, 90, 90, 90, 90, 5))

	luck := 0
	for i := 0; i < 12; i++ {
		res := acc.Resolve(luck, roller, tables.Scratch)
		luck = res.Luck
		require.GreaterOrEqual(t, luck, 0)
		require.LessOrEqual(t, luck, economy.MaxLuck)
	}
}

func TestOutcome_Labels(t *testing.T) {
	o := Outcome{Key: "mixed", Grant: economy.Grant{Energy: 5, Gold: 2, Diamond: 1}, Luck: 1}

	assert.Equal(t, []string{"+5 Energy", "+2 Gold", "+1 Diamond", "+1 Luck"}, o.Labels())
	assert.False(t, Outcome{Key: "luck_1", Luck: 1}.Win())
}

func TestDefaultTables_AreValid(t *testing.T) {
	require.NoError(t, DefaultTables().Validate())
}

func TestTableValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"empty", Table{Name: "x"}},
		{"sum below 100", Table{Name: "x", Tiers: []Tier{{Chance: 60, Outcome: Outcome{Key: "a"}}}}},
		{"zero chance", Table{Name: "x", Tiers: []Tier{
			{Chance: 100, Outcome: Outcome{Key: "a"}},
			{Chance: 0, Outcome: Outcome{Key: "b"}},
		}}},
		{"missing key", Table{Name: "x", Tiers: []Tier{{Chance: 100}}}},
		{"negative reward", Table{Name: "x", Tiers: []Tier{
			{Chance: 100, Outcome: Outcome{Key: "a", Grant: economy.Grant{Energy: -1}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.table.Validate())
		})
	}
}

func TestLoadTables_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.yaml")
	err := os.WriteFile(path, []byte(`
scratch:
  tiers:
    - {chance: 37, key: points_5, points: 5}
    - {chance: 25, key: points_10, points: 10}
    - {chance: 15, key: energy_2, energy: 2}
    - {chance: 3, key: gold_1, gold: 1}
    - {chance: 20, key: miss}
guaranteed:
  key: lucky_30
  points: 30
`), 0o600)
	require.NoError(t, err)

	tables, err := LoadTables(path)
	require.NoError(t, err)

	require.Len(t, tables.Scratch.Tiers, 5)
	assert.Equal(t, "scratch", tables.Scratch.Name)
	assert.Equal(t, int64(1), tables.Scratch.Tiers[3].Gold)
	assert.Equal(t, int64(30), tables.Guaranteed.Points)
	// Untouched tables keep their defaults.
	assert.Equal(t, DefaultTables().Mystery, tables.Mystery)
}

func TestLoadTables_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bonus:\n  tiers:\n    - {chance: 10, key: a, energy: 1}\n"), 0o600))

	_, err := LoadTables(path)

	assert.ErrorContains(t, err, "table bonus")
}

func TestLoadTables_EmptyPathUsesDefaults(t *testing.T) {
	tables, err := LoadTables("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTables(), tables)
}

func TestLoadTables_ShippedConfigMatchesDefaults(t *testing.T) {
	tables, err := LoadTables(filepath.Join("..", "..", "..", "configs", "rewards.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTables(), tables)
}
