package rewards

import (
	"errors"
	"fmt"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// DefaultTables returns the built-in reward configuration.
//
//	scratch: 40% +5 points, 25% +10 points, 15% +2 energy, 20% nothing
//	spin:    six wheel segments of roughly equal weight
//	mystery: 50% +5 energy, 30% +15 points, 15% +1 gold, 5% +1 diamond
//	bonus:   +1..+5 energy, 20% each
func DefaultTables() Tables {
	return Tables{
		Scratch: Table{Name: "scratch", Tiers: []Tier{
			{Chance: 40, Outcome: Outcome{Key: "points_5", Grant: economy.Grant{Points: 5}}},
			{Chance: 25, Outcome: Outcome{Key: "points_10", Grant: economy.Grant{Points: 10}}},
			{Chance: 15, Outcome: Outcome{Key: "energy_2", Grant: economy.Grant{Energy: 2}}},
			{Chance: 20, Outcome: Outcome{Key: "miss"}},
		}},
		Spin: Table{Name: "spin", Tiers: []Tier{
			{Chance: 17, Outcome: Outcome{Key: "energy_5", Grant: economy.Grant{Energy: 5}}},
			{Chance: 17, Outcome: Outcome{Key: "energy_10", Grant: economy.Grant{Energy: 10}}},
			{Chance: 17, Outcome: Outcome{Key: "points_20", Grant: economy.Grant{Points: 20}}},
			{Chance: 17, Outcome: Outcome{Key: "luck_1", Luck: 1}},
			{Chance: 16, Outcome: Outcome{Key: "energy_15", Grant: economy.Grant{Energy: 15}}},
			{Chance: 16, Outcome: Outcome{Key: "points_50", Grant: economy.Grant{Points: 50}}},
		}},
		Mystery: Table{Name: "mystery", Tiers: []Tier{
			{Chance: 50, Outcome: Outcome{Key: "energy_5", Grant: economy.Grant{Energy: 5}}},
			{Chance: 30, Outcome: Outcome{Key: "points_15", Grant: economy.Grant{Points: 15}}},
			{Chance: 15, Outcome: Outcome{Key: "gold_1", Grant: economy.Grant{Gold: 1}}},
			{Chance: 5, Outcome: Outcome{Key: "diamond_1", Grant: economy.Grant{Diamond: 1}}},
		}},
		Bonus: Table{Name: "bonus", Tiers: []Tier{
			{Chance: 20, Outcome: Outcome{Key: "energy_1", Grant: economy.Grant{Energy: 1}}},
			{Chance: 20, Outcome: Outcome{Key: "energy_2", Grant: economy.Grant{Energy: 2}}},
			{Chance: 20, Outcome: Outcome{Key: "energy_3", Grant: economy.Grant{Energy: 3}}},
			{Chance: 20, Outcome: Outcome{Key: "energy_4", Grant: economy.Grant{Energy: 4}}},
			{Chance: 20, Outcome: Outcome{Key: "energy_5", Grant: economy.Grant{Energy: 5}}},
		}},
		Guaranteed: Outcome{Key: "lucky_20", Grant: economy.Grant{Points: 20}},
	}
}

// LoadTables reads tables from a YAML file. An empty path returns the defaults.
// Tables missing from the file keep their default value.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()
	if path == "" {
		return tables, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read reward tables: %w", err)
	}
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return Tables{}, fmt.Errorf("failed to parse reward tables %s: %w", path, err)
	}
	tables.Scratch.Name = "scratch"
	tables.Spin.Name = "spin"
	tables.Mystery.Name = "mystery"
	tables.Bonus.Name = "bonus"

	if err := tables.Validate(); err != nil {
		return Tables{}, fmt.Errorf("invalid reward tables %s: %w", path, err)
	}

	log.WithField("path", path).Info("Reward tables loaded")
	return tables, nil
}

// Validate checks that every table partitions [0, 100) and that the
// guaranteed outcome is a win.
func (t Tables) Validate() error {
	var errs []error
	for _, table := range []Table{t.Scratch, t.Spin, t.Mystery, t.Bonus} {
		if err := table.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if !t.Guaranteed.Win() {
		errs = append(errs, errors.New("guaranteed outcome must credit a currency"))
	}
	return errors.Join(errs...)
}

// Validate checks a single table.
func (t Table) Validate() error {
	if len(t.Tiers) == 0 {
		return fmt.Errorf("table %s: no tiers", t.Name)
	}
	var total float64
	for i, tier := range t.Tiers {
		if tier.Key == "" {
			return fmt.Errorf("table %s: tier %d has no key", t.Name, i)
		}
		if tier.Chance <= 0 {
			return fmt.Errorf("table %s: tier %s has non-positive chance", t.Name, tier.Key)
		}
		if tier.Energy < 0 || tier.Points < 0 || tier.Gold < 0 || tier.Diamond < 0 || tier.Luck < 0 {
			return fmt.Errorf("table %s: tier %s has a negative reward", t.Name, tier.Key)
		}
		total += tier.Chance
	}
	if math.Abs(total-SampleSpace) > 1e-9 {
		return fmt.Errorf("table %s: chances sum to %.2f, want %.0f", t.Name, total, SampleSpace)
	}
	return nil
}
