package achievements

import (
	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

// Event describes what the current action did. Rules read it together with
// the record state after the action's primary mutation.
type Event struct {
	Scratched     bool  // The action was a scratch
	ScratchPoints int64 // Points paid by that scratch's outcome
	LuckForced    bool  // The full luck meter paid the guaranteed outcome
	StreakReached int   // Streak value reached by a check-in, before any cycle reset
}

// Rule pairs a catalog entry with its unlock condition.
type Rule struct {
	Achievement
	Check func(rec *economy.Record, ev Event) bool
}

// DefaultRules returns the rules for Catalog, in catalog order.
func DefaultRules() []Rule {
	checks := map[string]func(*economy.Record, Event) bool{
		FirstScratch: func(rec *economy.Record, ev Event) bool {
			return ev.Scratched && rec.Scratches >= 1
		},
		BigWin: func(_ *economy.Record, ev Event) bool {
			return ev.Scratched && ev.ScratchPoints >= BigWinPoints
		},
		LuckMaster: func(rec *economy.Record, ev Event) bool {
			return ev.LuckForced || rec.Luck >= economy.MaxLuck
		},
		Streak7: func(rec *economy.Record, ev Event) bool {
			return ev.StreakReached >= 7 || rec.LongestStreak >= 7
		},
	}

	rules := make([]Rule, 0, len(Catalog))
	for _, a := range Catalog {
		rules = append(rules, Rule{Achievement: a, Check: checks[a.Key]})
	}
	return rules
}

// Evaluator runs the rules once per action.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator over rules. Nil means DefaultRules.
func NewEvaluator(rules []Rule) *Evaluator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Evaluator{rules: rules}
}

// Evaluate checks every rule in order, exactly once. A newly satisfied rule is
// unlocked and its reward applied immediately, so later rules in the same pass
// see it. Already-unlocked keys are skipped before their check runs.
// It returns only the achievements unlocked by this call.
func (e *Evaluator) Evaluate(rec *economy.Record, ev Event) []Achievement {
	var unlocked []Achievement
	for _, rule := range e.rules {
		if rec.HasAchievement(rule.Key) {
			continue
		}
		if !rule.Check(rec, ev) {
			continue
		}
		rec.AddAchievement(rule.Key)
		rule.Reward.Apply(rec)
		unlocked = append(unlocked, rule.Achievement)

		log.WithFields(log.Fields{
			"session":     rec.SessionID,
			"achievement": rule.Key,
		}).Info("Achievement unlocked")
	}
	return unlocked
}
