// Package game: service.go contains the action pipeline.
//
// Every action follows the same steps: load the record, check its gate or
// cost (rejecting with a coded error and no mutation), run the domain
// component, evaluate achievements where relevant, settle derived fields,
// persist with a version check and return a snapshot.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/achievements"
	"github.com/sunusimusa/scratch-app/internal/features/cooldown"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
	"github.com/sunusimusa/scratch-app/internal/features/referral"
	"github.com/sunusimusa/scratch-app/internal/features/rewards"
	"github.com/sunusimusa/scratch-app/internal/features/shop"
	"github.com/sunusimusa/scratch-app/internal/features/streak"
)

// createAttempts bounds retries when a generated referral code is taken.
const createAttempts = 5

// errNoChange tells mutate to return the record without saving it.
var errNoChange = errors.New("no change")

// Service runs player actions.
type Service struct {
	store        economy.Store
	gate         *cooldown.Gate
	roller       *rewards.Roller
	luck         *rewards.LuckAccumulator
	tables       rewards.Tables
	achievements *achievements.Evaluator
	referrals    *referral.Ledger
	streaks      *streak.Tracker
	shop         *shop.Catalog
	settings     Settings
	now          common.Clock
}

// NewService wires the action pipeline. A nil clock means common.SystemClock.
func NewService(
	store economy.Store,
	tables rewards.Tables,
	gate *cooldown.Gate,
	roller *rewards.Roller,
	settings Settings,
	clock common.Clock,
) *Service {
	if clock == nil {
		clock = common.SystemClock
	}
	return &Service{
		store:        store,
		gate:         gate,
		roller:       roller,
		luck:         rewards.NewLuckAccumulator(rewards.DefaultLuckStep, tables.Guaranteed),
		tables:       tables,
		achievements: achievements.NewEvaluator(nil),
		referrals:    referral.NewLedger(store),
		streaks:      streak.NewTracker(),
		shop:         shop.DefaultCatalog(),
		settings:     settings,
		now:          clock,
	}
}

// GetOrCreate returns the session's record, creating it on first contact.
func (s *Service) GetOrCreate(ctx context.Context, sessionID string) (*ActionResult, error) {
	if sessionID == "" {
		return nil, common.ErrNoSession
	}

	rec, err := s.load(ctx, sessionID)
	if errors.Is(err, common.ErrNoUser) {
		rec, err = s.create(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return s.result(rec), nil
}

func (s *Service) create(ctx context.Context, sessionID string) (*economy.Record, error) {
	for attempt := 1; attempt <= createAttempts; attempt++ {
		rec := economy.NewRecord(sessionID, economy.NewReferralCode(), s.now())
		err := s.store.Create(ctx, rec)
		switch {
		case err == nil:
			log.WithFields(log.Fields{
				"session": sessionID,
				"user_id": rec.UserID,
			}).Info("Economy record created")
			return rec, nil
		case errors.Is(err, common.ErrDuplicateReferralCode):
			log.WithField("attempt", attempt).Warn("Referral code collision, regenerating")
		case errors.Is(err, common.ErrSessionExists):
			// A concurrent request created it first.
			return s.load(ctx, sessionID)
		default:
			return nil, fmt.Errorf("failed to create record: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique referral code after %d attempts", createAttempts)
}

// Dashboard returns the full read-only view of the record.
func (s *Service) Dashboard(ctx context.Context, sessionID string) (*Dashboard, error) {
	if sessionID == "" {
		return nil, common.ErrNoSession
	}
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &Dashboard{
		Snapshot:         newSnapshot(rec, s.gate.AdsLeft(rec, now)),
		Success:          true,
		AchievementCount: len(rec.Achievements),
		LevelProgress:    rec.LevelProgress(),
		LongestStreak:    rec.LongestStreak,
		Scratches:        rec.Scratches,
		DailyAvailable:   s.gate.Allowed(rec, cooldown.DailyEnergy, now),
		SpinAvailable:    s.gate.Allowed(rec, cooldown.Spin, now),
		NextBonusAt:      toMillis(s.gate.NextAt(rec, cooldown.Bonus, now)),
		NextMysteryAt:    toMillis(s.gate.NextAt(rec, cooldown.Mystery, now)),
		LastActive:       rec.LastActive,
		CreatedAt:        rec.CreatedAt,
		DaysPlaying:      int(now.Sub(rec.CreatedAt) / (24 * time.Hour)),
	}, nil
}

// Achievements returns the catalog with the session's unlock flags.
func (s *Service) Achievements(ctx context.Context, sessionID string) ([]achievements.Status, error) {
	if sessionID == "" {
		return nil, common.ErrNoSession
	}
	rec, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return achievements.StatusFor(rec), nil
}

// ClaimDailyEnergy credits the daily energy once per UTC day.
func (s *Service) ClaimDailyEnergy(ctx context.Context, sessionID string) (*ActionResult, error) {
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		if !s.gate.Allowed(rec, cooldown.DailyEnergy, now) {
			return common.ErrDailyAlreadyClaimed
		}
		rec.Energy += s.settings.DailyEnergy
		s.gate.Stamp(rec, cooldown.DailyEnergy, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.result(rec), nil
}

// WatchAd credits ad energy while today's ad counter is below the cap.
func (s *Service) WatchAd(ctx context.Context, sessionID string) (*ActionResult, error) {
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		if !s.gate.Allowed(rec, cooldown.AdWatch, now) {
			return common.ErrAdsLimitReached
		}
		rec.Energy += s.settings.AdEnergy
		s.gate.Stamp(rec, cooldown.AdWatch, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.result(rec), nil
}

// Scratch spends energy, rolls the scratch table through the luck meter and
// evaluates achievements.
func (s *Service) Scratch(ctx context.Context, sessionID string) (*ScratchResult, error) {
	var (
		lucky    bool
		outcome  rewards.Outcome
		unlocked []achievements.Achievement
	)
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, _ time.Time) error {
		if rec.Energy < s.settings.ScratchCost {
			return common.ErrNoEnergy
		}
		rec.Energy -= s.settings.ScratchCost

		res := s.luck.Resolve(rec.Luck, s.roller, s.tables.Scratch)
		outcome, lucky = res.Outcome, res.Forced
		rec.Luck = res.Luck
		applyOutcome(rec, outcome)
		rec.Scratches++

		unlocked = s.achievements.Evaluate(rec, achievements.Event{
			Scratched:     true,
			ScratchPoints: outcome.Points,
			LuckForced:    res.Forced,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"outcome": outcome.Key,
		"lucky":   lucky,
		"luck":    rec.Luck,
	}).Debug("Scratch")

	res := s.result(rec)
	res.Reward = newRewardView(outcome)
	res.NewAchievements = newUnlockViews(unlocked)
	return &ScratchResult{ActionResult: *res, Lucky: lucky}, nil
}

// Spin rolls the wheel once per UTC day.
func (s *Service) Spin(ctx context.Context, sessionID string) (*ActionResult, error) {
	var (
		outcome  rewards.Outcome
		unlocked []achievements.Achievement
	)
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		if !s.gate.Allowed(rec, cooldown.Spin, now) {
			return common.ErrAlreadySpun
		}
		outcome = s.roller.Roll(s.tables.Spin)
		applyOutcome(rec, outcome)
		s.gate.Stamp(rec, cooldown.Spin, now)
		// The wheel can fill the luck meter.
		unlocked = s.achievements.Evaluate(rec, achievements.Event{})
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.result(rec)
	res.Reward = newRewardView(outcome)
	res.NewAchievements = newUnlockViews(unlocked)
	return res, nil
}

// OpenMystery opens the mystery box once per interval.
func (s *Service) OpenMystery(ctx context.Context, sessionID string) (*ActionResult, error) {
	var outcome rewards.Outcome
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		if !s.gate.Allowed(rec, cooldown.Mystery, now) {
			return common.ErrCooldown
		}
		outcome = s.roller.Roll(s.tables.Mystery)
		applyOutcome(rec, outcome)
		s.gate.Stamp(rec, cooldown.Mystery, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.result(rec)
	res.Reward = newRewardView(outcome)
	return res, nil
}

// ClaimBonus pays the periodic energy bonus. While it is cooling down the
// result reports Available=false and nothing is written.
func (s *Service) ClaimBonus(ctx context.Context, sessionID string) (*BonusResult, error) {
	var (
		available bool
		nextAt    time.Time
		outcome   rewards.Outcome
	)
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		if !s.gate.Allowed(rec, cooldown.Bonus, now) {
			nextAt = s.gate.NextAt(rec, cooldown.Bonus, now)
			return errNoChange
		}
		available = true
		outcome = s.roller.Roll(s.tables.Bonus)
		applyOutcome(rec, outcome)
		s.gate.Stamp(rec, cooldown.Bonus, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.result(rec)
	if available {
		res.Reward = newRewardView(outcome)
		nextAt = s.gate.NextAt(rec, cooldown.Bonus, s.now())
	}
	return &BonusResult{ActionResult: *res, Available: available, NextAt: toMillis(nextAt)}, nil
}

// ClaimReferral applies another session's referral code. The claimer and the
// inviter are saved together; a failed save changes neither.
func (s *Service) ClaimReferral(ctx context.Context, sessionID, code string) (*ActionResult, error) {
	claimer, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	claim, err := s.referrals.Claim(ctx, claimer, code)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, rec := range []*economy.Record{claimer, claim.Inviter} {
		rec.Settle()
	}
	claimer.Touch(now)

	if err := s.store.SavePair(ctx, claimer, claim.Inviter); err != nil {
		return nil, s.saveError(err, sessionID)
	}

	log.WithFields(log.Fields{
		"session":   sessionID,
		"inviter":   claim.Inviter.SessionID,
		"referrals": claim.Inviter.ReferralsCount,
		"milestone": !claim.Milestone.IsZero(),
	}).Info("Referral claimed")

	return s.result(claimer), nil
}

// CheckInStreak records today's streak check-in. A second check-in within a
// day reports AlreadyClaimed and writes nothing.
func (s *Service) CheckInStreak(ctx context.Context, sessionID string) (*StreakResult, error) {
	var (
		checkIn  *streak.Result
		unlocked []achievements.Achievement
	)
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, now time.Time) error {
		res, err := s.streaks.CheckIn(rec, now)
		if errors.Is(err, streak.ErrAlreadyCheckedIn) {
			return errNoChange
		}
		if err != nil {
			return err
		}
		checkIn = res
		unlocked = s.achievements.Evaluate(rec, achievements.Event{StreakReached: res.Reached})
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.result(rec)
	if checkIn == nil {
		return &StreakResult{ActionResult: *res, AlreadyClaimed: true}, nil
	}
	res.Reward = newRewardView(rewards.Outcome{Key: fmt.Sprintf("streak_day_%d", checkIn.Reached), Grant: checkIn.Reward})
	res.NewAchievements = newUnlockViews(unlocked)
	return &StreakResult{
		ActionResult:  *res,
		Day:           checkIn.Reached,
		CycleComplete: checkIn.Reset,
	}, nil
}

// Buy exchanges currency for energy.
func (s *Service) Buy(ctx context.Context, sessionID, item string) (*PurchaseResult, error) {
	var bought shop.Item
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, _ time.Time) error {
		it, err := s.shop.Buy(rec, item)
		if err != nil {
			return err
		}
		bought = it
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := s.result(rec)
	res.Reward = newRewardView(rewards.Outcome{Key: bought.Key, Grant: bought.Gives})
	return &PurchaseResult{ActionResult: *res, Item: bought.Key}, nil
}

// Credit adds currency to a record outside the game rules (admin grants).
func (s *Service) Credit(ctx context.Context, sessionID string, g economy.Grant) (*ActionResult, error) {
	if g.Energy < 0 || g.Points < 0 || g.Gold < 0 || g.Diamond < 0 {
		return nil, common.ErrInvalidAmount
	}
	rec, err := s.mutate(ctx, sessionID, func(rec *economy.Record, _ time.Time) error {
		g.Apply(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"grant":   g.Labels(),
	}).Info("Admin credit applied")
	return s.result(rec), nil
}

// Shop lists the shop offers.
func (s *Service) Shop() []shop.Item {
	return s.shop.Items()
}

// mutate loads the record, runs fn and persists the result.
// fn returning errNoChange skips the save and still returns the record.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(rec *economy.Record, now time.Time) error) (*economy.Record, error) {
	rec, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := fn(rec, now); err != nil {
		if errors.Is(err, errNoChange) {
			return rec, nil
		}
		return nil, err
	}

	rec.Settle()
	rec.Touch(now)
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, s.saveError(err, sessionID)
	}
	return rec, nil
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*economy.Record, error) {
	if sessionID == "" {
		return nil, common.ErrNoSession
	}
	return s.load(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*economy.Record, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, common.ErrRecordNotFound) {
		return nil, common.ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	rec.Normalize()
	return rec, nil
}

func (s *Service) saveError(err error, sessionID string) error {
	if errors.Is(err, common.ErrConflict) {
		log.WithField("session", sessionID).Warn("Concurrent update rejected")
		return common.ErrConflict
	}
	return fmt.Errorf("failed to save record: %w", err)
}

func (s *Service) result(rec *economy.Record) *ActionResult {
	return &ActionResult{
		Success:  true,
		Snapshot: newSnapshot(rec, s.gate.AdsLeft(rec, s.now())),
	}
}

// applyOutcome credits an outcome's currency and luck.
func applyOutcome(rec *economy.Record, o rewards.Outcome) {
	o.Grant.Apply(rec)
	rec.Luck += o.Luck
}
