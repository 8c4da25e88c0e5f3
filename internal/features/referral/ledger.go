// Package referral links a claimer to the inviter whose code they enter
// and pays both sides, plus milestone bonuses to the inviter.
package referral

import (
	"context"
	"errors"
	"fmt"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

var (
	// ClaimerReward is paid to the session entering a code.
	ClaimerReward = economy.Grant{Energy: 10}
	// InviterReward is paid to the code owner for every claim.
	InviterReward = economy.Grant{Energy: 25, Points: 125}
	// Milestones fire when the inviter's count becomes exactly the key.
	Milestones = map[int]economy.Grant{
		5:  {Gold: 5},
		20: {Diamond: 1},
	}
)

// Finder looks up the owner of a referral code.
type Finder interface {
	FindByReferralCode(ctx context.Context, code string) (*economy.Record, error)
}

// Result describes a successful claim. Both records are already mutated;
// the caller persists them together.
type Result struct {
	Inviter   *economy.Record
	Milestone economy.Grant // Zero unless this claim hit a milestone
}

// Ledger validates and applies referral claims.
type Ledger struct {
	finder Finder
}

// NewLedger creates a ledger.
func NewLedger(finder Finder) *Ledger {
	return &Ledger{finder: finder}
}

// Claim applies code to claimer. Checks run in a fixed order:
// ALREADY_REFERRED, then SELF_REFERRAL, then INVALID_CODE.
// On rejection neither record is touched.
func (l *Ledger) Claim(ctx context.Context, claimer *economy.Record, code string) (*Result, error) {
	code = economy.NormalizeCode(code)

	if claimer.ReferredBy != "" {
		return nil, common.ErrAlreadyReferred
	}
	if code == claimer.ReferralCode {
		return nil, common.ErrSelfReferral
	}
	if code == "" {
		return nil, common.ErrInvalidCode
	}

	inviter, err := l.finder.FindByReferralCode(ctx, code)
	if errors.Is(err, common.ErrRecordNotFound) {
		return nil, common.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up referral code: %w", err)
	}
	if inviter.SessionID == claimer.SessionID {
		return nil, common.ErrSelfReferral
	}
	inviter.Normalize()

	claimer.ReferredBy = code
	ClaimerReward.Apply(claimer)

	InviterReward.Apply(inviter)
	inviter.ReferralsCount++
	milestone := Milestones[inviter.ReferralsCount]
	milestone.Apply(inviter)

	return &Result{Inviter: inviter, Milestone: milestone}, nil
}
