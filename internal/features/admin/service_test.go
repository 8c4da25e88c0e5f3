package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/common"
	"github.com/sunusimusa/scratch-app/internal/features/cooldown"
	"github.com/sunusimusa/scratch-app/internal/features/economy"
	"github.com/sunusimusa/scratch-app/internal/features/game"
	"github.com/sunusimusa/scratch-app/internal/features/rewards"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func setup(t *testing.T) (*Service, *economy.MemoryStore, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	store := economy.NewMemoryStore()
	gameSvc := game.NewService(store, rewards.DefaultTables(),
		cooldown.NewGate(20, 30*time.Minute, 24*time.Hour),
		rewards.NewRoller(nil), game.DefaultSettings(), c.Now)

	_, err := gameSvc.GetOrCreate(context.Background(), "player")
	require.NoError(t, err)

	hash := HashPassword("s3cret", []byte("0123456789abcdef"))
	return NewService(hash, gameSvc, c.Now), store, c
}

func TestVerifyArgon2id(t *testing.T) {
	hash := HashPassword("s3cret", []byte("0123456789abcdef"))

	assert.True(t, verifyArgon2id("s3cret", hash))
	assert.False(t, verifyArgon2id("wrong", hash))
	assert.False(t, verifyArgon2id("s3cret", "not-a-hash"))
	assert.False(t, verifyArgon2id("s3cret", "$argon2id$v=19$m=x$salt$hash"))
}

func TestGrant_CreditsRecord(t *testing.T) {
	svc, store, _ := setup(t)

	res, err := svc.Grant(context.Background(), "10.0.0.1", "s3cret", GrantRequest{
		SessionID: "player",
		Grant:     economy.Grant{Energy: 30, Points: 250},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(30), res.Energy)
	assert.Equal(t, 3, res.Level)
	rec, err := store.Get(context.Background(), "player")
	require.NoError(t, err)
	assert.Equal(t, int64(250), rec.Points)
}

func TestGrant_RejectsNegativeAmounts(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Grant(context.Background(), "10.0.0.1", "s3cret", GrantRequest{
		SessionID: "player",
		Grant:     economy.Grant{Energy: -5},
	})

	assert.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestVerifyPassword_LockoutAfterThreeFailures(t *testing.T) {
	svc, _, c := setup(t)

	// GIVEN: three wrong passwords
	for i := 0; i < MaxFailedAttempts; i++ {
		assert.ErrorIs(t, svc.VerifyPassword("10.0.0.1", "wrong"), common.ErrUnauthorized)
	}

	// THEN: even the right password is refused for this client
	assert.ErrorIs(t, svc.VerifyPassword("10.0.0.1", "s3cret"), common.ErrTooManyAttempts)
	// AND: other clients are unaffected
	assert.NoError(t, svc.VerifyPassword("10.0.0.2", "s3cret"))

	// WHEN: the window passes
	c.now = c.now.Add(AttemptWindow + time.Second)

	// THEN: the client may try again
	assert.NoError(t, svc.VerifyPassword("10.0.0.1", "s3cret"))
}

func TestVerifyPassword_DisabledWithoutHash(t *testing.T) {
	svc := NewService("", nil, nil)

	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.VerifyPassword("10.0.0.1", ""), common.ErrUnauthorized)
}
