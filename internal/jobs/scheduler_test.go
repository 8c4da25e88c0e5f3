package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunusimusa/scratch-app/internal/features/economy"
)

func TestAudit_CountsViolations(t *testing.T) {
	ctx := context.Background()
	store := economy.NewMemoryStore()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// GIVEN: one sound record and one with a stale level and a duplicate achievement
	require.NoError(t, store.Create(ctx, economy.NewRecord("ok", "AAAA0001", now)))

	bad := economy.NewRecord("bad", "AAAA0002", now)
	bad.Points = 500
	bad.Achievements = []string{"FIRST_SCRATCH", "FIRST_SCRATCH"}
	require.NoError(t, store.Create(ctx, bad))

	// WHEN
	report, err := Audit(ctx, store)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, AuditReport{Checked: 2, Violated: 1}, report)
}

func TestAudit_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := economy.NewMemoryStore()
	require.NoError(t, store.Create(ctx, economy.NewRecord("a", "AAAA0001", time.Now())))
	cancel()

	_, err := Audit(ctx, store)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(economy.NewMemoryStore(), "not a cron schedule")

	assert.Error(t, s.Start(context.Background()))
}
