package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureAccountCreatesDefaultAllotment(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()

	account, err := env.credits.EnsureAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 10, account.TotalCredits)
	assert.Equal(t, 0, account.UsedCredits)
	assert.Equal(t, models.TierFree, account.Tier)

	again, err := env.credits.EnsureAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

func TestEnsureAccountConcurrentFirstCalls(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.credits.EnsureAccount(ctx, 42)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, env.db.Model(&models.CreditAccount{}).Where("user_id = ?", 42).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 10, env.account(t, 42).TotalCredits)
}

func TestEnsureAccountRequiresUser(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	_, err := env.credits.EnsureAccount(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckAndReserve(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	env.seedAccount(t, 1, 5, 3)

	available, err := env.credits.CheckAndReserve(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	_, err = env.credits.CheckAndReserve(ctx, 1, 3)
	require.ErrorIs(t, err, ErrInsufficientCredits)

	var insufficient *InsufficientCreditsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Required)
	assert.Equal(t, 2, insufficient.Available)

	// Reservation never writes.
	assert.Equal(t, 3, env.account(t, 1).UsedCredits)
}

func TestCommitDebitGuard(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	env.seedAccount(t, 1, 3, 0)

	require.NoError(t, env.credits.CommitDebit(ctx, 1, 2))
	assert.Equal(t, 2, env.account(t, 1).UsedCredits)

	err := env.credits.CommitDebit(ctx, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.ErrorIs(t, err, ErrLedgerWriteConflict)
	assert.Equal(t, 2, env.account(t, 1).UsedCredits)

	require.NoError(t, env.credits.CommitDebit(ctx, 1, 0))
	assert.Equal(t, 2, env.account(t, 1).UsedCredits)
}

func TestCommitDebitNoDoubleSpend(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	const n = 8
	env.seedAccount(t, 1, n-1, 0)

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- env.credits.CommitDebit(ctx, 1, 1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientCredits)
		rejected++
	}

	assert.Equal(t, n-1, succeeded)
	assert.Equal(t, 1, rejected)
	account := env.account(t, 1)
	assert.Equal(t, n-1, account.UsedCredits)
	assert.LessOrEqual(t, account.UsedCredits, account.TotalCredits)
}

func TestTopUp(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	env.seedAccount(t, 1, 10, 4)

	require.NoError(t, env.credits.TopUp(ctx, 1, 5))
	account := env.account(t, 1)
	assert.Equal(t, 15, account.TotalCredits)
	assert.Equal(t, 4, account.UsedCredits)

	assert.ErrorIs(t, env.credits.TopUp(ctx, 99, 5), ErrNotFound)
	assert.ErrorIs(t, env.credits.TopUp(ctx, 1, 0), ErrInvalidRequest)
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv(t, testCreditsPolicy())
	ctx := context.Background()
	env.seedAccount(t, 1, 8, 2)

	summary, err := env.credits.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, summary.TotalCredits)
	assert.Equal(t, 2, summary.UsedCredits)
	assert.Equal(t, 6, summary.AvailableCredits)
	assert.InDelta(t, 25.0, summary.UsagePercentage, 0.001)

	// First access creates the account lazily.
	summary, err = env.credits.GetSummary(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.AvailableCredits)
	assert.Equal(t, 0.0, summary.UsagePercentage)
}
