package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CreditAccount{},
		&models.CreditPackage{},
		&models.PaymentIntent{},
		&models.Menu{},
		&models.TranslationRecord{},
	))
	return db
}

func TestCreditAccountGuards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCreditAccountRepository(db)

	created, err := repo.CreateIfAbsent(ctx, &models.CreditAccount{UserID: 1, TotalCredits: 3, Tier: models.TierFree})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &models.CreditAccount{UserID: 1, TotalCredits: 99, Tier: models.TierFree})
	require.NoError(t, err)
	assert.False(t, created)

	ok, err := repo.IncrementUsed(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementUsed(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok, "debit past total must be rejected")

	ok, err = repo.IncrementTotal(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementTotal(ctx, 2, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	account, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, account.TotalCredits)
	assert.Equal(t, 2, account.UsedCredits)

	_, err = repo.GetByUserID(ctx, 2)
	assert.True(t, IsNotFound(err))
}

func TestPaymentIntentTransitions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewPaymentIntentRepository(db)

	require.NoError(t, repo.Create(ctx, &models.PaymentIntent{
		UserID: 1, ProviderSessionID: "cs_1", AmountCents: 490, Currency: "brl", Credits: 1, Status: models.PaymentStatusPending,
	}))
	assert.Error(t, repo.Create(ctx, &models.PaymentIntent{
		UserID: 1, ProviderSessionID: "cs_1", AmountCents: 490, Currency: "brl", Credits: 1, Status: models.PaymentStatusPending,
	}), "session ids are unique")

	won, err := repo.MarkCompleted(ctx, "cs_1")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkCompleted(ctx, "cs_1")
	require.NoError(t, err)
	assert.False(t, won)

	updated, err := repo.UpdateStatus(ctx, "cs_1", models.PaymentStatusCanceled)
	require.NoError(t, err)
	assert.False(t, updated)

	intent, err := repo.GetBySessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, intent.Status)

	won, err = repo.WithTx(db).MarkCompleted(ctx, "cs_missing")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestCreditPackageSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewCreditPackageRepository(db)

	pkgs := func() []models.CreditPackage {
		return []models.CreditPackage{
			{Name: "10 Credits", Credits: 10, PriceCents: 3990, Currency: "brl", IsActive: true},
			{Name: "1 Credit", Credits: 1, PriceCents: 490, Currency: "brl", IsActive: true},
		}
	}
	require.NoError(t, repo.Seed(ctx, pkgs()))
	require.NoError(t, repo.Seed(ctx, pkgs()))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Credits)

	_, err = repo.GetByID(ctx, 9999)
	assert.True(t, IsNotFound(err))
}
