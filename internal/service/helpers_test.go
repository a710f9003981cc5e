package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sefazor/menutranslator-backend/internal/config"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/database"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory database. A single connection keeps
// SQLite from reporting "database is locked" under concurrent tests while
// statements from different goroutines still interleave.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.RunMigrations(db))
	return db
}

func testCreditsPolicy() config.CreditsConfig {
	return config.CreditsConfig{
		DefaultAllotment:   10,
		DefaultTier:        models.TierFree,
		CreditsPerLanguage: 1,
		ChargePolicy:       config.ChargePolicySuccess,
	}
}

type testEnv struct {
	db       *gorm.DB
	accounts *repository.CreditAccountRepository
	intents  *repository.PaymentIntentRepository
	records  *repository.TranslationRepository
	menus    *repository.MenuRepository
	users    *repository.UserRepository
	packages *repository.CreditPackageRepository
	credits  *CreditService
}

func newTestEnv(t *testing.T, policy config.CreditsConfig) *testEnv {
	t.Helper()
	db := newTestDB(t)
	accounts := repository.NewCreditAccountRepository(db)
	return &testEnv{
		db:       db,
		accounts: accounts,
		intents:  repository.NewPaymentIntentRepository(db),
		records:  repository.NewTranslationRepository(db),
		menus:    repository.NewMenuRepository(db),
		users:    repository.NewUserRepository(db),
		packages: repository.NewCreditPackageRepository(db),
		credits:  NewCreditService(accounts, policy, nil, zap.NewNop()),
	}
}

func (e *testEnv) seedUser(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test User", Email: email, Password: "x"}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seedAccount(t *testing.T, userID uint, total, used int) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.CreditAccount{
		UserID:       userID,
		TotalCredits: total,
		UsedCredits:  used,
		Tier:         models.TierFree,
	}).Error)
}

func (e *testEnv) account(t *testing.T, userID uint) *models.CreditAccount {
	t.Helper()
	a, err := e.accounts.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	return a
}

func (e *testEnv) countRecords(t *testing.T, userID uint) int64 {
	t.Helper()
	n, err := e.records.CountByUser(context.Background(), userID)
	require.NoError(t, err)
	return n
}

// fakeTranslator is safe for concurrent use.
type fakeTranslator struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]error
	delay  time.Duration
	onCall func(to string)
}

func (f *fakeTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, to)
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(to)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := f.fail[to]; err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s] %s", to, text), nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *mockPaymentProvider) RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}
