package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens the Postgres connection pool behind DATABASE_URL.
func NewDatabase(databaseURL string, log *zap.Logger) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.DefaultGormLoggerConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// RunMigrations creates or updates every table the API uses.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CreditAccount{},
		&models.CreditPackage{},
		&models.PaymentIntent{},
		&models.Menu{},
		&models.TranslationRecord{},
	)
}

// DefaultCreditPackages is the extra-credit catalog, priced in BRL cents.
func DefaultCreditPackages() []models.CreditPackage {
	return []models.CreditPackage{
		{Name: "1 Credit", Description: "One translation into one language", Credits: 1, PriceCents: 490, Currency: "brl", DiscountLabel: "-", IsActive: true},
		{Name: "3 Credits", Description: "Three single-language translations", Credits: 3, PriceCents: 1390, Currency: "brl", DiscountLabel: "5% off", IsActive: true},
		{Name: "5 Credits", Description: "Five single-language translations", Credits: 5, PriceCents: 2190, Currency: "brl", DiscountLabel: "10% off", IsActive: true},
		{Name: "10 Credits", Description: "Ten single-language translations", Credits: 10, PriceCents: 3990, Currency: "brl", DiscountLabel: "18% off", IsActive: true},
		{Name: "25 Credits", Description: "Twenty-five single-language translations", Credits: 25, PriceCents: 8990, Currency: "brl", DiscountLabel: "26% off", IsActive: true},
	}
}

// SeedCreditPackages adds the default catalog entries that are missing.
func SeedCreditPackages(ctx context.Context, db *gorm.DB) error {
	return repository.NewCreditPackageRepository(db).Seed(ctx, DefaultCreditPackages())
}
