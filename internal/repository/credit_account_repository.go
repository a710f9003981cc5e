package repository

import (
	"context"
	"time"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreditAccountRepository struct {
	db *gorm.DB
}

func NewCreditAccountRepository(db *gorm.DB) *CreditAccountRepository {
	return &CreditAccountRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *CreditAccountRepository) WithTx(tx *gorm.DB) *CreditAccountRepository {
	return &CreditAccountRepository{db: tx}
}

func (r *CreditAccountRepository) GetByUserID(ctx context.Context, userID uint) (*models.CreditAccount, error) {
	var account models.CreditAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateIfAbsent inserts the account unless one already exists for the user.
// It reports whether this call created the row.
func (r *CreditAccountRepository) CreateIfAbsent(ctx context.Context, account *models.CreditAccount) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(account)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementUsed adds amount to used_credits only if the result stays within
// total_credits. It reports false when the guard rejected the write.
func (r *CreditAccountRepository) IncrementUsed(ctx context.Context, userID uint, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CreditAccount{}).
		Where("user_id = ? AND used_credits + ? <= total_credits", userID, amount).
		Updates(map[string]interface{}{
			"used_credits": gorm.Expr("used_credits + ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementTotal adds amount to total_credits. It reports false when no
// account row exists for the user.
func (r *CreditAccountRepository) IncrementTotal(ctx context.Context, userID uint, amount int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CreditAccount{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_credits": gorm.Expr("total_credits + ?", amount),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
