package repository

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"gorm.io/gorm"
)

type CreditPackageRepository struct {
	db *gorm.DB
}

func NewCreditPackageRepository(db *gorm.DB) *CreditPackageRepository {
	return &CreditPackageRepository{
		db: db,
	}
}

func (r *CreditPackageRepository) GetByID(ctx context.Context, id uint) (*models.CreditPackage, error) {
	var creditPackage models.CreditPackage
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&creditPackage, id).Error
	if err != nil {
		return nil, err
	}
	return &creditPackage, nil
}

func (r *CreditPackageRepository) GetAll(ctx context.Context) ([]models.CreditPackage, error) {
	var packages []models.CreditPackage
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("credits ASC").Find(&packages).Error
	return packages, err
}

// Seed inserts packages whose name is not present yet.
func (r *CreditPackageRepository) Seed(ctx context.Context, packages []models.CreditPackage) error {
	for i := range packages {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.CreditPackage{}).Where("name = ?", packages[i].Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := r.db.WithContext(ctx).Create(&packages[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
