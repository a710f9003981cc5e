package service

import (
	"context"

	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
)

type PackageService struct {
	packageRepo *repository.CreditPackageRepository
}

func NewPackageService(packageRepo *repository.CreditPackageRepository) *PackageService {
	return &PackageService{
		packageRepo: packageRepo,
	}
}

func (s *PackageService) GetAllPackages(ctx context.Context) ([]models.CreditPackage, error) {
	return s.packageRepo.GetAll(ctx)
}

func (s *PackageService) GetPackageByID(ctx context.Context, id uint) (*models.CreditPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pkg, nil
}
