package catalog

import (
	"context"

	"locamat/internal/domain"
	"locamat/internal/repository"
)

// Service exposes the read-only catalog. No business rules live here yet; the
// "available" filter is applied by the repository.
type Service struct {
	catalog repository.CatalogRepository
}

func NewService(catalog repository.CatalogRepository) *Service {
	return &Service{catalog: catalog}
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.Categories(ctx)
}

func (s *Service) ListBrands(ctx context.Context) ([]domain.Brand, error) {
	return s.catalog.Brands(ctx)
}

func (s *Service) ListModels(ctx context.Context) ([]domain.EquipmentModel, error) {
	return s.catalog.Models(ctx)
}

func (s *Service) ListUnits(ctx context.Context, availableOnly bool) ([]domain.EquipmentUnit, error) {
	if availableOnly {
		return s.catalog.AvailableUnits(ctx)
	}
	return s.catalog.Units(ctx)
}
