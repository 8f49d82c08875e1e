package repository

import (
	"context"

	"gorm.io/gorm"

	"locamat/internal/domain"
)

type CatalogRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
	Models(ctx context.Context) ([]domain.EquipmentModel, error)
	Units(ctx context.Context) ([]domain.EquipmentUnit, error)
	AvailableUnits(ctx context.Context) ([]domain.EquipmentUnit, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.WithContext(ctx).Order("label").Find(&out).Error
	return out, err
}

func (r *catalogRepository) Brands(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	err := r.db.WithContext(ctx).Order("label").Find(&out).Error
	return out, err
}

func (r *catalogRepository) Models(ctx context.Context) ([]domain.EquipmentModel, error) {
	var out []domain.EquipmentModel
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Order("id").
		Find(&out).Error
	return out, err
}

func (r *catalogRepository) Units(ctx context.Context) ([]domain.EquipmentUnit, error) {
	var out []domain.EquipmentUnit
	err := r.db.WithContext(ctx).Preload("Model").Order("id").Find(&out).Error
	return out, err
}

// AvailableUnits is a catalog view: it may lag behind an in-flight
// reservation, which re-checks availability under lock anyway.
func (r *catalogRepository) AvailableUnits(ctx context.Context) ([]domain.EquipmentUnit, error) {
	var out []domain.EquipmentUnit
	err := r.db.WithContext(ctx).
		Preload("Model").
		Where("status = ?", domain.UnitAvailable).
		Order("id").
		Find(&out).Error
	return out, err
}
