package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/mangabrew/internal/models"
)

type MenuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *menuRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *menuRepository) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := GetDB(ctx, r.db).Preload("Category").
		Joins("LEFT JOIN categories ON categories.id = menu_items.category_id").
		Where("menu_items.is_available = ?", true).
		Order("categories.name, menu_items.name").
		Find(&items).Error
	return items, err
}

func (r *menuRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return GetDB(ctx, r.db).Model(&models.MenuItem{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", quantity)).Error
}
