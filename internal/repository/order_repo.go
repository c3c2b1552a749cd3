package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type OrderRepository interface {
	// Create inserts the order with its items and optional payment detail.
	Create(ctx context.Context, order *models.Order) error
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error)
	Totals(ctx context.Context, userID uuid.UUID) (int64, decimal.Decimal, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := GetDB(ctx, r.db).Preload("Items").Preload("Payment").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *orderRepository) Totals(ctx context.Context, userID uuid.UUID) (int64, decimal.Decimal, error) {
	var row struct {
		Orders int64
		Spent  decimal.NullDecimal
	}
	err := GetDB(ctx, r.db).Model(&models.Order{}).
		Select("COUNT(*) AS orders, SUM(total_amount) AS spent").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	if !row.Spent.Valid {
		return row.Orders, decimal.Zero, nil
	}
	return row.Orders, row.Spent.Decimal, nil
}
