package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type RewardRepository interface {
	Create(ctx context.Context, reward *models.UserReward) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserReward, error)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Create(ctx context.Context, reward *models.UserReward) error {
	return GetDB(ctx, r.db).Create(reward).Error
}

func (r *rewardRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.UserReward, error) {
	var rewards []models.UserReward
	err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at desc").Find(&rewards).Error
	return rewards, err
}
