package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type SocialLoginRepository interface {
	Find(ctx context.Context, provider, socialID string) (*models.SocialLogin, error)
	Create(ctx context.Context, link *models.SocialLogin) error
}

type socialLoginRepository struct {
	db *gorm.DB
}

func NewSocialLoginRepository(db *gorm.DB) SocialLoginRepository {
	return &socialLoginRepository{db: db}
}

func (r *socialLoginRepository) Find(ctx context.Context, provider, socialID string) (*models.SocialLogin, error) {
	var link models.SocialLogin
	if err := GetDB(ctx, r.db).Where("provider = ? AND social_id = ?", provider, socialID).
		First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *socialLoginRepository) Create(ctx context.Context, link *models.SocialLogin) error {
	return GetDB(ctx, r.db).Create(link).Error
}
