package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type TokenRepository interface {
	Create(ctx context.Context, kind models.TokenKind, token *models.Token) error
	// FindValid matches on token, unused and unexpired in a single predicate.
	FindValid(ctx context.Context, kind models.TokenKind, token string, now time.Time) (*models.Token, error)
	// Consume flips used from false to true. It reports false when another
	// request consumed the token first.
	Consume(ctx context.Context, kind models.TokenKind, id uuid.UUID, now time.Time) (bool, error)
	InvalidateForUser(ctx context.Context, kind models.TokenKind, userID uuid.UUID, now time.Time) error
	Delete(ctx context.Context, kind models.TokenKind, token string) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, kind models.TokenKind, token *models.Token) error {
	return GetDB(ctx, r.db).Table(string(kind)).Create(token).Error
}

func (r *tokenRepository) FindValid(ctx context.Context, kind models.TokenKind, token string, now time.Time) (*models.Token, error) {
	var record models.Token
	err := GetDB(ctx, r.db).Table(string(kind)).
		Where("token = ? AND used = ? AND expires_at > ?", token, false, now).
		First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *tokenRepository) Consume(ctx context.Context, kind models.TokenKind, id uuid.UUID, now time.Time) (bool, error) {
	result := GetDB(ctx, r.db).Table(string(kind)).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]any{"used": true, "used_at": now, "updated_at": now})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *tokenRepository) InvalidateForUser(ctx context.Context, kind models.TokenKind, userID uuid.UUID, now time.Time) error {
	return GetDB(ctx, r.db).Table(string(kind)).
		Where("user_id = ? AND used = ?", userID, false).
		Updates(map[string]any{"used": true, "used_at": now, "updated_at": now}).Error
}

func (r *tokenRepository) Delete(ctx context.Context, kind models.TokenKind, token string) error {
	return GetDB(ctx, r.db).Table(string(kind)).Where("token = ?", token).Delete(&models.Token{}).Error
}
