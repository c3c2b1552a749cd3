package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/mangabrew/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, userID uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email, phone string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	AddPoints(ctx context.Context, id uuid.UUID, delta int) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	if err := GetDB(ctx, r.db).Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) EmailTakenByOther(ctx context.Context, email string, userID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, userID).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, email, phone string) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"full_name": fullName,
		"email":     email,
		"phone":     phone,
	}).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("avatar", avatar).Error
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("email_verified", true).Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// AddPoints applies a signed delta to the balance. Callers debiting points
// must hold the row lock from FindByIDForUpdate.
func (r *userRepository) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	return GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta)).Error
}
