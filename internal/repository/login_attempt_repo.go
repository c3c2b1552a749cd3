package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type LoginAttemptRepository interface {
	Record(ctx context.Context, ip string, at time.Time) error
	// Window returns the number of attempts from ip at or after since and
	// the timestamp of the oldest of them.
	Window(ctx context.Context, ip string, since time.Time) (int64, time.Time, error)
	Clear(ctx context.Context, ip string) error
}

type loginAttemptRepository struct {
	db *gorm.DB
}

func NewLoginAttemptRepository(db *gorm.DB) LoginAttemptRepository {
	return &loginAttemptRepository{db: db}
}

func (r *loginAttemptRepository) Record(ctx context.Context, ip string, at time.Time) error {
	return GetDB(ctx, r.db).Create(&models.LoginAttempt{IPAddress: ip, AttemptTime: at}).Error
}

func (r *loginAttemptRepository) Window(ctx context.Context, ip string, since time.Time) (int64, time.Time, error) {
	var row struct {
		Attempts int64
		Oldest   *time.Time
	}
	err := GetDB(ctx, r.db).Model(&models.LoginAttempt{}).
		Select("COUNT(*) AS attempts, MIN(attempt_time) AS oldest").
		Where("ip_address = ? AND attempt_time >= ?", ip, since).
		Scan(&row).Error
	if err != nil {
		return 0, time.Time{}, err
	}
	if row.Oldest == nil {
		return row.Attempts, time.Time{}, nil
	}
	return row.Attempts, *row.Oldest, nil
}

func (r *loginAttemptRepository) Clear(ctx context.Context, ip string) error {
	return GetDB(ctx, r.db).Where("ip_address = ?", ip).Delete(&models.LoginAttempt{}).Error
}
