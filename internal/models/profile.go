package models

import (
	"github.com/google/uuid"
)

const (
	RewardCoffee      = "coffee"
	RewardMangaRental = "manga_rental"

	RewardStatusPending = "pending"
)

// UserReward records a points redemption.
type UserReward struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	RewardType string    `gorm:"size:20;not null" json:"reward_type"`
	PointsUsed int       `gorm:"not null" json:"points_used"`
	Status     string    `gorm:"size:20;not null" json:"status"`
}
