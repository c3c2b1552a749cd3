package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered café customer.
type User struct {
	BaseModel
	Username      string     `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email         string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName      string     `gorm:"size:50;not null" json:"full_name"`
	Phone         string     `gorm:"size:11" json:"phone"`
	PasswordHash  string     `json:"-"`
	Points        int        `gorm:"not null;default:0;check:points >= 0" json:"points"`
	Avatar        string     `json:"avatar"`
	EmailVerified bool       `gorm:"not null;default:false" json:"email_verified"`
	LastLogin     *time.Time `json:"last_login"`
}

// LoginAttempt is one failed login from a client address.
type LoginAttempt struct {
	BaseModel
	IPAddress   string    `gorm:"size:45;index;not null" json:"ip_address"`
	AttemptTime time.Time `gorm:"index;not null" json:"attempt_time"`
}

// SocialLogin links a user to an external identity provider account.
type SocialLogin struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Provider string    `gorm:"size:20;uniqueIndex:idx_social_provider_subject;not null" json:"provider"`
	SocialID string    `gorm:"size:255;uniqueIndex:idx_social_provider_subject;not null" json:"social_id"`
}
