package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel provides shared columns for all tables.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures UUIDs are generated for new records.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TokenKind names the table a single-use token lives in.
type TokenKind string

const (
	TokenPasswordReset     TokenKind = "password_resets"
	TokenEmailVerification TokenKind = "email_verifications"
	TokenRemember          TokenKind = "remember_tokens"
)

// TTL returns how long a freshly issued token of this kind stays valid.
func (k TokenKind) TTL() time.Duration {
	switch k {
	case TokenPasswordReset:
		return time.Hour
	case TokenEmailVerification:
		return 24 * time.Hour
	case TokenRemember:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Token is the shared shape of reset, verification and remember-me tokens.
// A token is usable only while Used is false and ExpiresAt is in the future.
type Token struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	Token     string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"used_at"`
}

// Usable reports whether the token passes the validity predicate at now.
func (t *Token) Usable(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}

type PasswordReset struct {
	Token
}

func (PasswordReset) TableName() string { return string(TokenPasswordReset) }

type EmailVerification struct {
	Token
}

func (EmailVerification) TableName() string { return string(TokenEmailVerification) }

type RememberToken struct {
	Token
}

func (RememberToken) TableName() string { return string(TokenRemember) }
