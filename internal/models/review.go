package models

import "github.com/google/uuid"

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
)

type Review struct {
	BaseModel
	UserID     uuid.UUID        `gorm:"type:uuid;index;not null" json:"user_id"`
	User       *User            `json:"user,omitempty"`
	Rating     int              `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Title      string           `gorm:"size:200;not null" json:"title"`
	Content    string           `gorm:"not null" json:"content"`
	Status     string           `gorm:"size:20;index;not null" json:"status"`
	LikesCount int              `gorm:"not null;default:0" json:"likes_count"`
	Categories []ReviewCategory `gorm:"many2many:review_category_mappings;" json:"categories,omitempty"`
	Replies    []ReviewReply    `json:"replies,omitempty"`
}

type ReviewCategory struct {
	BaseModel
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

type ReviewReply struct {
	BaseModel
	ReviewID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"review_id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	ParentReplyID *uuid.UUID `gorm:"type:uuid" json:"parent_reply_id"`
	Content       string     `gorm:"not null" json:"content"`
}

type ReviewReaction struct {
	BaseModel
	ReviewID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reaction_once;not null" json:"review_id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reaction_once;not null" json:"user_id"`
	Emoji    string    `gorm:"size:16;uniqueIndex:idx_reaction_once;not null" json:"emoji"`
}
