package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name        string     `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string     `json:"description"`
	Items       []MenuItem `json:"items,omitempty"`
}

// MenuItem is something the café sells. Stock is decremented by checkout.
type MenuItem struct {
	BaseModel
	CategoryID  uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	ImageURL    string          `json:"image_url"`
}

// Manga is a title in the in-café lending library.
type Manga struct {
	BaseModel
	Title    string `gorm:"size:200;uniqueIndex;not null" json:"title"`
	Author   string `json:"author"`
	Genre    string `gorm:"size:50;index" json:"genre"`
	Synopsis string `json:"synopsis"`
	Cover    string `json:"cover"`
}

func (Manga) TableName() string { return "manga" }
