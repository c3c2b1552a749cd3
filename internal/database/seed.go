package database

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/mangabrew/internal/models"
)

type seedItem struct {
	name  string
	desc  string
	price string
	stock int
}

var menuSeed = []struct {
	category string
	items    []seedItem
}{
	{"Coffee", []seedItem{
		{"Espresso", "Double shot of house blend", "2.50", 100},
		{"Matcha Latte", "Ceremonial matcha with steamed milk", "4.50", 60},
		{"Caramel Macchiato", "Vanilla, espresso and caramel drizzle", "4.75", 60},
	}},
	{"Tea", []seedItem{
		{"Hojicha", "Roasted green tea", "3.25", 50},
		{"Bubble Milk Tea", "Black tea with tapioca pearls", "4.95", 40},
	}},
	{"Snacks", []seedItem{
		{"Onigiri", "Salmon rice ball", "3.00", 30},
		{"Taiyaki", "Fish-shaped cake with red bean", "2.75", 25},
		{"Mochi Trio", "Matcha, strawberry and black sesame", "5.50", 20},
	}},
}

var mangaSeed = []models.Manga{
	{Genre: "Shonen", Title: "Naruto", Author: "Masashi Kishimoto", Synopsis: "A ninja's journey to become Hokage.", Cover: "naruto.jpg"},
	{Genre: "Shojo", Title: "Fruits Basket", Author: "Natsuki Takaya", Synopsis: "A girl discovers a family's zodiac secret.", Cover: "fruits_basket.jpg"},
	{Genre: "Seinen", Title: "Berserk", Author: "Kentaro Miura", Synopsis: "A dark tale of revenge and destiny.", Cover: "berserk.jpg"},
	{Genre: "Shonen", Title: "One Piece", Author: "Eiichiro Oda", Synopsis: "Pirate adventures in search of the One Piece.", Cover: "one_piece.jpg"},
	{Genre: "Josei", Title: "Nana", Author: "Ai Yazawa", Synopsis: "Two women chasing dreams and love in Tokyo.", Cover: "nana.jpg"},
}

var reviewCategorySeed = []string{"Food", "Drinks", "Service", "Atmosphere", "Manga Selection"}

// Seed inserts the starter menu, library and review categories once.
func Seed(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			for _, group := range menuSeed {
				category := models.Category{Name: group.category}
				if err := tx.Create(&category).Error; err != nil {
					return err
				}
				for _, it := range group.items {
					item := models.MenuItem{
						CategoryID:  category.ID,
						Name:        it.name,
						Description: it.desc,
						Price:       decimal.RequireFromString(it.price),
						Stock:       it.stock,
						IsAvailable: true,
					}
					if err := tx.Create(&item).Error; err != nil {
						return err
					}
				}
			}
		}

		for _, m := range mangaSeed {
			title := m
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&title).Error; err != nil {
				return err
			}
		}

		for _, name := range reviewCategorySeed {
			category := models.ReviewCategory{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
