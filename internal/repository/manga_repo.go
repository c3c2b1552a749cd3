package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/mangabrew/internal/models"
)

type MangaRepository interface {
	List(ctx context.Context, genre, search string) ([]models.Manga, error)
	Genres(ctx context.Context) ([]string, error)
}

type mangaRepository struct {
	db *gorm.DB
}

func NewMangaRepository(db *gorm.DB) MangaRepository {
	return &mangaRepository{db: db}
}

func (r *mangaRepository) List(ctx context.Context, genre, search string) ([]models.Manga, error) {
	db := GetDB(ctx, r.db).Model(&models.Manga{})
	if genre != "" {
		db = db.Where("genre = ?", genre)
	}
	if search != "" {
		db = db.Where("title ILIKE ?", "%"+search+"%")
	}

	var titles []models.Manga
	err := db.Order("title").Find(&titles).Error
	return titles, err
}

func (r *mangaRepository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := GetDB(ctx, r.db).Model(&models.Manga{}).Distinct().Order("genre").Pluck("genre", &genres).Error
	return genres, err
}
