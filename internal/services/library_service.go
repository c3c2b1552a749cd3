package services

import (
	"context"
	"strings"

	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository"
)

type LibraryService struct {
	manga repository.MangaRepository
}

func NewLibraryService(manga repository.MangaRepository) *LibraryService {
	return &LibraryService{manga: manga}
}

// Library is the manga catalogue view with its genre filter options.
type Library struct {
	Titles []models.Manga `json:"titles"`
	Genres []string       `json:"genres"`
	Genre  string         `json:"genre,omitempty"`
	Search string         `json:"search,omitempty"`
}

func (s *LibraryService) Browse(ctx context.Context, genre, search string) (*Library, error) {
	genre = strings.TrimSpace(genre)
	search = strings.TrimSpace(search)

	titles, err := s.manga.List(ctx, genre, search)
	if err != nil {
		return nil, err
	}
	genres, err := s.manga.Genres(ctx)
	if err != nil {
		return nil, err
	}
	return &Library{Titles: titles, Genres: genres, Genre: genre, Search: search}, nil
}
