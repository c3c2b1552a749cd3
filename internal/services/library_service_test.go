package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/services"
)

func TestBrowseLibrary(t *testing.T) {
	store := repotest.NewStore()
	store.PutManga(models.Manga{Title: "One Piece", Genre: "Adventure"})
	store.PutManga(models.Manga{Title: "Naruto", Genre: "Action"})
	store.PutManga(models.Manga{Title: "Attack on Titan", Genre: "Action"})
	svc := services.NewLibraryService(store.Manga())

	lib, err := svc.Browse(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, lib.Titles, 3)
	assert.Equal(t, []string{"Action", "Adventure"}, lib.Genres)

	lib, err = svc.Browse(context.Background(), "Action", " titan ")
	require.NoError(t, err)
	require.Len(t, lib.Titles, 1)
	assert.Equal(t, "Attack on Titan", lib.Titles[0].Title)
	assert.Equal(t, "titan", lib.Search)
}
