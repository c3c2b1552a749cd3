package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mangabrew/internal/cart"
	apperrors "github.com/example/mangabrew/internal/errors"
	"github.com/example/mangabrew/internal/models"
	"github.com/example/mangabrew/internal/repository/repotest"
	"github.com/example/mangabrew/internal/services"
)

func TestCartAddMergesLines(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	latte := seedItem(store, "Matcha Latte", "4.50", 10)
	svc := services.NewCartService(store.Menu())

	var c cart.Cart
	_, err := svc.Add(ctx, &c, latte.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, &c, latte.ID, 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, "22.50", c.Total().StringFixed(2))
}

func TestCartAddChecksStockAgainstMergedQuantity(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	onigiri := seedItem(store, "Onigiri", "3.00", 4)
	svc := services.NewCartService(store.Menu())

	var c cart.Cart
	_, err := svc.Add(ctx, &c, onigiri.ID, 3)
	require.NoError(t, err)

	_, err = svc.Add(ctx, &c, onigiri.ID, 2)
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	var stockErr *apperrors.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Available)
	assert.Equal(t, 3, c.Quantity(onigiri.ID), "cart is untouched on rejection")
}

func TestCartAddRejections(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	latte := seedItem(store, "Matcha Latte", "4.50", 500)
	hidden := store.PutMenuItem(models.MenuItem{Name: "Seasonal Mochi", Stock: 5, IsAvailable: false})
	svc := services.NewCartService(store.Menu())

	tests := []struct {
		name     string
		itemID   uuid.UUID
		quantity int
		want     error
	}{
		{"zero quantity", latte.ID, 0, apperrors.ErrInvalidQuantity},
		{"over maximum", latte.ID, 100, apperrors.ErrInvalidQuantity},
		{"unavailable item", hidden.ID, 1, apperrors.ErrItemUnavailable},
		{"unknown item", uuid.New(), 1, apperrors.ErrItemUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c cart.Cart
			_, err := svc.Add(ctx, &c, tt.itemID, tt.quantity)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, c.Empty())
		})
	}
}

func TestCartMergeCapsAtMaximum(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	latte := seedItem(store, "Matcha Latte", "4.50", 500)
	svc := services.NewCartService(store.Menu())

	var c cart.Cart
	_, err := svc.Add(ctx, &c, latte.ID, 60)
	require.NoError(t, err)
	_, err = svc.Add(ctx, &c, latte.ID, 40)
	assert.ErrorIs(t, err, apperrors.ErrInvalidQuantity)
	assert.Equal(t, 60, c.Quantity(latte.ID))
}

func TestCartUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	store := repotest.NewStore()
	latte := seedItem(store, "Matcha Latte", "4.50", 6)
	svc := services.NewCartService(store.Menu())

	var c cart.Cart
	_, err := svc.Add(ctx, &c, latte.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(ctx, &c, 0, 6))
	assert.Equal(t, 6, c.Items[0].Quantity)

	assert.ErrorIs(t, svc.UpdateQuantity(ctx, &c, 1, 2), apperrors.ErrInvalidIndex)
	assert.ErrorIs(t, svc.UpdateQuantity(ctx, &c, -1, 2), apperrors.ErrInvalidIndex)
	assert.ErrorIs(t, svc.UpdateQuantity(ctx, &c, 0, 0), apperrors.ErrInvalidQuantity)
	assert.ErrorIs(t, svc.UpdateQuantity(ctx, &c, 0, 7), apperrors.ErrInsufficientStock)
	assert.Equal(t, 6, c.Items[0].Quantity)

	require.NoError(t, svc.Remove(&c, 0))
	assert.True(t, c.Empty())
}
