package cart_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mangabrew/internal/cart"
	apperrors "github.com/example/mangabrew/internal/errors"
)

func item(name, price string, qty int) cart.Item {
	return cart.Item{ItemID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestMergeSumsDuplicates(t *testing.T) {
	var c cart.Cart
	latte := item("Latte", "3.50", 2)
	c.Merge(latte)
	latte.Quantity = 3
	c.Merge(latte)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, c.Quantity(latte.ItemID))
}

func TestRemoveRepacksIndices(t *testing.T) {
	var c cart.Cart
	a, b, d := item("A", "1", 1), item("B", "2", 1), item("C", "3", 1)
	c.Merge(a)
	c.Merge(b)
	c.Merge(d)

	require.NoError(t, c.Remove(0))
	require.Len(t, c.Items, 2)
	assert.Equal(t, "B", c.Items[0].Name)
	assert.Equal(t, "C", c.Items[1].Name)

	require.NoError(t, c.Remove(1))
	assert.ErrorIs(t, c.Remove(1), apperrors.ErrInvalidIndex)
	assert.Len(t, c.Items, 1)
}

func TestSetQuantity(t *testing.T) {
	tests := []struct {
		name  string
		index int
		qty   int
		want  error
	}{
		{"valid", 0, 10, nil},
		{"upper bound", 0, 99, nil},
		{"zero", 0, 0, apperrors.ErrInvalidQuantity},
		{"too many", 0, 100, apperrors.ErrInvalidQuantity},
		{"negative index", -1, 1, apperrors.ErrInvalidIndex},
		{"past end", 1, 1, apperrors.ErrInvalidIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c cart.Cart
			c.Merge(item("Mocha", "4", 1))
			err := c.SetQuantity(tt.index, tt.qty)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.qty, c.Items[0].Quantity)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, c.Items[0].Quantity)
		})
	}
}

func TestTotals(t *testing.T) {
	var c cart.Cart
	c.Merge(item("Latte", "3.50", 2))
	c.Merge(item("Onigiri", "2.25", 3))

	assert.True(t, decimal.RequireFromString("13.75").Equal(c.Total()))
	assert.Equal(t, 5, c.Count())

	c.Clear()
	assert.True(t, c.Empty())
	assert.True(t, c.Total().IsZero())
}
