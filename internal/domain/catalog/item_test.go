package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	t.Run("creates item with valid inputs", func(t *testing.T) {
		item, err := NewItem("al-6061-bar", "Aluminum 6061 Bar Stock", "ft", decimal.NewFromFloat(12.50))
		require.NoError(t, err)
		require.NotNil(t, item)

		assert.Equal(t, "AL-6061-BAR", item.SKU)
		assert.Equal(t, "Aluminum 6061 Bar Stock", item.Name)
		assert.Equal(t, "ft", item.Unit)
		assert.True(t, item.CostPerUnit.Equal(decimal.NewFromFloat(12.50)))
		assert.True(t, item.QuantityOnHand.IsZero())
		assert.Equal(t, 7, item.VendorLeadTimeDays)
		assert.True(t, item.Active)
		assert.NotEmpty(t, item.ID)
	})

	t.Run("defaults unit to each", func(t *testing.T) {
		item, err := NewItem("SKU-1", "Widget", "", decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "each", item.Unit)
	})

	t.Run("fails with empty SKU", func(t *testing.T) {
		_, err := NewItem("", "Widget", "each", decimal.Zero)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SKU cannot be empty")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewItem("SKU-1", "  ", "each", decimal.Zero)
		require.Error(t, err)
	})

	t.Run("fails with negative cost", func(t *testing.T) {
		_, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})
}

func TestItem_UpdateCost(t *testing.T) {
	item, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, item.UpdateCost(decimal.NewFromFloat(6.25)))
	assert.True(t, item.CostPerUnit.Equal(decimal.NewFromFloat(6.25)))

	require.Error(t, item.UpdateCost(decimal.NewFromInt(-1)))
}

func TestItem_SetOnHand(t *testing.T) {
	item, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, item.SetOnHand(decimal.NewFromInt(40)))
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(40)))

	require.Error(t, item.SetOnHand(decimal.NewFromInt(-3)))
}

func TestItem_SetVendor(t *testing.T) {
	item, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, item.SetVendor("Acme Metals", 14))
	assert.Equal(t, "Acme Metals", item.VendorName)
	assert.Equal(t, 14, item.VendorLeadTimeDays)

	require.Error(t, item.SetVendor("Acme Metals", -1))
}

func TestItem_BelowReorderPoint(t *testing.T) {
	item, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(5))
	require.NoError(t, err)

	require.NoError(t, item.SetOnHand(decimal.NewFromInt(10)))
	assert.True(t, item.BelowReorderPoint())

	require.NoError(t, item.SetOnHand(decimal.NewFromInt(11)))
	assert.False(t, item.BelowReorderPoint())
}

func TestItem_ActivateDeactivate(t *testing.T) {
	item, err := NewItem("SKU-1", "Widget", "each", decimal.NewFromInt(5))
	require.NoError(t, err)

	item.Deactivate()
	assert.False(t, item.Active)

	item.Activate()
	assert.True(t, item.Active)
}
