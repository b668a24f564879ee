package app

import (
	"testing"

	"github.com/corray333/backend-labs/cafeteria/internal/config"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	config.SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestCalculatorFromConfig(t *testing.T) {
	resetConfig(t)

	calc, err := calculatorFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 10, calc.Points(money.FromCents(10000)))

	viper.Set("loyalty.calculator", "tiered")
	calc, err = calculatorFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 15, calc.Points(money.FromCents(15000)))
	// At or above the threshold the whole amount earns at the tiered rate.
	assert.Equal(t, 60, calc.Points(money.FromCents(30000)))

	viper.Set("loyalty.calculator", "lottery")
	_, err = calculatorFromConfig()
	assert.Error(t, err)
}

func TestRewardsFromConfig(t *testing.T) {
	resetConfig(t)

	discount, freeItem, err := rewardsFromConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, discount.PointsCost)
	assert.True(t, discount.Discount.Equal(money.FromCents(1000)))
	assert.Equal(t, 100, freeItem.PointsCost)
	assert.Equal(t, "D001", freeItem.ItemID)

	viper.Set("loyalty.rewards.discount.egp", "ten")
	_, _, err = rewardsFromConfig()
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestSeedCatalogFromConfig(t *testing.T) {
	resetConfig(t)

	items, err := seedCatalogFromConfig()
	require.NoError(t, err)
	assert.Nil(t, items)

	viper.Set("menu.seed", []map[string]any{
		{"id": "B001", "name": "Falafel", "description": "Six pieces", "price": "15.50", "category": "snack"},
	})
	items, err = seedCatalogFromConfig()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B001", items[0].ID)
	assert.Equal(t, menuitem.CategorySnack, items[0].Category)
	assert.True(t, items[0].Price.Equal(money.FromCents(1550)))

	viper.Set("menu.seed", []map[string]any{{"id": "B002", "name": "Free", "price": "0", "category": "Snack"}})
	_, err = seedCatalogFromConfig()
	assert.Error(t, err)
}
