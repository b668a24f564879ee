package app

import (
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/services/loyaltysvc"
	"github.com/spf13/viper"
)

// seedItem is one entry of the menu.seed list.
type seedItem struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Price       string `mapstructure:"price"`
	Category    string `mapstructure:"category"`
}

// calculatorFromConfig selects the points calculator named by loyalty.calculator.
func calculatorFromConfig() (loyaltysvc.Calculator, error) {
	switch strings.ToLower(viper.GetString("loyalty.calculator")) {
	case "", "basic":
		return loyaltysvc.NewBasicCalculator(viper.GetInt("loyalty.egp_per_point")), nil
	case "tiered":
		threshold, err := money.Parse(viper.GetString("loyalty.tiered.threshold"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse loyalty.tiered.threshold: %w", err)
		}

		return loyaltysvc.NewTieredCalculator(
			threshold,
			viper.GetInt("loyalty.egp_per_point"),
			viper.GetInt("loyalty.tiered.egp_per_point"),
		), nil
	default:
		return nil, fmt.Errorf("unknown loyalty.calculator %q", viper.GetString("loyalty.calculator"))
	}
}

// rewardsFromConfig reads the two redeemable rewards.
func rewardsFromConfig() (discount, freeItem loyaltysvc.Reward, err error) {
	egp, err := money.Parse(viper.GetString("loyalty.rewards.discount.egp"))
	if err != nil {
		return discount, freeItem, fmt.Errorf("failed to parse loyalty.rewards.discount.egp: %w", err)
	}

	discount = loyaltysvc.Reward{
		PointsCost: viper.GetInt("loyalty.rewards.discount.points_cost"),
		Discount:   egp,
	}
	freeItem = loyaltysvc.Reward{
		PointsCost: viper.GetInt("loyalty.rewards.free_item.points_cost"),
		ItemID:     viper.GetString("loyalty.rewards.free_item.item_id"),
	}

	return discount, freeItem, nil
}

// seedCatalogFromConfig returns the menu.seed list, or nil when none is set.
func seedCatalogFromConfig() ([]menuitem.MenuItem, error) {
	var raw []seedItem
	if err := viper.UnmarshalKey("menu.seed", &raw); err != nil {
		return nil, fmt.Errorf("failed to read menu.seed: %w", err)
	}

	items := make([]menuitem.MenuItem, 0, len(raw))
	for _, r := range raw {
		price, err := money.Parse(r.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of seed item %s: %w", r.ID, err)
		}
		item, err := menuitem.New(r.ID, r.Name, r.Description, price, menuitem.Category(r.Category))
		if err != nil {
			return nil, fmt.Errorf("invalid seed item %s: %w", r.ID, err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, nil
	}

	return items, nil
}
