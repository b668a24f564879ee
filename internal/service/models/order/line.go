package order

import (
	"fmt"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

// Line is a snapshot of a purchased item taken at order time.
type Line struct {
	ItemID    string       `json:"itemId"`
	ItemName  string       `json:"itemName"`
	UnitPrice money.Amount `json:"unitPrice"`
	Quantity  int          `json:"quantity"`
}

// NewLine snapshots the item's current identity and price.
func NewLine(item menuitem.MenuItem, quantity int) (Line, error) {
	if quantity <= 0 {
		return Line{}, fmt.Errorf("%w: quantity must be positive, got %d", apperrors.ErrInvalidArgument, quantity)
	}

	return Line{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.Price,
		Quantity:  quantity,
	}, nil
}

// Total is unit price times quantity.
func (l Line) Total() money.Amount {
	return l.UnitPrice.Mul(l.Quantity)
}
