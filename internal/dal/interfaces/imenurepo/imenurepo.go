package imenurepo

import (
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
)

// IMenuItemRepository is an interface for the menu table.
type IMenuItemRepository interface {
	Get(id string) (menuitem.MenuItem, error)
	All() []menuitem.MenuItem
	Len() int
	Create(item menuitem.MenuItem) error
	Delete(id string) error
	Apply(id string, mutate func(menuitem.MenuItem) (menuitem.MenuItem, error)) (menuitem.MenuItem, error)
}
