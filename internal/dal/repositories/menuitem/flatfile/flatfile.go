package flatfilerepo

import (
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/table"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

// FileName is the menu table file.
const FileName = "menu.txt"

// Separator delimits menu record fields.
const Separator = ";"

// MenuItemCodec encodes items as id;name;description;price;category.
type MenuItemCodec struct{}

func (MenuItemCodec) Key(m menuitem.MenuItem) string { return m.ID }

func (MenuItemCodec) Encode(m menuitem.MenuItem) string {
	return strings.Join([]string{
		m.ID,
		m.Name,
		m.Description,
		m.Price.String(),
		m.Category.String(),
	}, Separator)
}

func (MenuItemCodec) Decode(record string) (menuitem.MenuItem, error) {
	p := strings.Split(record, Separator)
	if len(p) < 5 {
		return menuitem.MenuItem{}, fmt.Errorf("short menu record: %d fields", len(p))
	}

	price, err := money.Parse(strings.TrimSpace(p[3]))
	if err != nil {
		return menuitem.MenuItem{}, err
	}
	category, err := menuitem.ParseCategory(p[4])
	if err != nil {
		return menuitem.MenuItem{}, err
	}

	return menuitem.New(p[0], p[1], p[2], price, category)
}

// MenuItemRepository stores the catalog in a flat table file.
// Reads and writes are safe from concurrent sessions.
type MenuItemRepository struct {
	*table.Table[string, menuitem.MenuItem]
}

// NewMenuItemRepository creates a menu repository; call Load before use.
func NewMenuItemRepository(client *flatfile.Client) *MenuItemRepository {
	return &MenuItemRepository{
		Table: table.New[string, menuitem.MenuItem]("menu", client.Store(FileName), MenuItemCodec{}),
	}
}
