package menusvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/interfaces/imenurepo"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/order"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/record"
	"go.opentelemetry.io/otel"
)


// CartRequest is one requested line of an order.
type CartRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// MenuService manages the catalog.
type MenuService struct {
	menuRepo imenurepo.IMenuItemRepository
	seed     []menuitem.MenuItem
}

// option is a function that configures the MenuService.
type option func(*MenuService)

// MustNewMenuService creates a new MenuService.
func MustNewMenuService(opts ...option) *MenuService {
	s := &MenuService{seed: DefaultCatalog()}
	for _, opt := range opts {
		opt(s)
	}

	if s.menuRepo == nil {
		panic("menu service requires a menu repository")
	}

	return s
}

// WithMenuRepository sets the menu repository for the MenuService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithMenuRepository(repo imenurepo.IMenuItemRepository) option {
	return func(s *MenuService) {
		s.menuRepo = repo
	}
}

// WithSeedCatalog replaces the catalog Seed inserts into an empty menu.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSeedCatalog(items []menuitem.MenuItem) option {
	return func(s *MenuService) {
		if len(items) > 0 {
			s.seed = items
		}
	}
}

// DefaultCatalog returns the built-in starter menu.
func DefaultCatalog() []menuitem.MenuItem {
	return []menuitem.MenuItem{
		{ID: "M001", Name: "Chicken Shawarma", Description: "Grilled chicken wrap with garlic sauce", Price: money.FromCents(7500), Category: menuitem.CategoryMainCourse},
		{ID: "M002", Name: "Koshari Bowl", Description: "Rice, lentils and pasta with tomato sauce", Price: money.FromCents(5500), Category: menuitem.CategoryMainCourse},
		{ID: "D001", Name: "Iced Coffee", Description: "Cold brew with milk", Price: money.FromCents(3500), Category: menuitem.CategoryDrink},
		{ID: "S001", Name: "Chocolate Muffin", Description: "Baked fresh every morning", Price: money.FromCents(2000), Category: menuitem.CategorySnack},
	}
}

// Seed inserts the seed catalog when the menu is empty and reports how many
// items were added.
func (s *MenuService) Seed(ctx context.Context) (int, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Seed")
	defer span.End()

	if s.menuRepo.Len() > 0 {
		return 0, nil
	}

	added := 0
	for _, item := range s.seed {
		if _, err := s.Add(ctx, item); err != nil {
			return added, fmt.Errorf("failed to seed menu item %s: %w", item.ID, err)
		}
		added++
	}

	slog.Info("Menu seeded", "items", added)

	return added, nil
}

// List returns the catalog sorted by id.
func (s *MenuService) List(ctx context.Context) []menuitem.MenuItem {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.List")
	defer span.End()

	items := s.menuRepo.All()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items
}

// Get returns the item with the given id.
func (s *MenuService) Get(ctx context.Context, id string) (menuitem.MenuItem, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Get")
	defer span.End()

	return s.menuRepo.Get(id)
}

// Add validates and stores a new item.
func (s *MenuService) Add(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Add")
	defer span.End()

	if err := errors.Join(
		record.CheckReserved("id", item.ID),
		record.CheckReserved("name", item.Name),
		record.CheckReserved("description", item.Description),
	); err != nil {
		return menuitem.MenuItem{}, err
	}

	item, err := menuitem.New(item.ID, item.Name, item.Description, item.Price, item.Category)
	if err != nil {
		return menuitem.MenuItem{}, err
	}

	if err := s.menuRepo.Create(item); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return menuitem.MenuItem{}, fmt.Errorf("menu item %s: %w", item.ID, apperrors.ErrDuplicateIdentity)
		}

		return menuitem.MenuItem{}, err
	}

	slog.Info("Menu item added", "item_id", item.ID, "price", item.Price.String())

	return item, nil
}

// Rename changes the item's display name.
func (s *MenuService) Rename(ctx context.Context, id, name string) (menuitem.MenuItem, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Rename")
	defer span.End()

	if err := record.CheckReserved("name", name); err != nil {
		return menuitem.MenuItem{}, err
	}

	return s.menuRepo.Apply(id, func(m menuitem.MenuItem) (menuitem.MenuItem, error) {
		return m.Rename(name)
	})
}

// Reprice changes the item's price. Placed orders keep their snapshot price.
func (s *MenuService) Reprice(ctx context.Context, id string, price money.Amount) (menuitem.MenuItem, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Reprice")
	defer span.End()

	item, err := s.menuRepo.Apply(id, func(m menuitem.MenuItem) (menuitem.MenuItem, error) {
		return m.Reprice(price)
	})
	if err != nil {
		return menuitem.MenuItem{}, err
	}

	slog.Info("Menu item repriced", "item_id", id, "price", price.String())

	return item, nil
}

// Remove deletes the item from the catalog.
func (s *MenuService) Remove(ctx context.Context, id string) error {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.Remove")
	defer span.End()

	if err := s.menuRepo.Delete(id); err != nil {
		return err
	}

	slog.Info("Menu item removed", "item_id", id)

	return nil
}

// BuildCart snapshots the current catalog entries for the requested lines.
func (s *MenuService) BuildCart(ctx context.Context, requests []CartRequest) ([]order.Line, error) {
	_, span := otel.Tracer("menusvc").Start(ctx, "MenuService.BuildCart")
	defer span.End()

	lines := make([]order.Line, 0, len(requests))
	for _, r := range requests {
		item, err := s.menuRepo.Get(r.ItemID)
		if err != nil {
			return nil, err
		}
		line, err := order.NewLine(item, r.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}
