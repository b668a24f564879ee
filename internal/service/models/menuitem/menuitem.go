package menuitem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corray333/backend-labs/cafeteria/internal/service/models/apperrors"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
)

type Category string

const (
	CategoryMainCourse Category = "Main Course"
	CategoryDrink      Category = "Drink"
	CategorySnack      Category = "Snack"
)

var ErrInvalidCategory = errors.New("invalid category")

func (c Category) String() string {
	return string(c)
}

// ParseCategory accepts the stored names case-insensitively, with or without the space.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "maincourse":
		return CategoryMainCourse, nil
	case "drink":
		return CategoryDrink, nil
	case "snack":
		return CategorySnack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// MenuItem is a catalog entry.
type MenuItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       money.Amount `json:"price"`
	Category    Category     `json:"category"`
}

// New validates and builds a menu item.
func New(id, name, description string, price money.Amount, category Category) (MenuItem, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
		return MenuItem{}, fmt.Errorf("%w: id and name are required", apperrors.ErrInvalidArgument)
	}
	if !price.IsPositive() {
		return MenuItem{}, fmt.Errorf("%w: price must be positive, got %s", apperrors.ErrInvalidArgument, price)
	}
	cat, err := ParseCategory(string(category))
	if err != nil {
		return MenuItem{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}

	return MenuItem{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    cat,
	}, nil
}

// Rename returns m with a new name.
func (m MenuItem) Rename(name string) (MenuItem, error) {
	if strings.TrimSpace(name) == "" {
		return m, fmt.Errorf("%w: name is required", apperrors.ErrInvalidArgument)
	}
	m.Name = name

	return m, nil
}

// Reprice returns m with a new price.
func (m MenuItem) Reprice(price money.Amount) (MenuItem, error) {
	if !price.IsPositive() {
		return m, fmt.Errorf("%w: price must be positive, got %s", apperrors.ErrInvalidArgument, price)
	}
	m.Price = price

	return m, nil
}
