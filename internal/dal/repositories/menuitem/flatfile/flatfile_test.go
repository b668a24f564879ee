package flatfilerepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/menuitem"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuItemRepository_Reload(t *testing.T) {
	client := flatfile.MustNewClient(t.TempDir())
	repo := NewMenuItemRepository(client)
	require.NoError(t, repo.Load())

	item, err := menuitem.New("M001", "Chicken Shawarma", "Wrap", money.FromCents(7500), menuitem.CategoryMainCourse)
	require.NoError(t, err)
	require.NoError(t, repo.Create(item))

	raw, err := os.ReadFile(filepath.Join(client.Dir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, "M001;Chicken Shawarma;Wrap;75.00;Main Course\n", string(raw))

	reloaded := NewMenuItemRepository(client)
	require.NoError(t, reloaded.Load())

	got, err := reloaded.Get("M001")
	require.NoError(t, err)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.Description, got.Description)
	assert.True(t, item.Price.Equal(got.Price))
	assert.Equal(t, item.Category, got.Category)
}

func TestMenuItemCodec_RejectsBadRecords(t *testing.T) {
	codec := MenuItemCodec{}

	for _, record := range []string{
		"M001;Name;Desc;75",
		"M001;Name;Desc;abc;Drink",
		"M001;Name;Desc;-5;Drink",
		"M001;Name;Desc;5;Dessert",
	} {
		_, err := codec.Decode(record)
		assert.Error(t, err, record)
	}

	item, err := codec.Decode("D001;Iced Coffee;Cold;35;drink")
	require.NoError(t, err)
	assert.Equal(t, menuitem.CategoryDrink, item.Category)
}
