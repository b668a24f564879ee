package flatfilerepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentRepository_ReloadKeepsFields(t *testing.T) {
	client := flatfile.MustNewClient(t.TempDir())
	repo := NewStudentRepository(client)
	require.NoError(t, repo.Load())

	s, err := student.Restore("2025001", "Mona", "hash", 12, money.FromCents(1050))
	require.NoError(t, err)
	require.NoError(t, repo.Create(s))

	reloaded := NewStudentRepository(client)
	require.NoError(t, reloaded.Load())

	got, err := reloaded.Get("2025001")
	require.NoError(t, err)
	assert.Equal(t, "Mona", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, 12, got.Points)
	assert.Equal(t, "10.50", got.Wallet.String())
}

func TestStudentCodec_LegacyRecords(t *testing.T) {
	dir := t.TempDir()
	content := "Ali;2025002;abc\n" +
		"Sara;2025003;def;7\n" +
		"broken\n" +
		"Omar;2025004;ghi;-3;0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	repo := NewStudentRepository(flatfile.MustNewClient(dir))
	require.NoError(t, repo.Load())

	assert.Equal(t, 2, repo.Len())

	ali, err := repo.Get("2025002")
	require.NoError(t, err)
	assert.Zero(t, ali.Points)
	assert.True(t, ali.Wallet.IsZero())

	sara, err := repo.Get("2025003")
	require.NoError(t, err)
	assert.Equal(t, 7, sara.Points)

	assert.False(t, repo.Exists("2025004"))
}

func TestStudentCodec_Encode(t *testing.T) {
	s, err := student.Restore("1", "N", "h", 3, money.FromCents(200))
	require.NoError(t, err)

	assert.Equal(t, "N;1;h;3;2.00", StudentCodec{}.Encode(s))
}
