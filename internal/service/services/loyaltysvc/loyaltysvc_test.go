package loyaltysvc

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/corray333/backend-labs/cafeteria/internal/dal/flatfile"
	studentrepo "github.com/corray333/backend-labs/cafeteria/internal/dal/repositories/student/flatfile"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/money"
	"github.com/corray333/backend-labs/cafeteria/internal/service/models/student"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, points int) (*Ledger, string) {
	t.Helper()

	dir := t.TempDir()
	client := flatfile.MustNewClient(dir)
	repo := studentrepo.NewStudentRepository(client)
	require.NoError(t, repo.Load())

	s, err := student.Restore("2025001", "Mona", "hash", points, money.Zero)
	require.NoError(t, err)
	require.NoError(t, repo.Create(s))

	return MustNewLedger(WithStudentRepository(repo)), dir
}

func TestLedger_RewardsJSON(t *testing.T) {
	ledger, _ := newLedger(t, 0)
	discount, freeItem := ledger.Rewards()

	data, err := json.Marshal(discount)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pointsCost":50,"discount":"10.00"}`, string(data))

	data, err = json.Marshal(freeItem)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pointsCost":100,"discount":"0.00","itemId":"D001"}`, string(data))
}

func TestLedger_AwardPoints(t *testing.T) {
	ledger, dir := newLedger(t, 0)
	ctx := context.Background()

	assert.Equal(t, 10, ledger.AwardPoints(ctx, "2025001", money.FromCents(10000)))
	assert.Equal(t, 10, ledger.PointsOf(ctx, "2025001"))

	reloaded := studentrepo.NewStudentRepository(flatfile.MustNewClient(dir))
	require.NoError(t, reloaded.Load())
	s, err := reloaded.Get("2025001")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Points)
}

func TestLedger_AwardPointsUnknownStudent(t *testing.T) {
	ledger, _ := newLedger(t, 0)

	assert.Equal(t, 6, ledger.AwardPoints(context.Background(), "nobody", money.FromCents(6000)))
	assert.Zero(t, ledger.PointsOf(context.Background(), "nobody"))
}

func TestLedger_RedeemDiscount(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient points", func(t *testing.T) {
		ledger, _ := newLedger(t, 30)

		assert.False(t, ledger.RedeemDiscount(ctx, "2025001", 50, money.FromCents(1000)))
		assert.Equal(t, 30, ledger.PointsOf(ctx, "2025001"))
		assert.True(t, ledger.WalletOf(ctx, "2025001").IsZero())
	})

	t.Run("success", func(t *testing.T) {
		ledger, _ := newLedger(t, 60)

		assert.True(t, ledger.RedeemDiscount(ctx, "2025001", 50, money.FromCents(1000)))
		assert.Equal(t, 10, ledger.PointsOf(ctx, "2025001"))
		assert.Equal(t, "10.00", ledger.WalletOf(ctx, "2025001").String())
	})

	t.Run("unknown student", func(t *testing.T) {
		ledger, _ := newLedger(t, 60)

		assert.False(t, ledger.RedeemDiscount(ctx, "nobody", 50, money.FromCents(1000)))
	})
}

func TestLedger_ConcurrentRedeemDiscount(t *testing.T) {
	ledger, _ := newLedger(t, 50)
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ledger.RedeemDiscount(ctx, "2025001", 50, money.FromCents(1000)) {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Zero(t, ledger.PointsOf(ctx, "2025001"))
	assert.Equal(t, "10.00", ledger.WalletOf(ctx, "2025001").String())
}

func TestLedger_RedeemFreeItemOnlyDeductsPoints(t *testing.T) {
	ledger, _ := newLedger(t, 120)
	ctx := context.Background()

	assert.True(t, ledger.RedeemFreeItem(ctx, "2025001", 100, "D001"))
	assert.Equal(t, 20, ledger.PointsOf(ctx, "2025001"))
	assert.True(t, ledger.WalletOf(ctx, "2025001").IsZero())

	assert.False(t, ledger.RedeemFreeItem(ctx, "2025001", 100, "D001"))
	assert.Equal(t, 20, ledger.PointsOf(ctx, "2025001"))
}

func TestMustNewLedger_PanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() { MustNewLedger() })
}
