package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/repository/sqlite"
	"github.com/mamadbah2/bogarovo/internal/testutil"
)

func newStockRepo(t *testing.T) *sqlite.StockRepository {
	t.Helper()
	repo, err := sqlite.NewStockRepository(context.Background(), testutil.NewTestDB(t), nil)
	require.NoError(t, err)
	return repo
}

func TestStockRepo_InsertAndGetByID(t *testing.T) {
	repo := newStockRepo(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, models.StockItem{Name: "Psenice", CurrentAmount: 40, Unit: "kg", LowLimit: 10, BatchSize: 5})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestStockRepo_GetByID_NotFound(t *testing.T) {
	repo := newStockRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStockRepo_Update(t *testing.T) {
	repo := newStockRepo(t)
	ctx := context.Background()

	item, err := repo.Insert(ctx, models.StockItem{Name: "Seno", CurrentAmount: 3, Unit: "balik", BatchSize: 1})
	require.NoError(t, err)

	item.CurrentAmount = 2
	require.NoError(t, repo.Update(ctx, item))

	fetched, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, fetched.CurrentAmount)

	err = repo.Update(ctx, models.StockItem{ID: 999, Name: "ghost", Unit: "ks"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStockRepo_ListOrderedByName(t *testing.T) {
	repo := newStockRepo(t)
	ctx := context.Background()

	for _, name := range []string{"Zob", "Kukurice", "Oves"} {
		_, err := repo.Insert(ctx, models.StockItem{Name: name, Unit: "kg"})
		require.NoError(t, err)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Kukurice", items[0].Name)
	assert.Equal(t, "Oves", items[1].Name)
	assert.Equal(t, "Zob", items[2].Name)
}

func TestStockRepo_FeedFollowsWrites(t *testing.T) {
	repo := newStockRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.Feed().Subscribe(ctx)
	initial := <-ch
	assert.Empty(t, initial)

	item, err := repo.Insert(ctx, models.StockItem{Name: "Minerály", CurrentAmount: 5, Unit: "kg"})
	require.NoError(t, err)

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, item.ID, snap[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after insert")
	}

	item.CurrentAmount = 1
	require.NoError(t, repo.Update(ctx, item))

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, 1.0, snap[0].CurrentAmount)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after update")
	}
}
