package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/repository/sqlite"
	"github.com/mamadbah2/bogarovo/internal/testutil"
)

func newTaskRepo(t *testing.T) *sqlite.TaskRepository {
	t.Helper()
	repo, err := sqlite.NewTaskRepository(context.Background(), testutil.NewTestDB(t), nil)
	require.NoError(t, err)
	return repo
}

func TestTaskRepo_RoundTripWithStockLink(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	stockID := int64(12)
	created, err := repo.Insert(ctx, models.TaskItem{Title: "Nakrmit kozy", DueDate: "2024-05-20", StockItemID: &stockID})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.StockItemID)
	assert.Equal(t, int64(12), *fetched.StockItemID)
	assert.False(t, fetched.Completed)

	fetched.Completed = true
	fetched.StockItemID = nil
	require.NoError(t, repo.Update(ctx, fetched))

	again, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	assert.Nil(t, again.StockItemID)
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	repo := newTaskRepo(t)

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Due dates are free text, so the listing follows string order rather than
// calendar order. This documents the known limitation.
func TestTaskRepo_ListUsesLexicalDueDateOrder(t *testing.T) {
	repo := newTaskRepo(t)
	ctx := context.Background()

	for _, due := range []string{"20.5.2024", "10.6.2024", "3.1.2025"} {
		_, err := repo.Insert(ctx, models.TaskItem{Title: "ukol " + due, DueDate: due})
		require.NoError(t, err)
	}

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "10.6.2024", tasks[0].DueDate)
	assert.Equal(t, "20.5.2024", tasks[1].DueDate)
	assert.Equal(t, "3.1.2025", tasks[2].DueDate)
}

func TestTaskRepo_FeedPrimedWithExistingRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := sqlite.NewTaskRepository(ctx, db, nil)
	require.NoError(t, err)
	_, err = first.Insert(ctx, models.TaskItem{Title: "Vycistit kurnik", DueDate: "2024-06-01"})
	require.NoError(t, err)

	second, err := sqlite.NewTaskRepository(ctx, db, nil)
	require.NoError(t, err)

	snap := second.Feed().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "Vycistit kurnik", snap[0].Title)
}
