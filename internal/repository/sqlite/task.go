package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/live"
)

const taskColumns = `id, title, due_date, stock_item_id, completed`

// TaskRepository persists planner tasks. The listing is ordered by the due date
// string as stored, so "20.5.2024" sorts after "10.6.2024".
type TaskRepository struct {
	db     *sql.DB
	feed   *live.Feed[models.TaskItem]
	logger *zap.Logger
}

// NewTaskRepository creates the repository and primes its feed.
func NewTaskRepository(ctx context.Context, db *sql.DB, logger *zap.Logger) (*TaskRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &TaskRepository{db: db, feed: live.NewFeed[models.TaskItem](), logger: logger}
	if err := r.publish(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Feed exposes the live due-date ordered listing.
func (r *TaskRepository) Feed() *live.Feed[models.TaskItem] {
	return r.feed
}

// Insert stores a new task and returns it with its assigned ID.
func (r *TaskRepository) Insert(ctx context.Context, task models.TaskItem) (models.TaskItem, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (title, due_date, stock_item_id, completed) VALUES (?, ?, ?, ?)`,
		task.Title, task.DueDate, nullableID(task.StockItemID), boolToInt(task.Completed))
	if err != nil {
		return models.TaskItem{}, fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.TaskItem{}, fmt.Errorf("reading task id: %w", err)
	}
	task.ID = id

	r.publishAfterWrite(ctx)
	return task, nil
}

// Update overwrites the task identified by task.ID.
func (r *TaskRepository) Update(ctx context.Context, task models.TaskItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, due_date = ?, stock_item_id = ?, completed = ? WHERE id = ?`,
		task.Title, task.DueDate, nullableID(task.StockItemID), boolToInt(task.Completed), task.ID)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", task.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating task %d: %w", task.ID, models.ErrNotFound)
	}

	r.publishAfterWrite(ctx)
	return nil
}

// GetByID returns models.ErrNotFound when no task has the given ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (models.TaskItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TaskItem{}, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.TaskItem{}, fmt.Errorf("scanning task: %w", err)
	}
	return task, nil
}

// List returns all tasks ordered lexically by due date.
func (r *TaskRepository) List(ctx context.Context) ([]models.TaskItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY due_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.TaskItem{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) publish(ctx context.Context) error {
	tasks, err := r.List(ctx)
	if err != nil {
		return err
	}
	r.feed.Publish(tasks)
	return nil
}

func (r *TaskRepository) publishAfterWrite(ctx context.Context) {
	if err := r.publish(ctx); err != nil {
		r.logger.Warn("failed to refresh task feed", zap.Error(err))
	}
}

func scanTask(s rowScanner) (models.TaskItem, error) {
	var (
		task      models.TaskItem
		stockID   sql.NullInt64
		completed int
	)
	if err := s.Scan(&task.ID, &task.Title, &task.DueDate, &stockID, &completed); err != nil {
		return models.TaskItem{}, err
	}
	if stockID.Valid {
		id := stockID.Int64
		task.StockItemID = &id
	}
	task.Completed = completed != 0
	return task, nil
}
