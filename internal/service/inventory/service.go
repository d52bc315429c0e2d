package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/ledger"
	"github.com/mamadbah2/bogarovo/internal/live"
	"github.com/mamadbah2/bogarovo/internal/metrics"
)

// ErrInvalidArguments indicates a form was submitted with missing required text.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrMovementLogDisabled is returned by Movements when no movement log is configured.
var ErrMovementLogDisabled = errors.New("movement log disabled")

// StockStore is the persistence the service needs for stock items.
type StockStore interface {
	Insert(ctx context.Context, item models.StockItem) (models.StockItem, error)
	Update(ctx context.Context, item models.StockItem) error
	GetByID(ctx context.Context, id int64) (models.StockItem, error)
	List(ctx context.Context) ([]models.StockItem, error)
	Feed() *live.Feed[models.StockItem]
}

// TaskStore is the persistence the service needs for planner tasks.
type TaskStore interface {
	Insert(ctx context.Context, task models.TaskItem) (models.TaskItem, error)
	Update(ctx context.Context, task models.TaskItem) error
	GetByID(ctx context.Context, id int64) (models.TaskItem, error)
	List(ctx context.Context) ([]models.TaskItem, error)
	Feed() *live.Feed[models.TaskItem]
}

// MovementLog stores applied stock changes. It is optional.
type MovementLog interface {
	RecordMovement(ctx context.Context, movement models.Movement) error
	ListMovements(ctx context.Context, stockItemID int64, limit int64) ([]models.Movement, error)
}

// StockView is a stock item with its derived flags.
type StockView struct {
	models.StockItem
	Low           bool `json:"low"`
	DaysRemaining *int `json:"days_remaining"`
}

// Service applies ledger rules to stored stock items and tasks.
type Service struct {
	stock     StockStore
	tasks     TaskStore
	movements MovementLog
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the inventory service. movements and m may be nil.
func NewService(stock StockStore, tasks TaskStore, movements MovementLog, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		stock:     stock,
		tasks:     tasks,
		movements: movements,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateStock checks the "new item" form. Numeric fields never fail: they
// were already defaulted to 0 while decoding.
func ValidateStock(req models.CreateStockRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Unit) == "" {
		return fmt.Errorf("%w: name and unit are required", ErrInvalidArguments)
	}
	return nil
}

// ValidateTask checks the "new task" form.
func ValidateTask(req models.CreateTaskRequest) error {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.DueDate) == "" {
		return fmt.Errorf("%w: title and due date are required", ErrInvalidArguments)
	}
	return nil
}

// CreateStock stores a new stock item.
func (s *Service) CreateStock(ctx context.Context, req models.CreateStockRequest) (models.StockItem, error) {
	if err := ValidateStock(req); err != nil {
		return models.StockItem{}, err
	}

	item := ledger.NewStockItem(req.Name, float64(req.CurrentAmount), req.Unit, float64(req.LowLimit), float64(req.BatchSize))
	created, err := s.stock.Insert(ctx, item)
	if err != nil {
		return models.StockItem{}, err
	}

	s.logger.Info("stock item created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// AdjustStock applies a manual delta to one item.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta float64) (models.StockItem, error) {
	item, err := s.stock.GetByID(ctx, id)
	if err != nil {
		return models.StockItem{}, err
	}
	return s.apply(ctx, item, ledger.Adjust(item, delta), models.MovementManual, nil)
}

// BulkDeduct removes one batch from every item. Each item is written on its
// own; the first failure stops the run and earlier writes stay applied.
func (s *Service) BulkDeduct(ctx context.Context) (int, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := ledger.BulkDeduct(items)
	for i := range items {
		if _, err := s.apply(ctx, items[i], updated[i], models.MovementBulk, nil); err != nil {
			return i, fmt.Errorf("bulk deduct stopped after %d of %d items: %w", i, len(items), err)
		}
	}

	s.logger.Info("bulk deduct applied", zap.Int("items", len(items)))
	return len(items), nil
}

// CreateTask stores a new pending task.
func (s *Service) CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.TaskItem, error) {
	if err := ValidateTask(req); err != nil {
		return models.TaskItem{}, err
	}

	created, err := s.tasks.Insert(ctx, models.TaskItem{
		Title:       req.Title,
		DueDate:     req.DueDate,
		StockItemID: req.StockItemID,
	})
	if err != nil {
		return models.TaskItem{}, err
	}

	s.logger.Info("task created", zap.Int64("id", created.ID), zap.String("title", created.Title))
	return created, nil
}

// ToggleTask flips a task's completion. Completing a linked task deducts one
// batch from the linked item; a missing item is skipped without error.
func (s *Service) ToggleTask(ctx context.Context, id int64) (models.TaskItem, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return models.TaskItem{}, err
	}

	updated, deduct := ledger.ToggleCompletion(task)
	if err := s.tasks.Update(ctx, updated); err != nil {
		return models.TaskItem{}, err
	}

	if !deduct {
		return updated, nil
	}

	item, err := s.stock.GetByID(ctx, *updated.StockItemID)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Debug("linked stock item missing, skipping deduction",
			zap.Int64("task_id", updated.ID), zap.Int64("stock_item_id", *updated.StockItemID))
		return updated, nil
	}
	if err != nil {
		return updated, err
	}

	taskID := updated.ID
	if _, err := s.apply(ctx, item, ledger.Deduct(item), models.MovementTask, &taskID); err != nil {
		return updated, err
	}
	return updated, nil
}

// ListStock returns the name-ordered items with low flags and forecasts.
func (s *Service) ListStock(ctx context.Context) ([]StockView, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return nil, err
	}
	return Views(items), nil
}

// ListTasks returns the due-date ordered tasks.
func (s *Service) ListTasks(ctx context.Context) ([]models.TaskItem, error) {
	return s.tasks.List(ctx)
}

// Forecast returns the remaining batches of every item.
func (s *Service) Forecast(ctx context.Context) ([]models.ForecastEntry, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Forecast(items), nil
}

// WatchStock streams stock snapshots until ctx ends.
func (s *Service) WatchStock(ctx context.Context) <-chan []models.StockItem {
	return s.stock.Feed().Subscribe(ctx)
}

// WatchTasks streams task snapshots until ctx ends.
func (s *Service) WatchTasks(ctx context.Context) <-chan []models.TaskItem {
	return s.tasks.Feed().Subscribe(ctx)
}

// Movements returns the newest movements of one item.
func (s *Service) Movements(ctx context.Context, stockItemID int64, limit int64) ([]models.Movement, error) {
	if s.movements == nil {
		return nil, ErrMovementLogDisabled
	}
	return s.movements.ListMovements(ctx, stockItemID, limit)
}

func (s *Service) apply(ctx context.Context, before, after models.StockItem, reason models.MovementReason, taskID *int64) (models.StockItem, error) {
	if err := s.stock.Update(ctx, after); err != nil {
		return models.StockItem{}, err
	}
	s.metrics.StockAdjusted(string(reason))
	s.record(ctx, before, after, reason, taskID)
	return after, nil
}

// record is best effort; the stock write has already happened.
func (s *Service) record(ctx context.Context, before, after models.StockItem, reason models.MovementReason, taskID *int64) {
	if s.movements == nil {
		return
	}

	movement := models.Movement{
		ID:          uuid.NewString(),
		StockItemID: after.ID,
		ItemName:    after.Name,
		Reason:      reason,
		Delta:       after.CurrentAmount - before.CurrentAmount,
		Before:      before.CurrentAmount,
		After:       after.CurrentAmount,
		TaskID:      taskID,
		At:          s.now().UTC(),
	}
	if err := s.movements.RecordMovement(ctx, movement); err != nil {
		s.logger.Warn("failed to record stock movement", zap.Int64("stock_item_id", after.ID), zap.Error(err))
	}
}

// Views derives low flags and forecasts for a listing.
func Views(items []models.StockItem) []StockView {
	views := make([]StockView, len(items))
	for i, entry := range ledger.Forecast(items) {
		views[i] = StockView{StockItem: items[i], Low: entry.Low, DaysRemaining: entry.DaysRemaining}
	}
	return views
}
