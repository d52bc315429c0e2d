package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/service/inventory"
)

const defaultMovementLimit = 50

// Inventory is the stock and task surface the handlers need.
type Inventory interface {
	CreateStock(ctx context.Context, req models.CreateStockRequest) (models.StockItem, error)
	AdjustStock(ctx context.Context, id int64, delta float64) (models.StockItem, error)
	BulkDeduct(ctx context.Context) (int, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (models.TaskItem, error)
	ToggleTask(ctx context.Context, id int64) (models.TaskItem, error)
	ListStock(ctx context.Context) ([]inventory.StockView, error)
	ListTasks(ctx context.Context) ([]models.TaskItem, error)
	Forecast(ctx context.Context) ([]models.ForecastEntry, error)
	WatchStock(ctx context.Context) <-chan []models.StockItem
	WatchTasks(ctx context.Context) <-chan []models.TaskItem
	Movements(ctx context.Context, stockItemID int64, limit int64) ([]models.Movement, error)
}

// InventoryHandler exposes stock, tasks and forecasts over HTTP. Mutations are
// validated here and then handed to the background queue.
type InventoryHandler struct {
	svc    Inventory
	queue  Submitter
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc Inventory, queue Submitter, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, queue: queue, logger: logger}
}

// ListStock returns the name-ordered stock listing.
func (h *InventoryHandler) ListStock(c *gin.Context) {
	views, err := h.svc.ListStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// CreateStock queues a new stock item.
func (h *InventoryHandler) CreateStock(c *gin.Context) {
	var req models.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid stock payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := inventory.ValidateStock(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.submit(c, "stock.create", func(ctx context.Context) error {
		_, err := h.svc.CreateStock(ctx, req)
		return err
	})
}

// AdjustStock queues a manual delta on one item.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid adjust payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.submit(c, "stock.adjust", func(ctx context.Context) error {
		_, err := h.svc.AdjustStock(ctx, id, float64(req.Delta))
		return err
	})
}

// BulkDeduct queues the "deduct one batch from everything" action.
func (h *InventoryHandler) BulkDeduct(c *gin.Context) {
	h.submit(c, "stock.bulk_deduct", func(ctx context.Context) error {
		_, err := h.svc.BulkDeduct(ctx)
		return err
	})
}

// Movements returns the newest movements of one item.
func (h *InventoryHandler) Movements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	limit := int64(defaultMovementLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	movements, err := h.svc.Movements(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, movements)
}

// Forecast returns the remaining batches per item.
func (h *InventoryHandler) Forecast(c *gin.Context) {
	entries, err := h.svc.Forecast(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListTasks returns the tasks ordered by due date.
func (h *InventoryHandler) ListTasks(c *gin.Context) {
	tasks, err := h.svc.ListTasks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTask queues a new task.
func (h *InventoryHandler) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid task payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := inventory.ValidateTask(req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.submit(c, "task.create", func(ctx context.Context) error {
		_, err := h.svc.CreateTask(ctx, req)
		return err
	})
}

// ToggleTask queues a completion flip.
func (h *InventoryHandler) ToggleTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	h.submit(c, "task.toggle", func(ctx context.Context) error {
		_, err := h.svc.ToggleTask(ctx, id)
		return err
	})
}

// StreamStock pushes a stock snapshot on every change.
func (h *InventoryHandler) StreamStock(c *gin.Context) {
	stream(c, "stock", h.svc.WatchStock(c.Request.Context()), inventory.Views)
}

// StreamTasks pushes a task snapshot on every change.
func (h *InventoryHandler) StreamTasks(c *gin.Context) {
	stream(c, "tasks", h.svc.WatchTasks(c.Request.Context()), func(tasks []models.TaskItem) []models.TaskItem {
		return tasks
	})
}

func (h *InventoryHandler) submit(c *gin.Context, name string, fn func(ctx context.Context) error) {
	if err := h.queue.Submit(name, fn); err != nil {
		respondError(c, h.logger, err)
		return
	}
	accepted(c)
}
