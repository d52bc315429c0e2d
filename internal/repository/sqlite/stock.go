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

const stockColumns = `id, name, current_amount, unit, low_limit, batch_size`

// StockRepository persists stock items and publishes the name-ordered listing
// after every write.
type StockRepository struct {
	db     *sql.DB
	feed   *live.Feed[models.StockItem]
	logger *zap.Logger
}

// NewStockRepository creates the repository and primes its feed with the current listing.
func NewStockRepository(ctx context.Context, db *sql.DB, logger *zap.Logger) (*StockRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &StockRepository{db: db, feed: live.NewFeed[models.StockItem](), logger: logger}
	if err := r.publish(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Feed exposes the live name-ordered listing.
func (r *StockRepository) Feed() *live.Feed[models.StockItem] {
	return r.feed
}

// Insert stores a new item and returns it with its assigned ID.
func (r *StockRepository) Insert(ctx context.Context, item models.StockItem) (models.StockItem, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO stock_items (name, current_amount, unit, low_limit, batch_size) VALUES (?, ?, ?, ?, ?)`,
		item.Name, item.CurrentAmount, item.Unit, item.LowLimit, item.BatchSize)
	if err != nil {
		return models.StockItem{}, fmt.Errorf("inserting stock item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.StockItem{}, fmt.Errorf("reading stock item id: %w", err)
	}
	item.ID = id

	r.publishAfterWrite(ctx)
	return item, nil
}

// Update overwrites the item identified by item.ID.
func (r *StockRepository) Update(ctx context.Context, item models.StockItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stock_items SET name = ?, current_amount = ?, unit = ?, low_limit = ?, batch_size = ? WHERE id = ?`,
		item.Name, item.CurrentAmount, item.Unit, item.LowLimit, item.BatchSize, item.ID)
	if err != nil {
		return fmt.Errorf("updating stock item %d: %w", item.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating stock item %d: %w", item.ID, models.ErrNotFound)
	}

	r.publishAfterWrite(ctx)
	return nil
}

// GetByID returns models.ErrNotFound when no item has the given ID.
func (r *StockRepository) GetByID(ctx context.Context, id int64) (models.StockItem, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE id = ?`, id)
	item, err := scanStockItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StockItem{}, fmt.Errorf("stock item %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.StockItem{}, fmt.Errorf("scanning stock item: %w", err)
	}
	return item, nil
}

// List returns all items ordered by name.
func (r *StockRepository) List(ctx context.Context) ([]models.StockItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stockColumns+` FROM stock_items ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing stock items: %w", err)
	}
	defer rows.Close()

	items := []models.StockItem{}
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock items: %w", err)
	}
	return items, nil
}

func (r *StockRepository) publish(ctx context.Context) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	r.feed.Publish(items)
	return nil
}

// publishAfterWrite refreshes the feed; the write already succeeded, so a
// failed refresh is only logged and the next write catches subscribers up.
func (r *StockRepository) publishAfterWrite(ctx context.Context) {
	if err := r.publish(ctx); err != nil {
		r.logger.Warn("failed to refresh stock feed", zap.Error(err))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStockItem(s rowScanner) (models.StockItem, error) {
	var item models.StockItem
	err := s.Scan(&item.ID, &item.Name, &item.CurrentAmount, &item.Unit, &item.LowLimit, &item.BatchSize)
	return item, err
}
