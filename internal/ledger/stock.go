// Package ledger holds the stock and task rules. Every function is pure; callers
// persist the returned values.
package ledger

import (
	"math"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

// NewStockItem builds an unsaved item. Limits and batch sizes are taken as given,
// negative values included; only the amount is clamped.
func NewStockItem(name string, currentAmount float64, unit string, lowLimit, batchSize float64) models.StockItem {
	return models.StockItem{
		Name:          name,
		CurrentAmount: clamp(currentAmount),
		Unit:          unit,
		LowLimit:      lowLimit,
		BatchSize:     batchSize,
	}
}

// Adjust applies delta to the item's amount, never going below zero.
func Adjust(item models.StockItem, delta float64) models.StockItem {
	item.CurrentAmount = clamp(item.CurrentAmount + delta)
	return item
}

// Deduct removes one batch from the item.
func Deduct(item models.StockItem) models.StockItem {
	return Adjust(item, -item.BatchSize)
}

// BulkDeduct removes one batch from every item, low or not.
func BulkDeduct(items []models.StockItem) []models.StockItem {
	out := make([]models.StockItem, len(items))
	for i, item := range items {
		out[i] = Deduct(item)
	}
	return out
}

// IsLow reports whether the item is strictly below its limit.
func IsLow(item models.StockItem) bool {
	return item.CurrentAmount < item.LowLimit
}

// DaysRemaining returns how many whole batches are left. The second value is
// false when the batch size is not positive and no forecast can be made.
// Counts beyond the int range saturate at math.MaxInt.
func DaysRemaining(item models.StockItem) (int, bool) {
	if item.BatchSize <= 0 {
		return 0, false
	}
	batches := math.Floor(item.CurrentAmount / item.BatchSize)
	if batches >= float64(math.MaxInt) {
		return math.MaxInt, true
	}
	return int(batches), true
}

// Forecast projects the remaining batches of every item.
func Forecast(items []models.StockItem) []models.ForecastEntry {
	entries := make([]models.ForecastEntry, len(items))
	for i, item := range items {
		entries[i] = models.ForecastEntry{
			StockItemID:   item.ID,
			Name:          item.Name,
			Unit:          item.Unit,
			CurrentAmount: item.CurrentAmount,
			Low:           IsLow(item),
		}
		if days, ok := DaysRemaining(item); ok {
			entries[i].DaysRemaining = &days
		}
	}
	return entries
}

// clamp keeps amounts in [0, math.MaxFloat64] so they always encode as JSON.
func clamp(amount float64) float64 {
	switch {
	case amount < 0 || math.IsNaN(amount):
		return 0
	case amount > math.MaxFloat64:
		return math.MaxFloat64
	}
	return amount
}
