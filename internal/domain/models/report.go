package models

import "time"

// ForecastEntry is the remaining-batches projection for one stock item.
// DaysRemaining is nil when the item has no positive batch size.
type ForecastEntry struct {
	StockItemID   int64   `bson:"stock_item_id" json:"stock_item_id"`
	Name          string  `bson:"name" json:"name"`
	Unit          string  `bson:"unit" json:"unit"`
	CurrentAmount float64 `bson:"current_amount" json:"current_amount"`
	Low           bool    `bson:"low" json:"low"`
	DaysRemaining *int    `bson:"days_remaining,omitempty" json:"days_remaining"`
}

// DailyReport represents the aggregated stock state stored in MongoDB once a day.
type DailyReport struct {
	Date      time.Time       `bson:"date" json:"date"`
	ItemCount int             `bson:"item_count" json:"item_count"`
	LowCount  int             `bson:"low_count" json:"low_count"`
	LowItems  []string        `bson:"low_items" json:"low_items"`
	Forecast  []ForecastEntry `bson:"forecast" json:"forecast"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}
