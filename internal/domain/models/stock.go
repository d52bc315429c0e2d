package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// StockItem is a tracked supply such as feed, bedding or medication.
type StockItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	CurrentAmount float64 `json:"current_amount"`
	Unit          string  `json:"unit"`
	LowLimit      float64 `json:"low_limit"`
	BatchSize     float64 `json:"batch_size"`
}

// TaskItem is a planner entry. StockItemID is a weak link: the referenced item may not exist.
type TaskItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	DueDate     string `json:"due_date"`
	StockItemID *int64 `json:"stock_item_id,omitempty"`
	Completed   bool   `json:"completed"`
}

// MovementReason tells what caused a stock mutation.
type MovementReason string

const (
	MovementManual MovementReason = "manual"
	MovementBulk   MovementReason = "bulk"
	MovementTask   MovementReason = "task"
)

// Movement is one applied change to a stock item's amount.
type Movement struct {
	ID          string         `bson:"_id" json:"id"`
	StockItemID int64          `bson:"stock_item_id" json:"stock_item_id"`
	ItemName    string         `bson:"item_name" json:"item_name"`
	Reason      MovementReason `bson:"reason" json:"reason"`
	Delta       float64        `bson:"delta" json:"delta"`
	Before      float64        `bson:"before" json:"before"`
	After       float64        `bson:"after" json:"after"`
	TaskID      *int64         `bson:"task_id,omitempty" json:"task_id,omitempty"`
	At          time.Time      `bson:"at" json:"at"`
}

// Amount is a numeric form field. Numbers and numeric strings are accepted;
// anything unparsable decodes to zero instead of failing the request.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(ParseAmount(string(bytes.Trim(data, `"`))))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// ParseAmount parses user input and falls back to 0 for anything that is not a finite number.
func ParseAmount(raw string) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
