package models

// CreateStockRequest carries the "new item" form. Numeric fields default to 0 when unparsable.
type CreateStockRequest struct {
	Name          string `json:"name"`
	CurrentAmount Amount `json:"current_amount"`
	Unit          string `json:"unit"`
	LowLimit      Amount `json:"low_limit"`
	BatchSize     Amount `json:"batch_size"`
}

// AdjustStockRequest carries a manual correction, usually plus or minus one batch.
type AdjustStockRequest struct {
	Delta Amount `json:"delta"`
}

// CreateTaskRequest carries the "new task" form.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	DueDate     string `json:"due_date"`
	StockItemID *int64 `json:"stock_item_id,omitempty"`
}

// SetMessageRequest replaces the broadcast SMS body.
type SetMessageRequest struct {
	Message string `json:"message"`
}

// SelectRecipientRequest toggles one extracted recipient.
type SelectRecipientRequest struct {
	Selected bool `json:"selected"`
}

// PermissionResultRequest reports the outcome of a just-in-time permission prompt.
type PermissionResultRequest struct {
	Granted bool `json:"granted"`
}
