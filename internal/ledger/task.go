package ledger

import "github.com/mamadbah2/bogarovo/internal/domain/models"

// ToggleCompletion flips the task's completed flag. deduct is true only on the
// pending to completed edge of a task linked to a stock item; un-completing
// never restores stock, and completing again deducts again.
func ToggleCompletion(task models.TaskItem) (updated models.TaskItem, deduct bool) {
	updated = task
	updated.Completed = !task.Completed
	deduct = !task.Completed && updated.Completed && updated.StockItemID != nil
	return updated, deduct
}
