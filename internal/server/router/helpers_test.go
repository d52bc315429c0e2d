package router

import (
	"strconv"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func createRequest(name string) models.CreateStockRequest {
	return models.CreateStockRequest{Name: name, CurrentAmount: 30, Unit: "ks", LowLimit: 10, BatchSize: 6}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
