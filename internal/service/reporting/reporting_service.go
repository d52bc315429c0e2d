package reporting

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
	"github.com/mamadbah2/bogarovo/internal/ledger"
	repo "github.com/mamadbah2/bogarovo/internal/repository/sheets"
)

const (
	dateLayout       = "2006-01-02"
	stockSnapshotRng = "Stock!A1:G"
	reportsRange     = "Reports!A:D"
)

// StockLister reads the current stock listing.
type StockLister interface {
	List(ctx context.Context) ([]models.StockItem, error)
}

// ReportStore persists daily reports.
type ReportStore interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// Service builds the daily stock digest and exports it.
type Service struct {
	stock   StockLister
	sheets  repo.Repository
	reports ReportStore
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. sheets and reports may be nil.
func NewService(stock StockLister, sheets repo.Repository, reports ReportStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, sheets: sheets, reports: reports, logger: logger}
}

// BuildReport aggregates the listing into a DailyReport.
func BuildReport(items []models.StockItem, now time.Time) models.DailyReport {
	report := models.DailyReport{
		Date:      truncateDay(now),
		ItemCount: len(items),
		LowItems:  []string{},
		Forecast:  ledger.Forecast(items),
		CreatedAt: now.UTC(),
	}

	for _, entry := range report.Forecast {
		if entry.Low {
			report.LowCount++
			report.LowItems = append(report.LowItems, entry.Name)
		}
	}
	return report
}

// Digest renders a report as a short text message.
func Digest(report models.DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock %s: %d items", report.Date.Format(dateLayout), report.ItemCount)

	if report.LowCount == 0 {
		b.WriteString(", nothing low.")
	} else {
		fmt.Fprintf(&b, ", %d low: %s.", report.LowCount, strings.Join(report.LowItems, ", "))
	}

	for _, entry := range report.Forecast {
		fmt.Fprintf(&b, "\n%s: %s %s, batches left %s", entry.Name, formatAmount(entry.CurrentAmount), entry.Unit, formatDays(entry.DaysRemaining))
	}
	return b.String()
}

// GenerateDailyReport builds today's report, stores it and exports the stock
// snapshot. Storage and export failures are logged; only reading the stock
// listing can fail the call.
func (s *Service) GenerateDailyReport(ctx context.Context, now time.Time) (models.DailyReport, string, error) {
	items, err := s.stock.List(ctx)
	if err != nil {
		return models.DailyReport{}, "", fmt.Errorf("load stock listing: %w", err)
	}

	report := BuildReport(items, now)

	if s.reports != nil {
		if err := s.reports.SaveDailyReport(ctx, report); err != nil {
			s.logger.Error("failed to save daily report", zap.Error(err))
		}
	}

	if s.sheets != nil {
		if err := s.ExportSnapshot(ctx, report); err != nil {
			s.logger.Error("failed to export stock snapshot", zap.Error(err))
		}
	}

	return report, Digest(report), nil
}

// ExportSnapshot overwrites the Stock sheet and appends a line to Reports.
func (s *Service) ExportSnapshot(ctx context.Context, report models.DailyReport) error {
	if s.sheets == nil {
		return nil
	}

	rows := [][]interface{}{{"ID", "Name", "Amount", "Unit", "Low", "Batches left", "Updated"}}
	updated := report.CreatedAt.Format(time.RFC3339)
	for _, entry := range report.Forecast {
		rows = append(rows, []interface{}{entry.StockItemID, entry.Name, entry.CurrentAmount, entry.Unit, entry.Low, formatDays(entry.DaysRemaining), updated})
	}

	if err := s.sheets.ReplaceRange(ctx, stockSnapshotRng, rows); err != nil {
		return err
	}

	summary := []interface{}{report.Date.Format(dateLayout), report.ItemCount, report.LowCount, strings.Join(report.LowItems, ", ")}
	return s.sheets.WriteRow(ctx, reportsRange, summary)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatDays(days *int) string {
	if days == nil {
		return "N/A"
	}
	return strconv.Itoa(*days)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
