package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

type fakeLister struct {
	items []models.StockItem
	err   error
}

func (f fakeLister) List(context.Context) ([]models.StockItem, error) {
	return f.items, f.err
}

type fakeSheets struct {
	appended [][]interface{}
	replaced map[string][][]interface{}
	err      error
}

func (f *fakeSheets) WriteRow(_ context.Context, _ string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, values)
	return nil
}

func (f *fakeSheets) ReplaceRange(_ context.Context, rng string, rows [][]interface{}) error {
	if f.err != nil {
		return f.err
	}
	if f.replaced == nil {
		f.replaced = map[string][][]interface{}{}
	}
	f.replaced[rng] = rows
	return nil
}

type fakeReports struct {
	saved []models.DailyReport
}

func (f *fakeReports) SaveDailyReport(_ context.Context, r models.DailyReport) error {
	f.saved = append(f.saved, r)
	return nil
}

var items = []models.StockItem{
	{ID: 1, Name: "Krmivo", CurrentAmount: 9, Unit: "kg", LowLimit: 10, BatchSize: 3},
	{ID: 2, Name: "Seno", CurrentAmount: 12.5, Unit: "balik", LowLimit: 5, BatchSize: 0},
}

var now = time.Date(2024, 5, 20, 20, 0, 0, 0, time.UTC)

func TestBuildReport(t *testing.T) {
	report := BuildReport(items, now)

	assert.Equal(t, 2, report.ItemCount)
	assert.Equal(t, 1, report.LowCount)
	assert.Equal(t, []string{"Krmivo"}, report.LowItems)
	require.Len(t, report.Forecast, 2)
	require.NotNil(t, report.Forecast[0].DaysRemaining)
	assert.Equal(t, 3, *report.Forecast[0].DaysRemaining)
	assert.Nil(t, report.Forecast[1].DaysRemaining)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), report.Date)
}

func TestDigest(t *testing.T) {
	digest := Digest(BuildReport(items, now))

	assert.Equal(t, "Stock 2024-05-20: 2 items, 1 low: Krmivo.\n"+
		"Krmivo: 9 kg, batches left 3\n"+
		"Seno: 12.5 balik, batches left N/A", digest)
}

func TestDigest_NothingLow(t *testing.T) {
	digest := Digest(BuildReport(nil, now))
	assert.Equal(t, "Stock 2024-05-20: 0 items, nothing low.", digest)
}

func TestGenerateDailyReport_StoresAndExports(t *testing.T) {
	sheets := &fakeSheets{}
	reports := &fakeReports{}
	svc := NewService(fakeLister{items: items}, sheets, reports, nil)

	report, digest, err := svc.GenerateDailyReport(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.LowCount)
	assert.Contains(t, digest, "Krmivo")
	require.Len(t, reports.saved, 1)

	rows := sheets.replaced[stockSnapshotRng]
	require.Len(t, rows, 3)
	assert.Equal(t, "Krmivo", rows[1][1])
	assert.Equal(t, true, rows[1][4])
	assert.Equal(t, "N/A", rows[2][5])
	require.Len(t, sheets.appended, 1)
	assert.Equal(t, "2024-05-20", sheets.appended[0][0])
}

func TestGenerateDailyReport_ExportFailureIsNotFatal(t *testing.T) {
	svc := NewService(fakeLister{items: items}, &fakeSheets{err: errors.New("quota")}, nil, nil)

	_, digest, err := svc.GenerateDailyReport(context.Background(), now)
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
}

func TestGenerateDailyReport_ListingFailure(t *testing.T) {
	svc := NewService(fakeLister{err: errors.New("db locked")}, nil, nil, nil)

	_, _, err := svc.GenerateDailyReport(context.Background(), now)
	assert.Error(t, err)
}

func TestExportSnapshot_LowFlagFollowsItemNotName(t *testing.T) {
	sheets := &fakeSheets{}
	svc := NewService(nil, sheets, nil, nil)
	dupes := []models.StockItem{
		{ID: 1, Name: "Seno", CurrentAmount: 1, Unit: "balik", LowLimit: 5, BatchSize: 1},
		{ID: 2, Name: "Seno", CurrentAmount: 9, Unit: "balik", LowLimit: 5, BatchSize: 1},
	}

	require.NoError(t, svc.ExportSnapshot(context.Background(), BuildReport(dupes, now)))

	rows := sheets.replaced[stockSnapshotRng]
	require.Len(t, rows, 3)
	assert.Equal(t, int64(1), rows[1][0])
	assert.Equal(t, true, rows[1][4])
	assert.Equal(t, int64(2), rows[2][0])
	assert.Equal(t, false, rows[2][4])
}
