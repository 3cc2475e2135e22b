package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/forecast"
	"github.com/smartcfo/invoice-insights/internal/models"
)

// MockInvoiceSource implements InvoiceSource for testing
type MockInvoiceSource struct {
	records []models.InvoiceRecord
	err     error
}

func (m *MockInvoiceSource) ListAll() ([]models.InvoiceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

func (m *MockInvoiceSource) CountAll() (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.records), nil
}

func newTestService(records []models.InvoiceRecord) *InsightsService {
	logger := zap.NewNop()
	return NewInsightsService(
		&MockInvoiceSource{records: records},
		forecast.NewEngine(logger),
		logger,
	)
}

func sampleRecords() []models.InvoiceRecord {
	return []models.InvoiceRecord{
		{Vendor: "A", InvoiceNo: "INV-1", InvoiceDate: "2025-01-15", Amount: "100"},
		{Vendor: "A", InvoiceNo: "INV-2", InvoiceDate: "2025-02-15", Amount: "150"},
		{Vendor: "B", InvoiceNo: "INV-3", InvoiceDate: "2025-02-20", Amount: "50"},
	}
}

func TestInsightsServiceExpenseTrends(t *testing.T) {
	svc := newTestService(sampleRecords())

	trends, err := svc.ExpenseTrends()
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, "2025-01", trends[0].Month)
	assert.InDelta(t, 100, trends[0].TotalAmount, 1e-9)
	assert.Equal(t, "2025-02", trends[1].Month)
	assert.InDelta(t, 200, trends[1].TotalAmount, 1e-9)
}

func TestInsightsServiceTopVendors(t *testing.T) {
	svc := newTestService(sampleRecords())

	vendors, err := svc.TopVendors(2)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "A", vendors[0].Vendor)
	assert.InDelta(t, 250, vendors[0].TotalAmount, 1e-9)
	assert.Equal(t, 2, vendors[0].InvoiceCount)
	assert.Equal(t, "B", vendors[1].Vendor)
}

func TestInsightsServiceForecast(t *testing.T) {
	svc := newTestService(sampleRecords())

	points, err := svc.Forecast(6)
	require.NoError(t, err)
	assert.Len(t, points, 6)
}

func TestInsightsServiceForecastInsufficientData(t *testing.T) {
	svc := newTestService([]models.InvoiceRecord{
		{Vendor: "A", InvoiceNo: "INV-1", InvoiceDate: "2025-01-15", Amount: "100"},
	})

	_, err := svc.Forecast(6)
	assert.True(t, errors.Is(err, forecast.ErrInsufficientData))
}

func TestInsightsServiceSummarize(t *testing.T) {
	records := append(sampleRecords(),
		models.InvoiceRecord{Vendor: "A", InvoiceNo: "INV-1", InvoiceDate: "2025-03-01", Amount: "100"},
	)
	svc := newTestService(records)

	summary, err := svc.Summarize(context.Background(), 5, 2.0)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.InvoiceCount)
	assert.Len(t, summary.Trends, 3)
	assert.Len(t, summary.TopVendors, 2)
	require.Len(t, summary.Duplicates, 1)
	assert.Equal(t, models.DuplicateReasonInvoiceNo, summary.Duplicates[0].Reason)
	// B's 50 sits far below the rest of the population
	require.Len(t, summary.Anomalies, 1)
	assert.Equal(t, "B", summary.Anomalies[0].Record.Vendor)
}

func TestInsightsServiceSummarizeValidatesParams(t *testing.T) {
	svc := newTestService(sampleRecords())

	_, err := svc.Summarize(context.Background(), 0, 2.0)
	require.Error(t, err)

	_, err = svc.Summarize(context.Background(), 5, -1)
	require.Error(t, err)
}

func TestInsightsServicePropagatesSourceError(t *testing.T) {
	logger := zap.NewNop()
	svc := NewInsightsService(
		&MockInvoiceSource{err: errors.New("database gone")},
		forecast.NewEngine(logger),
		logger,
	)

	_, err := svc.ExpenseTrends()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load invoices")

	_, err = svc.Summarize(context.Background(), 5, 2.0)
	require.Error(t, err)
}

func TestInsightsServiceEmptyDataset(t *testing.T) {
	svc := newTestService(nil)

	trends, err := svc.ExpenseTrends()
	require.NoError(t, err)
	assert.Empty(t, trends)

	vendors, err := svc.TopVendors(5)
	require.NoError(t, err)
	assert.Empty(t, vendors)

	dupes, err := svc.DetectDuplicates()
	require.NoError(t, err)
	assert.Empty(t, dupes)

	anomalies, err := svc.DetectAnomalies(2.0)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
}
