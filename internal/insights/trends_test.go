package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcfo/invoice-insights/internal/models"
)

func record(vendor, date, amount string) models.InvoiceRecord {
	return models.InvoiceRecord{Vendor: vendor, InvoiceDate: date, Amount: amount}
}

func TestExpenseTrendsGroupsByMonth(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-15", "100"),
		record("A", "2025-02-15", "150"),
		record("B", "2025-02-20", "50"),
	})

	trends := ExpenseTrends(normalized)
	require.Len(t, trends, 2)
	assert.Equal(t, "2025-01", trends[0].Month)
	assert.InDelta(t, 100, trends[0].TotalAmount, 1e-9)
	assert.Equal(t, "2025-02", trends[1].Month)
	assert.InDelta(t, 200, trends[1].TotalAmount, 1e-9)
}

func TestExpenseTrendsTotalMatchesInput(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-03-01", "10.5"),
		record("B", "2025-03-09", "-2.5"),
		record("C", "2025-05-20", "7"),
		record("D", "bad date", "999"), // no date, excluded from trends
		record("E", "2025-05-21", ""),  // no amount, contributes nothing
	})

	trends := ExpenseTrends(normalized)

	var trendTotal float64
	for _, tr := range trends {
		trendTotal += tr.TotalAmount
	}

	var expected float64
	for _, rec := range normalized {
		if rec.HasDate && rec.HasAmount {
			expected += rec.Amount
		}
	}
	assert.InDelta(t, expected, trendTotal, 1e-9)
}

func TestExpenseTrendsMonthsStrictlyIncreasing(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-06-01", "1"),
		record("A", "2024-12-31", "2"),
		record("A", "2025-01-15", "3"),
		record("A", "2025-06-20", "4"),
	})

	trends := ExpenseTrends(normalized)
	require.Len(t, trends, 3)
	for i := 1; i < len(trends); i++ {
		assert.Less(t, trends[i-1].Month, trends[i].Month)
	}
}

func TestExpenseTrendsOmitsMonthWithoutAmounts(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-15", "100"),
		record("B", "2025-02-15", ""), // date only, month must not appear
	})

	trends := ExpenseTrends(normalized)
	require.Len(t, trends, 1)
	assert.Equal(t, "2025-01", trends[0].Month)
}

func TestExpenseTrendsOrderIndependent(t *testing.T) {
	forward := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-15", "100"),
		record("B", "2025-02-20", "50"),
		record("A", "2025-02-15", "150"),
	})
	reversed := []models.NormalizedRecord{forward[2], forward[1], forward[0]}

	assert.Equal(t, ExpenseTrends(forward), ExpenseTrends(reversed))
}

func TestExpenseTrendsEmptyInput(t *testing.T) {
	assert.Empty(t, ExpenseTrends(nil))
	assert.Empty(t, ExpenseTrends(Normalize([]models.InvoiceRecord{
		record("A", "bad", "bad"),
	})))
}

func TestTopVendorsRanking(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-15", "100"),
		record("A", "2025-02-15", "150"),
		record("B", "2025-02-20", "50"),
	})

	vendors, err := TopVendors(normalized, 2)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "A", vendors[0].Vendor)
	assert.InDelta(t, 250, vendors[0].TotalAmount, 1e-9)
	assert.Equal(t, "B", vendors[1].Vendor)
	assert.InDelta(t, 50, vendors[1].TotalAmount, 1e-9)
}

func TestTopVendorsSortedDescending(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("low", "2025-01-01", "5"),
		record("high", "2025-01-02", "500"),
		record("mid", "2025-01-03", "50"),
	})

	vendors, err := TopVendors(normalized, 10)
	require.NoError(t, err)
	require.Len(t, vendors, 3)
	for i := 1; i < len(vendors); i++ {
		assert.GreaterOrEqual(t, vendors[i-1].TotalAmount, vendors[i].TotalAmount)
	}
}

func TestTopVendorsTiesKeepEncounterOrder(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("first", "2025-01-01", "100"),
		record("second", "2025-01-02", "100"),
	})

	vendors, err := TopVendors(normalized, 5)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "first", vendors[0].Vendor)
	assert.Equal(t, "second", vendors[1].Vendor)
}

func TestTopVendorsClampsToGroupCount(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("only", "2025-01-01", "10"),
	})

	vendors, err := TopVendors(normalized, 5)
	require.NoError(t, err)
	assert.Len(t, vendors, 1)
}

func TestTopVendorsCaseSensitiveGrouping(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("Acme", "2025-01-01", "10"),
		record("ACME", "2025-01-02", "10"),
	})

	vendors, err := TopVendors(normalized, 5)
	require.NoError(t, err)
	assert.Len(t, vendors, 2)
}

func TestTopVendorsSkipsAmountlessRecords(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-01", ""),
		record("B", "2025-01-02", "10"),
	})

	vendors, err := TopVendors(normalized, 5)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "B", vendors[0].Vendor)
}

func TestTopVendorsRejectsBadLimit(t *testing.T) {
	_, err := TopVendors(nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 1")

	_, err = TopVendors(nil, -3)
	require.Error(t, err)
}

func TestTopVendorsDetailedExtraColumns(t *testing.T) {
	normalized := Normalize([]models.InvoiceRecord{
		record("A", "2025-01-15", "100"),
		record("A", "2025-03-10", "150"),
		record("A", "bad date", "25"),
	})

	vendors, err := TopVendorsDetailed(normalized, 1)
	require.NoError(t, err)
	require.Len(t, vendors, 1)

	assert.Equal(t, "A", vendors[0].Vendor)
	assert.InDelta(t, 275, vendors[0].TotalAmount, 1e-9)
	assert.Equal(t, 3, vendors[0].InvoiceCount)
	assert.Equal(t, "2025-03-10", vendors[0].LastInvoiceDate)
}
