package fraud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcfo/invoice-insights/internal/models"
)

func amountRecord(vendor string, amount float64) models.NormalizedRecord {
	return models.NormalizedRecord{Vendor: vendor, Amount: amount, HasAmount: true}
}

func TestDetectAmountAnomaliesFlagsOutlier(t *testing.T) {
	records := []models.NormalizedRecord{
		amountRecord("A", 100),
		amountRecord("B", 102),
		amountRecord("C", 98),
		amountRecord("D", 101),
		amountRecord("E", 5000),
	}

	flags, err := DetectAmountAnomalies(records, DefaultAnomalyThreshold)
	require.NoError(t, err)
	require.Len(t, flags, 1)

	assert.Equal(t, "E", flags[0].Record.Vendor)
	assert.InDelta(t, 5000, flags[0].Record.Amount, 1e-9)
	assert.Greater(t, flags[0].Score, DefaultAnomalyThreshold)
	assert.Equal(t, models.BaselinePopulation, flags[0].Baseline)
}

func TestDetectAmountAnomaliesIdenticalAmountsNeverFlag(t *testing.T) {
	records := []models.NormalizedRecord{
		amountRecord("A", 250),
		amountRecord("B", 250),
		amountRecord("C", 250),
		amountRecord("D", 250),
	}

	for _, threshold := range []float64{0.1, 1, 2, 10} {
		flags, err := DetectAmountAnomalies(records, threshold)
		require.NoError(t, err)
		assert.Empty(t, flags)
	}
}

func TestDetectAmountAnomaliesNegativeScoreForLowOutlier(t *testing.T) {
	records := []models.NormalizedRecord{
		amountRecord("A", 1000),
		amountRecord("B", 1010),
		amountRecord("C", 990),
		amountRecord("D", 1005),
		amountRecord("E", -5000),
	}

	flags, err := DetectAmountAnomalies(records, 2.0)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.InDelta(t, -5000, flags[0].Record.Amount, 1e-9)
	assert.Negative(t, flags[0].Score)
}

func TestDetectAmountAnomaliesVendorBaseline(t *testing.T) {
	// Acme has enough history to be scored against its own invoices
	records := []models.NormalizedRecord{
		amountRecord("Acme", 4900),
		amountRecord("Acme", 5100),
		amountRecord("Acme", 5000),
		amountRecord("Acme", 4950),
		amountRecord("Acme", 25000),
	}

	flags, err := DetectAmountAnomalies(records, 2.0)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.InDelta(t, 25000, flags[0].Record.Amount, 1e-9)
	assert.Equal(t, models.BaselineVendor, flags[0].Baseline)
}

func TestDetectAmountAnomaliesSmallVendorFallsBackToPopulation(t *testing.T) {
	records := []models.NormalizedRecord{
		amountRecord("A", 100),
		amountRecord("B", 105),
		amountRecord("C", 95),
		amountRecord("D", 98),
		amountRecord("Newcomer", 9000), // single invoice, no vendor baseline
	}

	flags, err := DetectAmountAnomalies(records, 2.0)
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "Newcomer", flags[0].Record.Vendor)
	assert.Equal(t, models.BaselinePopulation, flags[0].Baseline)
}

func TestDetectAmountAnomaliesMinimumSample(t *testing.T) {
	// Fewer than two distinct amounts gives no usable spread
	flags, err := DetectAmountAnomalies([]models.NormalizedRecord{
		amountRecord("A", 100),
	}, 2.0)
	require.NoError(t, err)
	assert.Empty(t, flags)

	flags, err = DetectAmountAnomalies(nil, 2.0)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestDetectAmountAnomaliesSkipsAmountlessRecords(t *testing.T) {
	records := []models.NormalizedRecord{
		{Vendor: "A"},
		{Vendor: "B"},
		amountRecord("C", 100),
		amountRecord("D", 200),
	}

	flags, err := DetectAmountAnomalies(records, 2.0)
	require.NoError(t, err)
	assert.Empty(t, flags)
}

func TestDetectAmountAnomaliesRejectsBadThreshold(t *testing.T) {
	for _, threshold := range []float64{0, -1, -2.5} {
		_, err := DetectAmountAnomalies(nil, threshold)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	}
}
