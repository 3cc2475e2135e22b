package insights

import (
	"fmt"
	"sort"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// DefaultTopVendors is the ranking size used when the caller does not ask
// for a specific limit.
const DefaultTopVendors = 5

// ExpenseTrends sums spend per calendar month. Records without a parsable
// date are skipped; records with a date but no amount contribute nothing,
// and a month whose records all lack amounts is omitted entirely. Output
// is sorted ascending by month key, so identical input always produces
// identical output regardless of record order.
func ExpenseTrends(records []models.NormalizedRecord) []models.MonthlyTrend {
	sums := make(map[string]float64)
	contributed := make(map[string]bool)

	for _, rec := range records {
		if !rec.HasDate {
			continue
		}
		month := rec.Date.Format("2006-01")
		if rec.HasAmount {
			sums[month] += rec.Amount
			contributed[month] = true
		}
	}

	trends := make([]models.MonthlyTrend, 0, len(sums))
	for month := range sums {
		if !contributed[month] {
			continue
		}
		trends = append(trends, models.MonthlyTrend{Month: month, TotalAmount: sums[month]})
	}

	sort.Slice(trends, func(i, j int) bool { return trends[i].Month < trends[j].Month })
	return trends
}

// vendorGroup accumulates one vendor's totals in encounter order.
type vendorGroup struct {
	ranking models.VendorRanking
	lastDay string
}

// TopVendors ranks vendors by total spend and returns at most n entries.
// Vendors are matched by exact string equality; two spellings of the same
// vendor rank separately. Records without a parsable amount are skipped.
// n must be >= 1.
func TopVendors(records []models.NormalizedRecord, n int) ([]models.VendorRanking, error) {
	groups, err := rankVendors(records, n)
	if err != nil {
		return nil, err
	}

	rankings := make([]models.VendorRanking, 0, len(groups))
	for _, g := range groups {
		rankings = append(rankings, models.VendorRanking{
			Vendor:      g.ranking.Vendor,
			TotalAmount: g.ranking.TotalAmount,
		})
	}
	return rankings, nil
}

// TopVendorsDetailed is TopVendors plus invoice count and most recent
// invoice date per vendor, for display surfaces that want the extra
// columns.
func TopVendorsDetailed(records []models.NormalizedRecord, n int) ([]models.VendorRanking, error) {
	groups, err := rankVendors(records, n)
	if err != nil {
		return nil, err
	}

	rankings := make([]models.VendorRanking, 0, len(groups))
	for _, g := range groups {
		r := g.ranking
		r.LastInvoiceDate = g.lastDay
		rankings = append(rankings, r)
	}
	return rankings, nil
}

func rankVendors(records []models.NormalizedRecord, n int) ([]vendorGroup, error) {
	if n < 1 {
		return nil, fmt.Errorf("top vendors limit must be >= 1, got %d", n)
	}

	byVendor := make(map[string]int)
	groups := make([]vendorGroup, 0)

	for _, rec := range records {
		if !rec.HasAmount {
			continue
		}
		idx, ok := byVendor[rec.Vendor]
		if !ok {
			idx = len(groups)
			byVendor[rec.Vendor] = idx
			groups = append(groups, vendorGroup{ranking: models.VendorRanking{Vendor: rec.Vendor}})
		}
		groups[idx].ranking.TotalAmount += rec.Amount
		groups[idx].ranking.InvoiceCount++
		if rec.HasDate {
			day := rec.Date.Format("2006-01-02")
			if day > groups[idx].lastDay {
				groups[idx].lastDay = day
			}
		}
	}

	// Stable sort keeps encounter order for equal totals.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].ranking.TotalAmount > groups[j].ranking.TotalAmount
	})

	if n < len(groups) {
		groups = groups[:n]
	}
	return groups, nil
}
