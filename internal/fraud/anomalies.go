package fraud

import (
	"fmt"
	"math"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// DefaultAnomalyThreshold is the z-score cutoff used when the caller does
// not supply one.
const DefaultAnomalyThreshold = 2.0

// minVendorSample is how many amount-bearing invoices a vendor needs
// before its own distribution is trusted as a baseline. Below that the
// population baseline applies, so small vendors are not scored against a
// near-empty distribution.
const minVendorSample = 3

// sample accumulates enough of a distribution to score any member
// against the rest of it.
type sample struct {
	n     int
	sum   float64
	sumSq float64
}

func (s *sample) add(v float64) {
	s.n++
	s.sum += v
	s.sumSq += v * v
}

// scoreAgainstRest returns the z-score of v relative to the sample with
// v itself removed. ok is false when the remainder has fewer than two
// values or no spread.
func (s *sample) scoreAgainstRest(v float64) (score float64, ok bool) {
	if s.n < 3 {
		return 0, false
	}
	rest := float64(s.n - 1)
	mean := (s.sum - v) / rest
	variance := (s.sumSq-v*v)/rest - mean*mean
	if variance <= 0 {
		return 0, false
	}
	return (v - mean) / math.Sqrt(variance), true
}

// DetectAmountAnomalies flags records whose amount deviates from the
// baseline mean by more than threshold standard deviations, reporting
// the signed z-score so callers can re-rank by severity. Vendors with at
// least minVendorSample amount-bearing invoices are scored against their
// own distribution; everything else is scored against the whole
// population. Fewer than two distinct amounts overall means no usable
// spread and nothing is flagged, and a zero-spread baseline never flags
// regardless of value. threshold must be positive.
func DetectAmountAnomalies(records []models.NormalizedRecord, threshold float64) ([]models.AnomalyFlag, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("anomaly threshold must be positive, got %g", threshold)
	}

	population := &sample{}
	byVendor := make(map[string]*sample)
	distinct := make(map[float64]struct{})

	for _, rec := range records {
		if !rec.HasAmount {
			continue
		}
		population.add(rec.Amount)
		distinct[rec.Amount] = struct{}{}
		vs, ok := byVendor[rec.Vendor]
		if !ok {
			vs = &sample{}
			byVendor[rec.Vendor] = vs
		}
		vs.add(rec.Amount)
	}

	if len(distinct) < 2 {
		return []models.AnomalyFlag{}, nil
	}

	flags := make([]models.AnomalyFlag, 0)
	for _, rec := range records {
		if !rec.HasAmount {
			continue
		}

		baseline := models.BaselinePopulation
		base := population
		if vs := byVendor[rec.Vendor]; vs.n >= minVendorSample {
			baseline = models.BaselineVendor
			base = vs
		}

		score, ok := base.scoreAgainstRest(rec.Amount)
		if !ok || math.Abs(score) <= threshold {
			continue
		}

		flags = append(flags, models.AnomalyFlag{
			Record:   rec,
			Score:    score,
			Baseline: baseline,
		})
	}
	return flags, nil
}
