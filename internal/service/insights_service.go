package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartcfo/invoice-insights/internal/forecast"
	"github.com/smartcfo/invoice-insights/internal/fraud"
	"github.com/smartcfo/invoice-insights/internal/insights"
	"github.com/smartcfo/invoice-insights/internal/models"
)

// InvoiceSource supplies the raw invoice rows the analytics run over.
type InvoiceSource interface {
	ListAll() ([]models.InvoiceRecord, error)
	CountAll() (int, error)
}

// Summary bundles every derived table for one dataset snapshot.
type Summary struct {
	InvoiceCount int                    `json:"invoice_count"`
	Trends       []models.MonthlyTrend  `json:"trends"`
	TopVendors   []models.VendorRanking `json:"top_vendors"`
	Duplicates   []models.DuplicateFlag `json:"duplicates"`
	Anomalies    []models.AnomalyFlag   `json:"anomalies"`
}

// InsightsService loads invoice rows and runs the analytics core over
// them. Every method normalizes fresh from storage, so results always
// reflect the current dataset.
type InsightsService struct {
	source InvoiceSource
	engine *forecast.Engine
	logger *zap.Logger
}

// NewInsightsService creates a new insights service
func NewInsightsService(source InvoiceSource, engine *forecast.Engine, logger *zap.Logger) *InsightsService {
	return &InsightsService{
		source: source,
		engine: engine,
		logger: logger,
	}
}

func (s *InsightsService) load() ([]models.NormalizedRecord, error) {
	records, err := s.source.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	return insights.Normalize(records), nil
}

// ExpenseTrends returns monthly spend totals.
func (s *InsightsService) ExpenseTrends() ([]models.MonthlyTrend, error) {
	normalized, err := s.load()
	if err != nil {
		return nil, err
	}
	return insights.ExpenseTrends(normalized), nil
}

// TopVendors returns the n highest-spend vendors with count and last
// invoice date.
func (s *InsightsService) TopVendors(n int) ([]models.VendorRanking, error) {
	normalized, err := s.load()
	if err != nil {
		return nil, err
	}
	return insights.TopVendorsDetailed(normalized, n)
}

// DetectDuplicates returns suspected double submissions.
func (s *InsightsService) DetectDuplicates() ([]models.DuplicateFlag, error) {
	normalized, err := s.load()
	if err != nil {
		return nil, err
	}
	return fraud.DetectDuplicates(normalized), nil
}

// DetectAnomalies returns amount outliers beyond threshold standard
// deviations.
func (s *InsightsService) DetectAnomalies(threshold float64) ([]models.AnomalyFlag, error) {
	normalized, err := s.load()
	if err != nil {
		return nil, err
	}
	return fraud.DetectAmountAnomalies(normalized, threshold)
}

// Forecast projects monthly spend horizon months past the last observed
// month. Returns forecast.ErrInsufficientData when history is too thin.
func (s *InsightsService) Forecast(horizon int) ([]models.ForecastPoint, error) {
	trends, err := s.ExpenseTrends()
	if err != nil {
		return nil, err
	}
	return s.engine.Forecast(trends, horizon)
}

// Summarize computes trends, rankings, duplicates and anomalies over one
// normalized snapshot. The four detectors are independent pure
// transforms, so they run concurrently.
func (s *InsightsService) Summarize(ctx context.Context, topN int, threshold float64) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.source.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	normalized := insights.Normalize(records)

	summary := &Summary{InvoiceCount: len(records)}

	var g errgroup.Group

	g.Go(func() error {
		summary.Trends = insights.ExpenseTrends(normalized)
		return nil
	})

	g.Go(func() error {
		vendors, err := insights.TopVendorsDetailed(normalized, topN)
		if err != nil {
			return fmt.Errorf("vendor ranking: %w", err)
		}
		summary.TopVendors = vendors
		return nil
	})

	g.Go(func() error {
		summary.Duplicates = fraud.DetectDuplicates(normalized)
		return nil
	})

	g.Go(func() error {
		anomalies, err := fraud.DetectAmountAnomalies(normalized, threshold)
		if err != nil {
			return fmt.Errorf("anomaly detection: %w", err)
		}
		summary.Anomalies = anomalies
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("Computed insights summary",
		zap.Int("invoices", summary.InvoiceCount),
		zap.Int("months", len(summary.Trends)),
		zap.Int("duplicates", len(summary.Duplicates)),
		zap.Int("anomalies", len(summary.Anomalies)))

	return summary, nil
}
