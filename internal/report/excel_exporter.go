// Package report renders the derived analytics tables into an Excel
// workbook for the finance team. Tabular export only; charts belong to
// the dashboard layer.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/forecast"
	"github.com/smartcfo/invoice-insights/internal/models"
	"github.com/smartcfo/invoice-insights/internal/service"
)

// ExcelExporter writes spending analytics to .xlsx workbooks
type ExcelExporter struct {
	insights  *service.InsightsService
	topN      int
	threshold float64
	horizon   int
	logger    *zap.Logger
}

// NewExcelExporter creates a new Excel exporter using the given analytics
// defaults for every sheet
func NewExcelExporter(insights *service.InsightsService, topN int, threshold float64, horizon int, logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{
		insights:  insights,
		topN:      topN,
		threshold: threshold,
		horizon:   horizon,
		logger:    logger,
	}
}

// WriteSpendingReport renders one sheet per derived table and saves the
// workbook at path. A forecast that lacks history becomes an empty sheet
// rather than a failure.
func (e *ExcelExporter) WriteSpendingReport(path string) error {
	summary, err := e.insights.Summarize(context.Background(), e.topN, e.threshold)
	if err != nil {
		return fmt.Errorf("failed to compute summary for report: %w", err)
	}

	points, err := e.insights.Forecast(e.horizon)
	if err != nil && !errors.Is(err, forecast.ErrInsufficientData) {
		return fmt.Errorf("failed to compute forecast for report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := e.fillTrendsSheet(f, summary.Trends); err != nil {
		return err
	}
	if err := e.fillVendorsSheet(f, summary.TopVendors); err != nil {
		return err
	}
	if err := e.fillDuplicatesSheet(f, summary.Duplicates); err != nil {
		return err
	}
	if err := e.fillAnomaliesSheet(f, summary.Anomalies); err != nil {
		return err
	}
	if err := e.fillForecastSheet(f, points); err != nil {
		return err
	}

	// Drop the default sheet excelize creates
	f.DeleteSheet("Sheet1")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	e.logger.Info("Spending report written",
		zap.String("path", path),
		zap.Int("months", len(summary.Trends)),
		zap.Int("forecast_points", len(points)))
	return nil
}

func (e *ExcelExporter) fillTrendsSheet(f *excelize.File, trends []models.MonthlyTrend) error {
	const sheet = "Monthly Trends"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	setRow(f, sheet, 1, "Month", "Total Amount")
	for i, t := range trends {
		setRow(f, sheet, i+2, t.Month, t.TotalAmount)
	}
	return nil
}

func (e *ExcelExporter) fillVendorsSheet(f *excelize.File, vendors []models.VendorRanking) error {
	const sheet = "Top Vendors"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	setRow(f, sheet, 1, "Vendor", "Total Amount", "Invoices", "Last Invoice")
	for i, v := range vendors {
		setRow(f, sheet, i+2, v.Vendor, v.TotalAmount, v.InvoiceCount, v.LastInvoiceDate)
	}
	return nil
}

func (e *ExcelExporter) fillDuplicatesSheet(f *excelize.File, flags []models.DuplicateFlag) error {
	const sheet = "Duplicate Candidates"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	setRow(f, sheet, 1, "Group", "Reason", "Vendor", "Invoice No", "Date", "Amount")
	row := 2
	for groupIdx, flag := range flags {
		for _, member := range flag.Members {
			date := ""
			if member.HasDate {
				date = member.Date.Format("2006-01-02")
			}
			var amount interface{}
			if member.HasAmount {
				amount = member.Amount
			}
			setRow(f, sheet, row, groupIdx+1, flag.Reason, member.Vendor, member.InvoiceNo, date, amount)
			row++
		}
	}
	return nil
}

func (e *ExcelExporter) fillAnomaliesSheet(f *excelize.File, flags []models.AnomalyFlag) error {
	const sheet = "Amount Anomalies"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	setRow(f, sheet, 1, "Vendor", "Invoice No", "Amount", "Z-Score", "Baseline")
	for i, flag := range flags {
		setRow(f, sheet, i+2, flag.Record.Vendor, flag.Record.InvoiceNo, flag.Record.Amount, flag.Score, flag.Baseline)
	}
	return nil
}

func (e *ExcelExporter) fillForecastSheet(f *excelize.File, points []models.ForecastPoint) error {
	const sheet = "Forecast"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	setRow(f, sheet, 1, "Period", "Predicted", "Lower Bound", "Upper Bound")
	for i, p := range points {
		setRow(f, sheet, i+2, p.Period.Format("2006-01"), p.Predicted, p.LowerBound, p.UpperBound)
	}
	return nil
}

// setRow writes values left to right starting at column A of the given
// row, ignoring per-cell errors the way a best-effort template fill does
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, value)
	}
}
