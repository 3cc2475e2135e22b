package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/forecast"
	"github.com/smartcfo/invoice-insights/internal/models"
	"github.com/smartcfo/invoice-insights/internal/service"
)

// InvoiceStore accepts extracted invoice records from the ingestion
// endpoint.
type InvoiceStore interface {
	Create(record *models.InvoiceRecord) error
}

// ReportWriter produces the spending workbook for download.
type ReportWriter interface {
	WriteSpendingReport(path string) error
}

// Defaults are the query-parameter fallbacks, sourced from config.
type Defaults struct {
	TopVendorsLimit  int
	AnomalyThreshold float64
	ForecastHorizon  int
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	insights  *service.InsightsService
	store     InvoiceStore
	reports   ReportWriter
	reportDir string
	defaults  Defaults
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	insights *service.InsightsService,
	store InvoiceStore,
	reports ReportWriter,
	reportDir string,
	defaults Defaults,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		insights:  insights,
		store:     store,
		reports:   reports,
		reportDir: reportDir,
		defaults:  defaults,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Health handles GET /health
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "invoice-insights",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// CreateInvoice handles POST /api/v1/invoices. The body is an
// already-extracted record; this service does not parse documents.
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var record models.InvoiceRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid invoice payload: " + err.Error()})
		return
	}
	record.ID = 0

	if err := h.store.Create(&record); err != nil {
		h.logger.Error("Failed to store invoice", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to store invoice"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: record})
}

// ExpenseTrends handles GET /api/v1/insights/expense-trends
func (h *Handlers) ExpenseTrends(c *gin.Context) {
	trends, err := h.insights.ExpenseTrends()
	if err != nil {
		h.internalError(c, "Failed to compute expense trends", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: trends})
}

// TopVendors handles GET /api/v1/insights/top-vendors?limit=N
func (h *Handlers) TopVendors(c *gin.Context) {
	limit, ok := h.intParam(c, "limit", h.defaults.TopVendorsLimit)
	if !ok {
		return
	}

	vendors, err := h.insights.TopVendors(limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vendors})
}

// Summary handles GET /api/v1/insights/summary?limit=N&threshold=T
func (h *Handlers) Summary(c *gin.Context) {
	limit, ok := h.intParam(c, "limit", h.defaults.TopVendorsLimit)
	if !ok {
		return
	}
	threshold, ok := h.floatParam(c, "threshold", h.defaults.AnomalyThreshold)
	if !ok {
		return
	}

	summary, err := h.insights.Summarize(c.Request.Context(), limit, threshold)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: summary})
}

// DetectDuplicates handles GET /api/v1/fraud/duplicates
func (h *Handlers) DetectDuplicates(c *gin.Context) {
	flags, err := h.insights.DetectDuplicates()
	if err != nil {
		h.internalError(c, "Failed to detect duplicates", err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: flags})
}

// DetectAnomalies handles GET /api/v1/fraud/anomalies?threshold=T
func (h *Handlers) DetectAnomalies(c *gin.Context) {
	threshold, ok := h.floatParam(c, "threshold", h.defaults.AnomalyThreshold)
	if !ok {
		return
	}

	flags, err := h.insights.DetectAnomalies(threshold)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: flags})
}

// Forecast handles GET /api/v1/forecast?periods=N. Too little history is
// a message, not an error status.
func (h *Handlers) Forecast(c *gin.Context) {
	periods, ok := h.intParam(c, "periods", h.defaults.ForecastHorizon)
	if !ok {
		return
	}

	points, err := h.insights.Forecast(periods)
	if errors.Is(err, forecast.ErrInsufficientData) {
		c.JSON(http.StatusOK, Response{
			Success: true,
			Message: "Need at least 2 months with valid dates and amounts for forecasting.",
			Data:    []models.ForecastPoint{},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: points})
}

// SpendingReport handles GET /api/v1/reports/spending, returning the
// workbook as a download.
func (h *Handlers) SpendingReport(c *gin.Context) {
	filename := "spending-report-" + time.Now().Format("20060102-150405") + ".xlsx"
	path := filepath.Join(h.reportDir, filename)

	if err := h.reports.WriteSpendingReport(path); err != nil {
		h.internalError(c, "Failed to generate spending report", err)
		return
	}

	c.FileAttachment(path, filename)
}

func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: msg})
}

func (h *Handlers) intParam(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid " + name + " parameter"})
		return 0, false
	}
	return v, true
}

func (h *Handlers) floatParam(c *gin.Context, name string, fallback float64) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid " + name + " parameter"})
		return 0, false
	}
	return v, true
}
