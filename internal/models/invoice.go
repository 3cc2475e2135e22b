package models

import "time"

// InvoiceRecord is one vendor billing event as produced by the upstream
// extraction stage. Date and amount arrive as raw strings because the
// extractor cannot guarantee either field parsed cleanly; this package
// treats them as read-only input.
type InvoiceRecord struct {
	ID          int64  `json:"id,omitempty"`
	Vendor      string `json:"vendor"`
	InvoiceNo   string `json:"invoice_no"`
	InvoiceDate string `json:"invoice_date"` // YYYY-MM-DD or MM/DD/YYYY, may be empty
	Amount      string `json:"amount"`       // decimal string, may be empty
	Currency    string `json:"currency"`
}

// NormalizedRecord is the typed view of an InvoiceRecord. A zero Date with
// HasDate=false means the raw date was absent or unparsable; same for
// Amount/HasAmount. Consumers decide which fields they need and skip
// records missing them.
type NormalizedRecord struct {
	Vendor    string    `json:"vendor"`
	InvoiceNo string    `json:"invoice_no"`
	Date      time.Time `json:"date,omitempty"`
	HasDate   bool      `json:"has_date"`
	Amount    float64   `json:"amount"`
	HasAmount bool      `json:"has_amount"`
	Currency  string    `json:"currency,omitempty"`
}

// MonthlyTrend is total spend for one calendar month, keyed "YYYY-MM".
type MonthlyTrend struct {
	Month       string  `json:"month"`
	TotalAmount float64 `json:"total_amount"`
}

// VendorRanking is one vendor's aggregate position in a top-N ranking.
// InvoiceCount and LastInvoiceDate are only populated by the detailed
// variant; LastInvoiceDate stays empty when no invoice for the vendor
// carried a parsable date.
type VendorRanking struct {
	Vendor          string  `json:"vendor"`
	TotalAmount     float64 `json:"total_amount"`
	InvoiceCount    int     `json:"invoice_count,omitempty"`
	LastInvoiceDate string  `json:"last_invoice_date,omitempty"`
}

// DuplicateFlag groups two or more records judged to be the same
// real-world invoice. Members are carried in full so reviewers can
// compare them; nothing is merged or deleted automatically.
type DuplicateFlag struct {
	Key     string             `json:"key"`
	Reason  string             `json:"reason"`
	Members []NormalizedRecord `json:"members"`
}

// Duplicate flag reasons.
const (
	DuplicateReasonInvoiceNo = "same_vendor_invoice_no"
	DuplicateReasonSameDay   = "same_vendor_amount_day"
)

// AnomalyFlag marks a record whose amount sits outside the expected
// distribution. Score is the deviation from the baseline mean in
// standard-deviation units (signed; negative for unusually low amounts).
// Baseline names which distribution produced the score.
type AnomalyFlag struct {
	Record   NormalizedRecord `json:"record"`
	Score    float64          `json:"score"`
	Baseline string           `json:"baseline"`
}

// Anomaly baselines.
const (
	BaselinePopulation = "population"
	BaselineVendor     = "vendor"
)

// ForecastPoint is one projected future month with a symmetric
// uncertainty band.
type ForecastPoint struct {
	Period     time.Time `json:"period"`
	Predicted  float64   `json:"predicted"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}
