// Package insights derives spend analytics from extracted invoice records.
// Every function here is a pure transform over in-memory slices: no
// storage, no network, no shared state between calls.
package insights

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// dateLayouts are tried in order when parsing raw invoice dates. The
// extraction stage mostly emits ISO dates, but scanned US invoices come
// through as MM/DD/YYYY.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"2006-01-02T15:04:05Z07:00",
}

// Normalize coerces raw invoice records into typed records. Output
// cardinality always equals input cardinality: a record with an
// unparsable date or amount is kept with that field marked absent, so
// downstream consumers can still use whatever fields did parse.
// Normalize never fails and never mutates its input.
func Normalize(records []models.InvoiceRecord) []models.NormalizedRecord {
	normalized := make([]models.NormalizedRecord, 0, len(records))

	for _, rec := range records {
		nr := models.NormalizedRecord{
			Vendor:    strings.TrimSpace(rec.Vendor),
			InvoiceNo: strings.TrimSpace(rec.InvoiceNo),
			Currency:  strings.TrimSpace(rec.Currency),
		}

		if d, ok := parseDate(rec.InvoiceDate); ok {
			nr.Date = d
			nr.HasDate = true
		}
		if a, ok := parseAmount(rec.Amount); ok {
			nr.Amount = a
			nr.HasAmount = true
		}

		normalized = append(normalized, nr)
	}

	return normalized
}

// parseDate attempts each known layout against the trimmed raw value.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount coerces a raw amount string to a finite float. Currency
// symbols and thousands separators are stripped first since OCR output
// often keeps them. Negative amounts are valid (credit notes).
func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return r == '$' || r == '€' || r == '£' || r == '¥' || r == '￥' || r == ' '
	})
	if cleaned == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
