// Package fraud flags invoice records that look like double submissions
// or amount outliers. Detectors only surface candidates for manual
// review; they never merge or drop records themselves.
package fraud

import (
	"fmt"
	"strings"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// UnknownVendor is the bucket for records whose vendor field is missing,
// so duplicates among unidentified vendors still surface.
const UnknownVendor = "Unknown Vendor"

// sentinelInvoiceNo reports whether an invoice number is a placeholder
// the extraction stage emits when it could not read one.
func sentinelInvoiceNo(no string) bool {
	switch strings.ToLower(strings.TrimSpace(no)) {
	case "", "unknown", "n/a", "na", "none":
		return true
	}
	return false
}

// DetectDuplicates groups records that plausibly represent the same
// invoice submitted more than once. Records with a usable invoice number
// group on (vendor, invoice_no); records with a placeholder number fall
// back to (vendor, amount, day), since re-scanned invoices often lose
// the number but keep amount and date. Groups of two or more become one
// flag each, in first-encounter order.
func DetectDuplicates(records []models.NormalizedRecord) []models.DuplicateFlag {
	groups := make(map[string][]models.NormalizedRecord)
	reasons := make(map[string]string)
	order := make([]string, 0)

	for _, rec := range records {
		vendor := rec.Vendor
		if vendor == "" {
			vendor = UnknownVendor
		}

		var key, reason string
		switch {
		case !sentinelInvoiceNo(rec.InvoiceNo):
			key = fmt.Sprintf("%s|no=%s", vendor, rec.InvoiceNo)
			reason = models.DuplicateReasonInvoiceNo
		case rec.HasAmount && rec.HasDate:
			key = fmt.Sprintf("%s|amt=%.2f|day=%s", vendor, rec.Amount, rec.Date.Format("2006-01-02"))
			reason = models.DuplicateReasonSameDay
		default:
			// No invoice number and not enough fields to match on.
			continue
		}

		if _, seen := groups[key]; !seen {
			order = append(order, key)
			reasons[key] = reason
		}
		groups[key] = append(groups[key], rec)
	}

	flags := make([]models.DuplicateFlag, 0)
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		flags = append(flags, models.DuplicateFlag{
			Key:     key,
			Reason:  reasons[key],
			Members: members,
		})
	}
	return flags
}
