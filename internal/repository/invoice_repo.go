// Package repository is the persistence collaborator: it supplies raw
// invoice rows to the analytics core and stores what the ingestion
// endpoint receives. The core itself never touches the database.
package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/smartcfo/invoice-insights/internal/models"
)

// InvoiceRepository handles invoice row storage
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts one extracted invoice record and fills in its ID
func (r *InvoiceRepository) Create(record *models.InvoiceRecord) error {
	query := `
		INSERT INTO invoices (vendor, invoice_no, invoice_date, amount, currency)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		record.Vendor,
		record.InvoiceNo,
		record.InvoiceDate,
		record.Amount,
		record.Currency,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	record.ID = id

	r.logger.Debug("Invoice created",
		zap.Int64("id", id),
		zap.String("vendor", record.Vendor),
		zap.String("invoice_no", record.InvoiceNo))
	return nil
}

// ListAll returns every stored invoice record in insertion order
func (r *InvoiceRepository) ListAll() ([]models.InvoiceRecord, error) {
	query := `
		SELECT id, vendor, invoice_no, invoice_date, amount, currency
		FROM invoices
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var records []models.InvoiceRecord
	for rows.Next() {
		var rec models.InvoiceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Vendor,
			&rec.InvoiceNo,
			&rec.InvoiceDate,
			&rec.Amount,
			&rec.Currency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice rows: %w", err)
	}

	return records, nil
}

// CountAll returns the number of stored invoices
func (r *InvoiceRepository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}
