package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository using SQLite
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

const invoiceColumns = `id, case_id, amount_cents, comment, bill_ref, receipt_ref,
	status, created_by, uploaded_by, approved_by, created_at, paid_at`

// Create inserts a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	exec := getExecutor(ctx, r.db)

	query := `
		INSERT INTO invoices (case_id, amount_cents, comment, bill_ref, receipt_ref,
			status, created_by, uploaded_by, approved_by, created_at, paid_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		inv.CaseID, inv.AmountCents, inv.Comment, inv.BillRef, inv.ReceiptRef,
		string(inv.Status), inv.CreatedBy, inv.UploadedBy, inv.ApprovedBy, inv.CreatedAt, inv.PaidAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Int64("case_id", inv.CaseID), zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get invoice id: %w", err)
	}
	inv.ID = id

	return nil
}

// GetByID retrieves an invoice. Returns (nil, nil) when it does not exist.
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = ?`, invoiceColumns)

	inv, err := scanInvoice(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get invoice", zap.Int64("invoice_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return inv, nil
}

// GetByCaseID returns a case's invoices in issue order
func (r *InvoiceRepository) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Invoice, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE case_id = ? ORDER BY id ASC`, invoiceColumns)

	rows, err := exec.QueryContext(ctx, query, caseID)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

// Update persists the invoice's mutable fields
func (r *InvoiceRepository) Update(ctx context.Context, inv *entity.Invoice) error {
	exec := getExecutor(ctx, r.db)

	query := `
		UPDATE invoices
		SET receipt_ref = ?, status = ?, uploaded_by = ?, approved_by = ?, paid_at = ?
		WHERE id = ?
	`

	result, err := exec.ExecContext(ctx, query,
		inv.ReceiptRef, string(inv.Status), inv.UploadedBy, inv.ApprovedBy, inv.PaidAt, inv.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update invoice", zap.Int64("invoice_id", inv.ID), zap.Error(err))
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: invoice %d", workflow.ErrNotFound, inv.ID)
	}

	return nil
}

func scanInvoice(row rowScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	var paidAt sql.NullTime

	err := row.Scan(
		&inv.ID, &inv.CaseID, &inv.AmountCents, &inv.Comment, &inv.BillRef, &inv.ReceiptRef,
		&status, &inv.CreatedBy, &inv.UploadedBy, &inv.ApprovedBy, &inv.CreatedAt, &paidAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Status = workflow.InvoiceStatus(status)
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}

	return &inv, nil
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
