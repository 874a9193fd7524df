package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"go.uber.org/zap"
)

// DocumentRepository implements port.DocumentRepository using SQLite
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

// Create inserts a new document record
func (r *DocumentRepository) Create(ctx context.Context, d *entity.Document) error {
	exec := getExecutor(ctx, r.db)

	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO documents (case_id, kind, bundle, file_ref, file_name, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		d.CaseID, string(d.Kind), string(d.Bundle), d.FileRef, d.FileName, d.UploadedBy, d.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", zap.Int64("case_id", d.CaseID), zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get document id: %w", err)
	}
	d.ID = id

	return nil
}

// GetByCaseID returns a case's documents in upload order
func (r *DocumentRepository) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Document, error) {
	exec := getExecutor(ctx, r.db)

	query := `
		SELECT id, case_id, kind, bundle, file_ref, file_name, uploaded_by, uploaded_at
		FROM documents
		WHERE case_id = ?
		ORDER BY id ASC
	`

	rows, err := exec.QueryContext(ctx, query, caseID)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		var d entity.Document
		var kind, bundle string
		if err := rows.Scan(&d.ID, &d.CaseID, &kind, &bundle, &d.FileRef, &d.FileName, &d.UploadedBy, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Kind = entity.DocumentKind(kind)
		d.Bundle = entity.DocumentBundle(bundle)
		docs = append(docs, &d)
	}

	return docs, rows.Err()
}

// DeleteBundle removes every document of the given bundle from a case
func (r *DocumentRepository) DeleteBundle(ctx context.Context, caseID int64, bundle entity.DocumentBundle) error {
	exec := getExecutor(ctx, r.db)

	_, err := exec.ExecContext(ctx,
		`DELETE FROM documents WHERE case_id = ? AND bundle = ?`, caseID, string(bundle))
	if err != nil {
		r.logger.Error("Failed to delete bundle", zap.Int64("case_id", caseID), zap.Error(err))
		return fmt.Errorf("failed to delete bundle: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.DocumentRepository = (*DocumentRepository)(nil)
