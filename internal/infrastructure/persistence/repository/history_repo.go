package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// HistoryRepository implements port.HistoryRepository using SQLite
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// Append inserts a new audit entry with the next per-case sequence number.
// Must run inside the transaction that commits the state change so the
// sequence stays gapless under concurrency.
func (r *HistoryRepository) Append(ctx context.Context, e *entity.HistoryEntry) error {
	exec := getExecutor(ctx, r.db)

	e.CreatedAt = time.Now()

	query := `
		INSERT INTO case_history (case_id, seq, status, comment, actor_id, actor_role, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM case_history WHERE case_id = ?), ?, ?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		e.CaseID, e.CaseID, e.Status.String(), e.Comment, e.ActorID, e.ActorRole.String(), e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append history", zap.Int64("case_id", e.CaseID), zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history id: %w", err)
	}
	e.ID = id

	row := exec.QueryRowContext(ctx, `SELECT seq FROM case_history WHERE id = ?`, id)
	if err := row.Scan(&e.Seq); err != nil {
		return fmt.Errorf("failed to read history seq: %w", err)
	}

	return nil
}

// GetByCaseID returns a case's full audit trail ordered by sequence
func (r *HistoryRepository) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.HistoryEntry, error) {
	exec := getExecutor(ctx, r.db)

	query := `
		SELECT id, case_id, seq, status, comment, actor_id, actor_role, created_at
		FROM case_history
		WHERE case_id = ?
		ORDER BY seq ASC
	`

	rows, err := exec.QueryContext(ctx, query, caseID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.Int64("case_id", caseID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		var status, role string
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Seq, &status, &e.Comment, &e.ActorID, &role, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Status = workflow.Status(status)
		e.ActorRole = workflow.Role(role)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
