package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
	"go.uber.org/zap"
)

// CaseRepository implements port.CaseRepository using SQLite
type CaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCaseRepository creates a new CaseRepository
func NewCaseRepository(db *sql.DB, logger *zap.Logger) *CaseRepository {
	return &CaseRepository{db: db, logger: logger}
}

const caseColumns = `id, client_name, client_phone, client_email, brand_name, person_type,
	status, assigned_operator, assigned_checker, assigned_lawyer,
	archived, archived_at, version, created_at, updated_at`

// Create inserts a new case at version 1
func (r *CaseRepository) Create(ctx context.Context, c *entity.Case) error {
	exec := getExecutor(ctx, r.db)

	now := time.Now()
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO cases (client_name, client_phone, client_email, brand_name, person_type,
			status, assigned_operator, assigned_checker, assigned_lawyer,
			archived, archived_at, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		c.ClientName, c.ClientPhone, c.ClientEmail, c.BrandName, string(c.PersonType),
		c.Status.String(), c.AssignedOperator, c.AssignedChecker, c.AssignedLawyer,
		c.Archived, c.ArchivedAt, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create case", zap.Error(err))
		return fmt.Errorf("failed to create case: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get case id: %w", err)
	}
	c.ID = id

	return nil
}

// GetByID retrieves a case with its classes. Returns (nil, nil) when the
// case does not exist.
func (r *CaseRepository) GetByID(ctx context.Context, id int64) (*entity.Case, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM cases WHERE id = ?`, caseColumns)

	c, err := scanCase(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get case", zap.Int64("case_id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	classes, err := r.loadClasses(ctx, exec, id)
	if err != nil {
		return nil, err
	}
	c.Classes = classes

	return c, nil
}

// List retrieves cases matching the filter, newest first
func (r *CaseRepository) List(ctx context.Context, f port.CaseFilter) ([]*entity.Case, error) {
	exec := getExecutor(ctx, r.db)

	var conds []string
	var args []interface{}

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, s.String())
		}
		conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if f.AssignedTo != "" {
		conds = append(conds, "(assigned_operator = ? OR assigned_checker = ? OR assigned_lawyer = ?)")
		args = append(args, f.AssignedTo, f.AssignedTo, f.AssignedTo)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, "(LOWER(client_name) LIKE ? OR LOWER(client_phone) LIKE ? OR LOWER(brand_name) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := fmt.Sprintf(`SELECT %s FROM cases`, caseColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list cases", zap.Error(err))
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*entity.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cases: %w", err)
	}

	for _, c := range cases {
		classes, err := r.loadClasses(ctx, exec, c.ID)
		if err != nil {
			return nil, err
		}
		c.Classes = classes
	}

	return cases, nil
}

// Save updates a case guarded by its version. A stale version matches zero
// rows and reports workflow.ErrConflict; on success the in-memory version is
// bumped to the stored one.
func (r *CaseRepository) Save(ctx context.Context, c *entity.Case) error {
	exec := getExecutor(ctx, r.db)

	c.UpdatedAt = time.Now()

	query := `
		UPDATE cases
		SET client_name = ?, client_phone = ?, client_email = ?, brand_name = ?, person_type = ?,
			status = ?, assigned_operator = ?, assigned_checker = ?, assigned_lawyer = ?,
			archived = ?, archived_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := exec.ExecContext(ctx, query,
		c.ClientName, c.ClientPhone, c.ClientEmail, c.BrandName, string(c.PersonType),
		c.Status.String(), c.AssignedOperator, c.AssignedChecker, c.AssignedLawyer,
		c.Archived, c.ArchivedAt, c.UpdatedAt,
		c.ID, c.Version,
	)
	if err != nil {
		r.logger.Error("Failed to save case", zap.Int64("case_id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to save case: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: case %d was modified concurrently", workflow.ErrConflict, c.ID)
	}

	c.Version++
	return nil
}

// Delete removes a case; child rows go with it via foreign keys
func (r *CaseRepository) Delete(ctx context.Context, id int64) error {
	exec := getExecutor(ctx, r.db)

	result, err := exec.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete case", zap.Int64("case_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete case: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: case %d", workflow.ErrNotFound, id)
	}

	return nil
}

// ReplaceClasses swaps the case's Nice classification set
func (r *CaseRepository) ReplaceClasses(ctx context.Context, caseID int64, classes []int) error {
	exec := getExecutor(ctx, r.db)

	if _, err := exec.ExecContext(ctx, `DELETE FROM case_classes WHERE case_id = ?`, caseID); err != nil {
		return fmt.Errorf("failed to clear classes: %w", err)
	}

	for _, cl := range classes {
		if _, err := exec.ExecContext(ctx,
			`INSERT INTO case_classes (case_id, class) VALUES (?, ?)`, caseID, cl); err != nil {
			return fmt.Errorf("failed to insert class: %w", err)
		}
	}

	return nil
}

func (r *CaseRepository) loadClasses(ctx context.Context, exec executor, caseID int64) ([]int, error) {
	rows, err := exec.QueryContext(ctx,
		`SELECT class FROM case_classes WHERE case_id = ? ORDER BY class`, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load classes: %w", err)
	}
	defer rows.Close()

	var classes []int
	for rows.Next() {
		var cl int
		if err := rows.Scan(&cl); err != nil {
			return nil, fmt.Errorf("failed to scan class: %w", err)
		}
		classes = append(classes, cl)
	}
	return classes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(row rowScanner) (*entity.Case, error) {
	var c entity.Case
	var personType, status string
	var archivedAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.ClientName, &c.ClientPhone, &c.ClientEmail, &c.BrandName, &personType,
		&status, &c.AssignedOperator, &c.AssignedChecker, &c.AssignedLawyer,
		&c.Archived, &archivedAt, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.PersonType = workflow.PersonType(personType)
	c.Status = workflow.Status(status)
	if archivedAt.Valid {
		c.ArchivedAt = &archivedAt.Time
	}

	return &c, nil
}

// Verify interface compliance
var _ port.CaseRepository = (*CaseRepository)(nil)
