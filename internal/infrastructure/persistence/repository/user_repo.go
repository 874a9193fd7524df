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

// UserRepository implements port.UserRepository using SQLite
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, name, role, token, active, created_at`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	exec := getExecutor(ctx, r.db)

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, name, role, token, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := exec.ExecContext(ctx, query,
		u.ID, u.Name, u.Role.String(), u.Token, u.Active, u.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("user_id", u.ID), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user. Returns (nil, nil) when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, userColumns)
	return r.getOne(ctx, exec, query, id)
}

// GetByToken retrieves an active user by auth token
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*entity.User, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE token = ? AND active = 1`, userColumns)
	return r.getOne(ctx, exec, query, token)
}

// ListByRole returns every active user holding the role
func (r *UserRepository) ListByRole(ctx context.Context, role workflow.Role) ([]*entity.User, error) {
	exec := getExecutor(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = ? AND active = 1 ORDER BY id`, userColumns)

	rows, err := exec.QueryContext(ctx, query, role.String())
	if err != nil {
		r.logger.Error("Failed to list users", zap.String("role", role.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, exec executor, query string, arg interface{}) (*entity.User, error) {
	u, err := scanUser(exec.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	var role string

	if err := row.Scan(&u.ID, &u.Name, &role, &u.Token, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = workflow.Role(role)

	return &u, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
