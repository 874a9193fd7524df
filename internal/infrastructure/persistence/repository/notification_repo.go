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

// NotificationRepository implements port.NotificationRepository using SQLite
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	exec := getExecutor(ctx, r.db)

	n.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications (target_role, target_user, case_id, type, title, message, link, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		n.TargetRole.String(), n.TargetUser, n.CaseID, string(n.Type),
		n.Title, n.Message, n.Link, n.Read, n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("user", n.TargetUser), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification id: %w", err)
	}
	n.ID = id

	return nil
}

// ListForUser returns the user's notifications, newest first
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	exec := getExecutor(ctx, r.db)

	query := `
		SELECT id, target_role, target_user, case_id, type, title, message, link, read, created_at
		FROM notifications
		WHERE target_user = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := exec.QueryContext(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("user", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var role, typ string
		if err := rows.Scan(&n.ID, &role, &n.TargetUser, &n.CaseID, &typ,
			&n.Title, &n.Message, &n.Link, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.TargetRole = workflow.Role(role)
		n.Type = workflow.NotificationType(typ)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkRead dismisses a notification, scoped to its owner
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID string) error {
	exec := getExecutor(ctx, r.db)

	result, err := exec.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND target_user = ?`, id, userID)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: notification %d", workflow.ErrNotFound, id)
	}

	return nil
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
