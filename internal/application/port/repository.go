package port

import (
	"context"

	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// CaseFilter narrows a case listing
type CaseFilter struct {
	// Statuses restricts to a set of statuses when non-empty
	Statuses []workflow.Status

	// AssignedTo matches any of the three assignment slots
	AssignedTo string

	// Search is a case-insensitive substring match over client name,
	// client phone and brand name
	Search string

	Limit  int
	Offset int
}

// CaseRepository defines persistence operations for Case.
// Save is a compare-and-swap on the case's version: a stale save returns
// workflow.ErrConflict and applies nothing.
type CaseRepository interface {
	Create(ctx context.Context, c *entity.Case) error
	GetByID(ctx context.Context, id int64) (*entity.Case, error)
	List(ctx context.Context, f CaseFilter) ([]*entity.Case, error)
	Save(ctx context.Context, c *entity.Case) error
	Delete(ctx context.Context, id int64) error
	ReplaceClasses(ctx context.Context, caseID int64, classes []int) error
}

// DocumentRepository defines persistence operations for Document
type DocumentRepository interface {
	Create(ctx context.Context, d *entity.Document) error
	GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Document, error)
	DeleteBundle(ctx context.Context, caseID int64, bundle entity.DocumentBundle) error
}

// HistoryRepository defines persistence operations for the append-only audit
// trail. Append assigns the next per-case sequence number inside the caller's
// transaction; entries are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, e *entity.HistoryEntry) error
	GetByCaseID(ctx context.Context, caseID int64) ([]*entity.HistoryEntry, error)
}

// InvoiceRepository defines persistence operations for Invoice
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id int64) (*entity.Invoice, error)
	GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Invoice, error)
	Update(ctx context.Context, inv *entity.Invoice) error
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id int64, userID string) error
}

// UserRepository defines persistence operations for the actor directory
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByToken(ctx context.Context, token string) (*entity.User, error)
	ListByRole(ctx context.Context, role workflow.Role) ([]*entity.User, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
