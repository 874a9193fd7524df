package entity

import (
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// HistoryEntry is one immutable record in a case's audit trail, created
// exactly once per committed transition and never edited. Entries are
// totally ordered by Seq, which the store assigns under the same
// transaction that commits the status change.
type HistoryEntry struct {
	ID        int64           `json:"id"`
	CaseID    int64           `json:"case_id"`
	Seq       int64           `json:"seq"`
	Status    workflow.Status `json:"status"`
	Comment   string          `json:"comment,omitempty"`
	ActorID   string          `json:"actor_id"`
	ActorRole workflow.Role   `json:"actor_role"`
	CreatedAt time.Time       `json:"created_at"`
}
