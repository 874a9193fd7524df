package entity

import (
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Notification is a fire-and-forget message produced after a committed
// transition. A failure to deliver never rolls back the transition.
type Notification struct {
	ID         int64                     `json:"id"`
	TargetRole workflow.Role             `json:"target_role,omitempty"`
	TargetUser string                    `json:"target_user"`
	CaseID     int64                     `json:"case_id"`
	Type       workflow.NotificationType `json:"type"`
	Title      string                    `json:"title"`
	Message    string                    `json:"message"`
	Link       string                    `json:"link"`
	Read       bool                      `json:"read"`
	CreatedAt  time.Time                 `json:"created_at"`
}
