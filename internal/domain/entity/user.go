package entity

import (
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// User is an actor in the role directory. Token drives the auth middleware;
// the role pool backs notification fan-out and the unassigned-slot guard
// fallback.
type User struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Role      workflow.Role `json:"role"`
	Token     string        `json:"-"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}
