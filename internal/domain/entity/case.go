package entity

import (
	"fmt"
	"sort"
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Case represents one trademark-registration request tracked end-to-end.
// Status is written only through the transition table; Version is
// compare-and-swapped on every save.
type Case struct {
	ID          int64               `json:"id"`
	ClientName  string              `json:"client_name"`
	ClientPhone string              `json:"client_phone"`
	ClientEmail string              `json:"client_email,omitempty"`
	BrandName   string              `json:"brand_name"`
	PersonType  workflow.PersonType `json:"person_type,omitempty"`
	Status      workflow.Status     `json:"status"`

	// Weak references to the role holders currently responsible for acting.
	AssignedOperator string `json:"assigned_operator,omitempty"`
	AssignedChecker  string `json:"assigned_checker,omitempty"`
	AssignedLawyer   string `json:"assigned_lawyer,omitempty"`

	Classes []int `json:"classes,omitempty"`

	Documents []*Document     `json:"documents,omitempty"`
	Invoices  []*Invoice      `json:"invoices,omitempty"`
	History   []*HistoryEntry `json:"history,omitempty"`

	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the read-only view the workflow engine operates on
func (c *Case) Ref() workflow.CaseRef {
	return workflow.CaseRef{
		ID:               c.ID,
		Status:           c.Status,
		AssignedOperator: c.AssignedOperator,
		AssignedChecker:  c.AssignedChecker,
		AssignedLawyer:   c.AssignedLawyer,
	}
}

// NormalizeClasses deduplicates and sorts Nice classification tags ascending,
// validating the 1-45 range.
func NormalizeClasses(classes []int) ([]int, error) {
	seen := make(map[int]bool, len(classes))
	out := make([]int, 0, len(classes))
	for _, cl := range classes {
		if cl < 1 || cl > 45 {
			return nil, fmt.Errorf("%w: class %d out of range 1-45", workflow.ErrValidation, cl)
		}
		if seen[cl] {
			continue
		}
		seen[cl] = true
		out = append(out, cl)
	}
	sort.Ints(out)
	return out, nil
}
