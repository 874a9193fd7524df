package workflow

import "fmt"

// Authorize applies the guard rules in order: (1) admin bypasses ownership
// checks for all actions; (2) the actor must hold the edge's required role
// and, when the case has an assignee for that role slot, must be that
// assignee (an unassigned slot admits any holder of the role); status match
// is rule (3) and is checked by the table lookup before this runs.
func Authorize(c CaseRef, actor Actor, e Edge) error {
	if actor.Role == RoleAdmin {
		return nil
	}

	if actor.Role != e.Role {
		return fmt.Errorf("%w: action %s requires role %s, actor holds %s",
			ErrAuthorization, e.Action, e.Role, actor.Role)
	}

	if assigned := assignedFor(c, e.Role); assigned != "" && assigned != actor.ID {
		return fmt.Errorf("%w: case %d is assigned to another %s",
			ErrAuthorization, c.ID, e.Role)
	}

	return nil
}

// assignedFor returns the user ID holding the role slot on the case, or ""
// when the slot is unassigned. Admin has no slot.
func assignedFor(c CaseRef, role Role) string {
	switch role {
	case RoleOperator:
		return c.AssignedOperator
	case RoleChecker:
		return c.AssignedChecker
	case RoleLawyer:
		return c.AssignedLawyer
	default:
		return ""
	}
}
