package workflow

// Role represents an actor role class. Every edge in the transition table
// names exactly one role that may fire it; admin bypasses ownership checks.
type Role string

const (
	RoleOperator Role = "OPERATOR"
	RoleChecker  Role = "CHECKER"
	RoleLawyer   Role = "LAWYER"
	RoleAdmin    Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleOperator: true,
	RoleChecker:  true,
	RoleLawyer:   true,
	RoleAdmin:    true,
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated identity attempting a transition.
type Actor struct {
	ID   string
	Role Role
}
