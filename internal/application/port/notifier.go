package port

import "context"

// MessageChannel is an optional external delivery channel for notifications.
// Delivery is best-effort: errors are logged by the dispatcher and swallowed.
type MessageChannel interface {
	Send(ctx context.Context, userID, title, message string) error
}

// BrandAdvisor drafts an advisory note about a proposed brand name for the
// checker. Optional; a nil advisor disables the feature.
type BrandAdvisor interface {
	Advise(ctx context.Context, brandName string, classes []int) (string, error)
}
