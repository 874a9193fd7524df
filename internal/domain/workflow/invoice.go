package workflow

import "fmt"

// InvoiceStatus represents the state of the payment sub-workflow attached to
// one invoice. The status only advances forward; no back-transition exists.
type InvoiceStatus string

const (
	InvoicePending         InvoiceStatus = "PENDING"
	InvoiceReceiptUploaded InvoiceStatus = "RECEIPT_UPLOADED"
	InvoicePaid            InvoiceStatus = "PAID"
)

var validInvoiceStatuses = map[InvoiceStatus]bool{
	InvoicePending:         true,
	InvoiceReceiptUploaded: true,
	InvoicePaid:            true,
}

// IsValid returns true if the invoice status is known
func (s InvoiceStatus) IsValid() bool {
	return validInvoiceStatuses[s]
}

// String returns the string representation of the invoice status
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceAction represents an operation on the invoice sub-workflow
type InvoiceAction string

const (
	InvoiceActionUploadReceipt  InvoiceAction = "UPLOAD_RECEIPT"
	InvoiceActionApproveReceipt InvoiceAction = "APPROVE_RECEIPT"
)

type invoiceEdge struct {
	from InvoiceStatus
	to   InvoiceStatus
	role Role
}

var invoiceEdges = map[InvoiceAction]invoiceEdge{
	InvoiceActionUploadReceipt:  {from: InvoicePending, to: InvoiceReceiptUploaded, role: RoleChecker},
	InvoiceActionApproveReceipt: {from: InvoiceReceiptUploaded, to: InvoicePaid, role: RoleLawyer},
}

// AuthorizeInvoiceIssue checks who may create a payment request. The lawyer
// issues invoices for the legal stage; admin may also issue one.
func AuthorizeInvoiceIssue(actor Actor) error {
	if actor.Role == RoleLawyer || actor.Role == RoleAdmin {
		return nil
	}
	return fmt.Errorf("%w: only a lawyer or admin may issue an invoice", ErrAuthorization)
}

// TransitionInvoice computes the next invoice status for the action, or a
// typed rejection. Uploading a receipt requires the stored artifact reference
// before the state advances. The role slot guard mirrors the case guard:
// checker uploads receipts, lawyer approves them, admin bypasses ownership.
func TransitionInvoice(c CaseRef, current InvoiceStatus, action InvoiceAction, actor Actor, receiptRef string) (InvoiceStatus, error) {
	e, ok := invoiceEdges[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown invoice action %s", ErrState, action)
	}

	if current != e.from {
		return "", fmt.Errorf("%w: invoice is %s, %s requires %s", ErrState, current, action, e.from)
	}

	if actor.Role != RoleAdmin {
		if actor.Role != e.role {
			return "", fmt.Errorf("%w: invoice action %s requires role %s", ErrAuthorization, action, e.role)
		}
		if assigned := assignedFor(c, e.role); assigned != "" && assigned != actor.ID {
			return "", fmt.Errorf("%w: case %d is assigned to another %s", ErrAuthorization, c.ID, e.role)
		}
	}

	if action == InvoiceActionUploadReceipt && receiptRef == "" {
		return "", fmt.Errorf("%w: receipt file is required", ErrValidation)
	}

	return e.to, nil
}

// InvoicePaidEffects is the documented exception to one transition → one
// notification: reaching PAID notifies the operator role, the checker role,
// and the case's assigned operator when one is set. The dispatcher dedupes
// per recipient.
func InvoicePaidEffects(c CaseRef) []Effect {
	effects := []Effect{
		{TargetRole: RoleOperator, Type: NotifyInvoicePaid},
		{TargetRole: RoleChecker, Type: NotifyInvoicePaid},
	}
	if c.AssignedOperator != "" {
		effects = append(effects, Effect{TargetUser: c.AssignedOperator, Type: NotifyInvoicePaid})
	}
	return effects
}
