package entity

import (
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Invoice is a payment request attached to a case. Status only moves forward
// through the invoice sub-workflow.
type Invoice struct {
	ID          int64                  `json:"id"`
	CaseID      int64                  `json:"case_id"`
	AmountCents int64                  `json:"amount_cents"`
	Comment     string                 `json:"comment,omitempty"`
	BillRef     string                 `json:"bill_ref"`
	ReceiptRef  string                 `json:"receipt_ref,omitempty"`
	Status      workflow.InvoiceStatus `json:"status"`
	CreatedBy   string                 `json:"created_by"`
	UploadedBy  string                 `json:"uploaded_by,omitempty"`
	ApprovedBy  string                 `json:"approved_by,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	PaidAt      *time.Time             `json:"paid_at,omitempty"`
}
