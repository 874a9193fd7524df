package workflow

// Status represents a case status in the registration lifecycle
type Status string

const (
	StatusIntake             Status = "INTAKE"
	StatusContacted          Status = "CONTACTED"
	StatusBrandReview        Status = "BRAND_UNDER_REVIEW"
	StatusDocumentsPending   Status = "DOCUMENTS_PENDING"
	StatusReturnedToOperator Status = "RETURNED_TO_OPERATOR"
	StatusDocumentsSubmitted Status = "DOCUMENTS_SUBMITTED"
	StatusSentToLegal        Status = "SENT_TO_LEGAL"
	StatusLegalInProgress    Status = "LEGAL_IN_PROGRESS"
	StatusLegalCompleted     Status = "LEGAL_COMPLETED"
	StatusArchived           Status = "ARCHIVED"
	StatusRejected           Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusIntake:             true,
	StatusContacted:          true,
	StatusBrandReview:        true,
	StatusDocumentsPending:   true,
	StatusReturnedToOperator: true,
	StatusDocumentsSubmitted: true,
	StatusSentToLegal:        true,
	StatusLegalInProgress:    true,
	StatusLegalCompleted:     true,
	StatusArchived:           true,
	StatusRejected:           true,
}

var terminalStatuses = map[Status]bool{
	StatusArchived: true,
	StatusRejected: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a valid case status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Statuses returns every valid status. The slice is a copy.
func Statuses() []Status {
	out := make([]Status, 0, len(validStatuses))
	for s := range validStatuses {
		out = append(out, s)
	}
	return out
}
