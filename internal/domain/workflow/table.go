package workflow

import "fmt"

// PersonType discriminates the two mutually exclusive document bundles.
type PersonType string

const (
	PersonOrganization PersonType = "ORGANIZATION"
	PersonIndividual   PersonType = "INDIVIDUAL"
)

// IsValid returns true if the person type is known
func (p PersonType) IsValid() bool {
	return p == PersonOrganization || p == PersonIndividual
}

// CaseRef is the read-only view of a case the transition table and the guard
// evaluator operate on. Assigned* fields are weak references (user IDs).
type CaseRef struct {
	ID               int64
	Status           Status
	AssignedOperator string
	AssignedChecker  string
	AssignedLawyer   string
}

// Payload carries the inputs of a transition request. Each edge validates
// only the fields it requires.
type Payload struct {
	BrandName      string
	Classes        []int
	Approved       *bool
	Reason         string
	Comment        string
	PersonType     PersonType
	HasOrgDocs     bool
	HasIndivDocs   bool
	CertificateRef string
}

// NotificationType tags a dispatched notification
type NotificationType string

const (
	NotifyBrandReviewRequested NotificationType = "BRAND_REVIEW_REQUESTED"
	NotifyBrandApproved        NotificationType = "BRAND_APPROVED"
	NotifyBrandRejected        NotificationType = "BRAND_REJECTED"
	NotifyDocumentsSubmitted   NotificationType = "DOCUMENTS_SUBMITTED"
	NotifyDocumentsReturned    NotificationType = "DOCUMENTS_RETURNED"
	NotifySentToLegal          NotificationType = "SENT_TO_LEGAL"
	NotifyLegalAccepted        NotificationType = "LEGAL_ACCEPTED"
	NotifyLegalCompleted       NotificationType = "LEGAL_COMPLETED"
	NotifyCaseArchived         NotificationType = "CASE_ARCHIVED"
	NotifyCaseRejected         NotificationType = "CASE_REJECTED"
	NotifyInvoiceIssued        NotificationType = "INVOICE_ISSUED"
	NotifyReceiptUploaded      NotificationType = "RECEIPT_UPLOADED"
	NotifyInvoicePaid          NotificationType = "INVOICE_PAID"
	NotifyBrandCheckAdvisory   NotificationType = "BRAND_CHECK_ADVISORY"
)

// Effect is a post-commit notification intent. Exactly one of TargetRole or
// TargetUser is set: a role fans out to every current holder, a user targets
// one recipient.
type Effect struct {
	TargetRole Role
	TargetUser string
	Type       NotificationType
}

// Edge is one legal (from-status, action, role) → to-status mapping.
type Edge struct {
	From   Status
	Action Action
	Role   Role
	To     Status

	// RejectTo, when set, is the alternate target taken when the payload
	// carries Approved=false (the checker decision edge).
	RejectTo Status

	Validate func(p Payload) error
	Effects  func(c CaseRef, p Payload) []Effect
}

// Result is a committed transition computation
type Result struct {
	Next    Status
	Effects []Effect
}

// edges is the single authoritative transition table. Every mutating entry
// point goes through Transition; no call site may set a status directly.
var edges = buildEdges()

var edgeIndex = buildIndex(edges)

func buildEdges() []Edge {
	list := []Edge{
		{
			From:   StatusIntake,
			Action: ActionMarkContacted,
			Role:   RoleOperator,
			To:     StatusContacted,
		},
		{
			From:     StatusBrandReview,
			Action:   ActionReviewBrand,
			Role:     RoleChecker,
			To:       StatusDocumentsPending,
			RejectTo: StatusReturnedToOperator,
			Validate: validateReviewBrand,
			Effects: func(c CaseRef, p Payload) []Effect {
				if p.Approved != nil && !*p.Approved {
					return []Effect{slotEffect(c, RoleOperator, NotifyBrandRejected)}
				}
				return []Effect{slotEffect(c, RoleOperator, NotifyBrandApproved)}
			},
		},
		{
			From:     StatusDocumentsPending,
			Action:   ActionSubmitDocuments,
			Role:     RoleOperator,
			To:       StatusDocumentsSubmitted,
			Validate: validateSubmitDocuments,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleChecker, NotifyDocumentsSubmitted)}
			},
		},
		{
			From:     StatusDocumentsSubmitted,
			Action:   ActionReturnDocuments,
			Role:     RoleChecker,
			To:       StatusReturnedToOperator,
			Validate: requireReason,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleOperator, NotifyDocumentsReturned)}
			},
		},
		{
			From:     StatusDocumentsSubmitted,
			Action:   ActionSendToLawyer,
			Role:     RoleChecker,
			To:       StatusSentToLegal,
			Validate: requireComment,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleLawyer, NotifySentToLegal)}
			},
		},
		{
			From:   StatusSentToLegal,
			Action: ActionAcceptByLawyer,
			Role:   RoleLawyer,
			To:     StatusLegalInProgress,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleOperator, NotifyLegalAccepted)}
			},
		},
		{
			From:     StatusLegalInProgress,
			Action:   ActionCompleteByLawyer,
			Role:     RoleLawyer,
			To:       StatusLegalCompleted,
			Validate: validateComplete,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleOperator, NotifyLegalCompleted)}
			},
		},
		{
			From:   StatusLegalCompleted,
			Action: ActionArchive,
			Role:   RoleAdmin,
			To:     StatusArchived,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleOperator, NotifyCaseArchived)}
			},
		},
		{
			// After a document return the operator resubmits directly.
			From:     StatusReturnedToOperator,
			Action:   ActionSubmitDocuments,
			Role:     RoleOperator,
			To:       StatusDocumentsSubmitted,
			Validate: validateSubmitDocuments,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleChecker, NotifyDocumentsSubmitted)}
			},
		},
	}

	// Brand review can be requested from intake, after the client was
	// contacted, and again after a rejection.
	for _, from := range []Status{StatusIntake, StatusContacted, StatusReturnedToOperator} {
		list = append(list, Edge{
			From:     from,
			Action:   ActionSubmitForBrandReview,
			Role:     RoleOperator,
			To:       StatusBrandReview,
			Validate: validateSubmitForReview,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleChecker, NotifyBrandReviewRequested)}
			},
		})
	}

	// Admin may terminally reject a case from any non-terminal status.
	for s := range validStatuses {
		if s.IsTerminal() {
			continue
		}
		list = append(list, Edge{
			From:     s,
			Action:   ActionReject,
			Role:     RoleAdmin,
			To:       StatusRejected,
			Validate: requireReason,
			Effects: func(c CaseRef, p Payload) []Effect {
				return []Effect{slotEffect(c, RoleOperator, NotifyCaseRejected)}
			},
		})
	}

	return list
}

func buildIndex(list []Edge) map[Status]map[Action]Edge {
	idx := make(map[Status]map[Action]Edge)
	for _, e := range list {
		if !e.From.IsValid() || !e.To.IsValid() {
			panic(fmt.Sprintf("invalid edge %s -> %s", e.From, e.To))
		}
		byAction, ok := idx[e.From]
		if !ok {
			byAction = make(map[Action]Edge)
			idx[e.From] = byAction
		}
		if _, dup := byAction[e.Action]; dup {
			panic(fmt.Sprintf("duplicate edge for (%s, %s)", e.From, e.Action))
		}
		byAction[e.Action] = e
	}
	return idx
}

// Lookup returns the edge for (from, action), if one exists.
func Lookup(from Status, action Action) (Edge, bool) {
	e, ok := edgeIndex[from][action]
	return e, ok
}

// PermittedActions returns the actions that have an edge from the given status.
func PermittedActions(from Status) []Action {
	byAction := edgeIndex[from]
	actions := make([]Action, 0, len(byAction))
	for a := range byAction {
		actions = append(actions, a)
	}
	return actions
}

// Transition computes the result of firing action on the case, or a typed
// rejection. It mutates nothing: guard failure, missing payload and unknown
// edges all leave the caller's state untouched.
func Transition(c CaseRef, actor Actor, action Action, p Payload) (Result, error) {
	e, ok := Lookup(c.Status, action)
	if !ok {
		return Result{}, fmt.Errorf("%w: no %s edge from %s", ErrState, action, c.Status)
	}

	if err := Authorize(c, actor, e); err != nil {
		return Result{}, err
	}

	if e.Validate != nil {
		if err := e.Validate(p); err != nil {
			return Result{}, err
		}
	}

	next := e.To
	if e.RejectTo != "" && p.Approved != nil && !*p.Approved {
		next = e.RejectTo
	}

	var effects []Effect
	if e.Effects != nil {
		effects = e.Effects(c, p)
	}

	return Result{Next: next, Effects: effects}, nil
}

// slotEffect targets the assigned holder of the role slot when set, falling
// back to the role pool when the slot is unassigned. The fallback is the
// documented exception, not the rule: assignment is set the moment a
// transition hands off responsibility.
func slotEffect(c CaseRef, role Role, t NotificationType) Effect {
	if user := assignedFor(c, role); user != "" {
		return Effect{TargetUser: user, Type: t}
	}
	return Effect{TargetRole: role, Type: t}
}

func validateSubmitForReview(p Payload) error {
	if p.BrandName == "" {
		return fmt.Errorf("%w: brand name is required", ErrValidation)
	}
	return ValidateClasses(p.Classes)
}

func validateReviewBrand(p Payload) error {
	if p.Approved == nil {
		return fmt.Errorf("%w: approved flag is required", ErrValidation)
	}
	if !*p.Approved && p.Reason == "" {
		return fmt.Errorf("%w: a reason is required when rejecting", ErrValidation)
	}
	return nil
}

func validateSubmitDocuments(p Payload) error {
	switch p.PersonType {
	case PersonOrganization:
		if !p.HasOrgDocs || p.HasIndivDocs {
			return fmt.Errorf("%w: organization person type requires the organization document bundle only", ErrValidation)
		}
	case PersonIndividual:
		if !p.HasIndivDocs || p.HasOrgDocs {
			return fmt.Errorf("%w: individual person type requires the individual document bundle only", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown person type %q", ErrValidation, p.PersonType)
	}
	return nil
}

func validateComplete(p Payload) error {
	if p.CertificateRef == "" {
		return fmt.Errorf("%w: certificate document is required", ErrValidation)
	}
	return nil
}

func requireReason(p Payload) error {
	if p.Reason == "" {
		return fmt.Errorf("%w: a reason is required", ErrValidation)
	}
	return nil
}

func requireComment(p Payload) error {
	if p.Comment == "" {
		return fmt.Errorf("%w: a comment is required", ErrValidation)
	}
	return nil
}

// ValidateClasses checks Nice classification tags: 1-45, no duplicates.
func ValidateClasses(classes []int) error {
	seen := make(map[int]bool, len(classes))
	for _, cl := range classes {
		if cl < 1 || cl > 45 {
			return fmt.Errorf("%w: class %d out of range 1-45", ErrValidation, cl)
		}
		if seen[cl] {
			return fmt.Errorf("%w: duplicate class %d", ErrValidation, cl)
		}
		seen[cl] = true
	}
	return nil
}
