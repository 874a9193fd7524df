package workflow

import (
	"errors"
	"testing"
)

func boolPtr(v bool) *bool { return &v }

func TestTransition_Topology(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		action  Action
		actor   Actor
		payload Payload
		want    Status
	}{
		{
			name:    "intake mark contacted",
			from:    StatusIntake,
			action:  ActionMarkContacted,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			want:    StatusContacted,
		},
		{
			name:    "intake submit for brand review",
			from:    StatusIntake,
			action:  ActionSubmitForBrandReview,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{BrandName: "ACME", Classes: []int{9, 42}},
			want:    StatusBrandReview,
		},
		{
			name:    "contacted submit for brand review",
			from:    StatusContacted,
			action:  ActionSubmitForBrandReview,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{BrandName: "ACME"},
			want:    StatusBrandReview,
		},
		{
			name:    "brand review approved",
			from:    StatusBrandReview,
			action:  ActionReviewBrand,
			actor:   Actor{ID: "ch1", Role: RoleChecker},
			payload: Payload{Approved: boolPtr(true)},
			want:    StatusDocumentsPending,
		},
		{
			name:    "brand review rejected returns to operator",
			from:    StatusBrandReview,
			action:  ActionReviewBrand,
			actor:   Actor{ID: "ch1", Role: RoleChecker},
			payload: Payload{Approved: boolPtr(false), Reason: "descriptive mark"},
			want:    StatusReturnedToOperator,
		},
		{
			name:    "resubmit for review after rejection",
			from:    StatusReturnedToOperator,
			action:  ActionSubmitForBrandReview,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{BrandName: "ACME Prime"},
			want:    StatusBrandReview,
		},
		{
			name:    "submit organization documents",
			from:    StatusDocumentsPending,
			action:  ActionSubmitDocuments,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{PersonType: PersonOrganization, HasOrgDocs: true},
			want:    StatusDocumentsSubmitted,
		},
		{
			name:    "resubmit documents after return",
			from:    StatusReturnedToOperator,
			action:  ActionSubmitDocuments,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{PersonType: PersonIndividual, HasIndivDocs: true},
			want:    StatusDocumentsSubmitted,
		},
		{
			name:    "return documents",
			from:    StatusDocumentsSubmitted,
			action:  ActionReturnDocuments,
			actor:   Actor{ID: "ch1", Role: RoleChecker},
			payload: Payload{Reason: "passport scan unreadable"},
			want:    StatusReturnedToOperator,
		},
		{
			name:    "send to lawyer",
			from:    StatusDocumentsSubmitted,
			action:  ActionSendToLawyer,
			actor:   Actor{ID: "ch1", Role: RoleChecker},
			payload: Payload{Comment: "bundle complete"},
			want:    StatusSentToLegal,
		},
		{
			name:    "accept by lawyer",
			from:    StatusSentToLegal,
			action:  ActionAcceptByLawyer,
			actor:   Actor{ID: "lw1", Role: RoleLawyer},
			want:    StatusLegalInProgress,
		},
		{
			name:    "complete by lawyer",
			from:    StatusLegalInProgress,
			action:  ActionCompleteByLawyer,
			actor:   Actor{ID: "lw1", Role: RoleLawyer},
			payload: Payload{CertificateRef: "2026/01/cert.pdf"},
			want:    StatusLegalCompleted,
		},
		{
			name:    "archive",
			from:    StatusLegalCompleted,
			action:  ActionArchive,
			actor:   Actor{ID: "adm", Role: RoleAdmin},
			want:    StatusArchived,
		},
		{
			name:    "admin reject from brand review",
			from:    StatusBrandReview,
			action:  ActionReject,
			actor:   Actor{ID: "adm", Role: RoleAdmin},
			payload: Payload{Reason: "client withdrew"},
			want:    StatusRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CaseRef{ID: 1, Status: tt.from}
			result, err := Transition(c, tt.actor, tt.action, tt.payload)
			if err != nil {
				t.Fatalf("Transition() error = %v", err)
			}
			if result.Next != tt.want {
				t.Errorf("Transition() next = %v, want %v", result.Next, tt.want)
			}
		})
	}
}

func TestTransition_NoEdge(t *testing.T) {
	tests := []struct {
		name   string
		from   Status
		action Action
	}{
		{"archive from intake", StatusIntake, ActionArchive},
		{"review before submission", StatusIntake, ActionReviewBrand},
		{"submit documents before approval", StatusBrandReview, ActionSubmitDocuments},
		{"no edge from archived", StatusArchived, ActionSubmitForBrandReview},
		{"no edge from rejected", StatusRejected, ActionMarkContacted},
		{"no reject from archived", StatusArchived, ActionReject},
	}

	admin := Actor{ID: "adm", Role: RoleAdmin}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transition(CaseRef{ID: 1, Status: tt.from}, admin, tt.action, Payload{Reason: "x"})
			if !errors.Is(err, ErrState) {
				t.Errorf("Transition() error = %v, want ErrState", err)
			}
		})
	}
}

func TestTransition_TerminalStatusesHaveNoEdges(t *testing.T) {
	for s := range validStatuses {
		if !s.IsTerminal() {
			continue
		}
		if actions := PermittedActions(s); len(actions) != 0 {
			t.Errorf("terminal status %s has edges %v", s, actions)
		}
	}
}

func TestTransition_GuardOrder(t *testing.T) {
	c := CaseRef{ID: 7, Status: StatusBrandReview, AssignedChecker: "ch1"}

	t.Run("wrong role", func(t *testing.T) {
		_, err := Transition(c, Actor{ID: "op1", Role: RoleOperator}, ActionReviewBrand, Payload{Approved: boolPtr(true)})
		if !errors.Is(err, ErrAuthorization) {
			t.Errorf("Transition() error = %v, want ErrAuthorization", err)
		}
	})

	t.Run("right role wrong assignee", func(t *testing.T) {
		_, err := Transition(c, Actor{ID: "ch2", Role: RoleChecker}, ActionReviewBrand, Payload{Approved: boolPtr(true)})
		if !errors.Is(err, ErrAuthorization) {
			t.Errorf("Transition() error = %v, want ErrAuthorization", err)
		}
	})

	t.Run("unassigned slot admits any holder", func(t *testing.T) {
		open := CaseRef{ID: 8, Status: StatusBrandReview}
		result, err := Transition(open, Actor{ID: "ch2", Role: RoleChecker}, ActionReviewBrand, Payload{Approved: boolPtr(true)})
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if result.Next != StatusDocumentsPending {
			t.Errorf("Transition() next = %v, want %v", result.Next, StatusDocumentsPending)
		}
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		result, err := Transition(c, Actor{ID: "adm", Role: RoleAdmin}, ActionReviewBrand, Payload{Approved: boolPtr(true)})
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if result.Next != StatusDocumentsPending {
			t.Errorf("Transition() next = %v, want %v", result.Next, StatusDocumentsPending)
		}
	})

	t.Run("authorization checked before payload", func(t *testing.T) {
		// Empty payload would fail validation; the role failure must win.
		_, err := Transition(c, Actor{ID: "op1", Role: RoleOperator}, ActionReviewBrand, Payload{})
		if !errors.Is(err, ErrAuthorization) {
			t.Errorf("Transition() error = %v, want ErrAuthorization", err)
		}
	})
}

func TestTransition_PayloadValidation(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		action  Action
		actor   Actor
		payload Payload
	}{
		{
			name:   "review without decision",
			from:   StatusBrandReview,
			action: ActionReviewBrand,
			actor:  Actor{ID: "ch1", Role: RoleChecker},
		},
		{
			name:    "rejection without reason",
			from:    StatusBrandReview,
			action:  ActionReviewBrand,
			actor:   Actor{ID: "ch1", Role: RoleChecker},
			payload: Payload{Approved: boolPtr(false)},
		},
		{
			name:   "submit for review without brand",
			from:   StatusIntake,
			action: ActionSubmitForBrandReview,
			actor:  Actor{ID: "op1", Role: RoleOperator},
		},
		{
			name:    "submit for review with bad class",
			from:    StatusIntake,
			action:  ActionSubmitForBrandReview,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{BrandName: "ACME", Classes: []int{0}},
		},
		{
			name:    "organization type with individual bundle",
			from:    StatusDocumentsPending,
			action:  ActionSubmitDocuments,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{PersonType: PersonOrganization, HasIndivDocs: true},
		},
		{
			name:    "both bundles at once",
			from:    StatusDocumentsPending,
			action:  ActionSubmitDocuments,
			actor:   Actor{ID: "op1", Role: RoleOperator},
			payload: Payload{PersonType: PersonIndividual, HasOrgDocs: true, HasIndivDocs: true},
		},
		{
			name:   "return documents without reason",
			from:   StatusDocumentsSubmitted,
			action: ActionReturnDocuments,
			actor:  Actor{ID: "ch1", Role: RoleChecker},
		},
		{
			name:   "send to lawyer without comment",
			from:   StatusDocumentsSubmitted,
			action: ActionSendToLawyer,
			actor:  Actor{ID: "ch1", Role: RoleChecker},
		},
		{
			name:   "complete without certificate",
			from:   StatusLegalInProgress,
			action: ActionCompleteByLawyer,
			actor:  Actor{ID: "lw1", Role: RoleLawyer},
		},
		{
			name:   "reject without reason",
			from:   StatusIntake,
			action: ActionReject,
			actor:  Actor{ID: "adm", Role: RoleAdmin},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Transition(CaseRef{ID: 1, Status: tt.from}, tt.actor, tt.action, tt.payload)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Transition() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTransition_Effects(t *testing.T) {
	t.Run("targets assigned slot when set", func(t *testing.T) {
		c := CaseRef{ID: 1, Status: StatusBrandReview, AssignedOperator: "op1", AssignedChecker: "ch1"}
		result, err := Transition(c, Actor{ID: "ch1", Role: RoleChecker}, ActionReviewBrand,
			Payload{Approved: boolPtr(false), Reason: "conflict"})
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if len(result.Effects) != 1 {
			t.Fatalf("got %d effects, want 1", len(result.Effects))
		}
		eff := result.Effects[0]
		if eff.TargetUser != "op1" || eff.Type != NotifyBrandRejected {
			t.Errorf("effect = %+v, want user op1 type %s", eff, NotifyBrandRejected)
		}
	})

	t.Run("falls back to role pool when slot unassigned", func(t *testing.T) {
		c := CaseRef{ID: 1, Status: StatusIntake}
		result, err := Transition(c, Actor{ID: "op1", Role: RoleOperator}, ActionSubmitForBrandReview,
			Payload{BrandName: "ACME"})
		if err != nil {
			t.Fatalf("Transition() error = %v", err)
		}
		if len(result.Effects) != 1 {
			t.Fatalf("got %d effects, want 1", len(result.Effects))
		}
		eff := result.Effects[0]
		if eff.TargetRole != RoleChecker || eff.TargetUser != "" {
			t.Errorf("effect = %+v, want checker role pool", eff)
		}
	})
}

func TestValidateClasses(t *testing.T) {
	tests := []struct {
		name    string
		classes []int
		wantErr bool
	}{
		{"empty", nil, false},
		{"valid", []int{1, 9, 45}, false},
		{"zero", []int{0}, true},
		{"above range", []int{46}, true},
		{"duplicate", []int{9, 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClasses(tt.classes)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClasses(%v) error = %v, wantErr %v", tt.classes, err, tt.wantErr)
			}
		})
	}
}
