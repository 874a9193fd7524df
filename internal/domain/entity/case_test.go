package entity

import (
	"errors"
	"reflect"
	"testing"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

func TestNormalizeClasses(t *testing.T) {
	tests := []struct {
		name    string
		in      []int
		want    []int
		wantErr bool
	}{
		{"nil", nil, []int{}, false},
		{"sorted dedup", []int{42, 9, 9, 1}, []int{1, 9, 42}, false},
		{"already clean", []int{3, 5}, []int{3, 5}, false},
		{"below range", []int{0, 9}, nil, true},
		{"above range", []int{46}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeClasses(tt.in)
			if tt.wantErr {
				if !errors.Is(err, workflow.ErrValidation) {
					t.Errorf("NormalizeClasses(%v) error = %v, want ErrValidation", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeClasses(%v) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeClasses(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCase_Ref(t *testing.T) {
	c := &Case{
		ID:               42,
		Status:           workflow.StatusBrandReview,
		AssignedOperator: "op1",
		AssignedChecker:  "ch1",
	}

	ref := c.Ref()
	if ref.ID != 42 || ref.Status != workflow.StatusBrandReview {
		t.Errorf("Ref() = %+v", ref)
	}
	if ref.AssignedOperator != "op1" || ref.AssignedChecker != "ch1" || ref.AssignedLawyer != "" {
		t.Errorf("Ref() assignments = %+v", ref)
	}
}

func TestValidateBundle(t *testing.T) {
	orgDocs := []*Document{
		{Kind: DocPowerOfAttorney, Bundle: BundleOrganization, FileRef: "ref-1"},
		{Kind: DocRegistrationCert, Bundle: BundleOrganization, FileRef: "ref-2"},
	}
	indivDocs := []*Document{
		{Kind: DocPowerOfAttorney, Bundle: BundleIndividual, FileRef: "ref-1"},
		{Kind: DocPassport, Bundle: BundleIndividual, FileRef: "ref-2"},
	}

	tests := []struct {
		name    string
		docs    []*Document
		pt      workflow.PersonType
		wantErr bool
	}{
		{"complete organization bundle", orgDocs, workflow.PersonOrganization, false},
		{"complete individual bundle", indivDocs, workflow.PersonIndividual, false},
		{"missing registration certificate", orgDocs[:1], workflow.PersonOrganization, true},
		{"missing passport", indivDocs[:1], workflow.PersonIndividual, true},
		{"wrong bundle tag", orgDocs, workflow.PersonIndividual, true},
		{"unknown person type", orgDocs, workflow.PersonType("COMPANY"), true},
		{
			"document without file",
			[]*Document{
				{Kind: DocPowerOfAttorney, Bundle: BundleOrganization, FileRef: ""},
				{Kind: DocRegistrationCert, Bundle: BundleOrganization, FileRef: "ref-2"},
			},
			workflow.PersonOrganization,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundle(tt.docs, tt.pt)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBundle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, workflow.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBundleFor(t *testing.T) {
	if got := BundleFor(workflow.PersonOrganization); got != BundleOrganization {
		t.Errorf("BundleFor(organization) = %v", got)
	}
	if got := BundleFor(workflow.PersonIndividual); got != BundleIndividual {
		t.Errorf("BundleFor(individual) = %v", got)
	}
	if got := BundleFor(workflow.PersonType("")); got != BundleNone {
		t.Errorf("BundleFor(empty) = %v", got)
	}
}
