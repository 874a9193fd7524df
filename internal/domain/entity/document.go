package entity

import (
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/domain/workflow"
)

// DocumentKind tags a document variant. Each kind belongs to at most one
// bundle; certificates, notices and payment artifacts are bundle-free.
type DocumentKind string

const (
	DocPowerOfAttorney  DocumentKind = "POWER_OF_ATTORNEY"
	DocPassport         DocumentKind = "PASSPORT"
	DocRegistrationCert DocumentKind = "REGISTRATION_CERTIFICATE"
	DocTrademarkCert    DocumentKind = "TRADEMARK_CERTIFICATE"
	DocNotice           DocumentKind = "NOTICE"
	DocPaymentBill      DocumentKind = "PAYMENT_BILL"
	DocPaymentReceipt   DocumentKind = "PAYMENT_RECEIPT"
)

var validDocumentKinds = map[DocumentKind]bool{
	DocPowerOfAttorney:  true,
	DocPassport:         true,
	DocRegistrationCert: true,
	DocTrademarkCert:    true,
	DocNotice:           true,
	DocPaymentBill:      true,
	DocPaymentReceipt:   true,
}

// IsValid returns true if the document kind is known
func (k DocumentKind) IsValid() bool {
	return validDocumentKinds[k]
}

// DocumentBundle names which of the two mutually exclusive bundles a
// document belongs to; BundleNone for bundle-free kinds.
type DocumentBundle string

const (
	BundleOrganization DocumentBundle = "ORGANIZATION"
	BundleIndividual   DocumentBundle = "INDIVIDUAL"
	BundleNone         DocumentBundle = "NONE"
)

// Document is a typed file attached to a case
type Document struct {
	ID         int64          `json:"id"`
	CaseID     int64          `json:"case_id"`
	Kind       DocumentKind   `json:"kind"`
	Bundle     DocumentBundle `json:"bundle"`
	FileRef    string         `json:"file_ref"`
	FileName   string         `json:"file_name"`
	UploadedBy string         `json:"uploaded_by"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// BundleKinds returns the document kinds a bundle must contain.
func BundleKinds(pt workflow.PersonType) []DocumentKind {
	switch pt {
	case workflow.PersonOrganization:
		return []DocumentKind{DocPowerOfAttorney, DocRegistrationCert}
	case workflow.PersonIndividual:
		return []DocumentKind{DocPowerOfAttorney, DocPassport}
	default:
		return nil
	}
}

// BundleFor maps a person type to its bundle tag.
func BundleFor(pt workflow.PersonType) DocumentBundle {
	switch pt {
	case workflow.PersonOrganization:
		return BundleOrganization
	case workflow.PersonIndividual:
		return BundleIndividual
	default:
		return BundleNone
	}
}

// ValidateBundle checks that docs form a complete bundle for the person type:
// every required kind present, every document carrying a file reference and
// the matching bundle tag.
func ValidateBundle(docs []*Document, pt workflow.PersonType) error {
	required := BundleKinds(pt)
	if required == nil {
		return fmt.Errorf("%w: unknown person type %q", workflow.ErrValidation, pt)
	}
	bundle := BundleFor(pt)

	present := make(map[DocumentKind]bool, len(docs))
	for _, d := range docs {
		if d.Bundle != bundle {
			return fmt.Errorf("%w: document %s belongs to bundle %s, expected %s",
				workflow.ErrValidation, d.Kind, d.Bundle, bundle)
		}
		if d.FileRef == "" {
			return fmt.Errorf("%w: document %s has no uploaded file", workflow.ErrValidation, d.Kind)
		}
		present[d.Kind] = true
	}

	for _, k := range required {
		if !present[k] {
			return fmt.Errorf("%w: bundle %s is missing %s", workflow.ErrValidation, bundle, k)
		}
	}
	return nil
}
