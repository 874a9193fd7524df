package service

import (
	"context"
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Dispatcher executes post-commit notification effects. Implemented by the
// notification service; failures stay inside the dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, c *entity.Case, effects []workflow.Effect)
	Advisory(ctx context.Context, c *entity.Case, note string)
}

// CreateCaseInput holds the intake fields of a new case
type CreateCaseInput struct {
	ClientName  string
	ClientPhone string
	ClientEmail string
	BrandName   string
}

// TransitionInput carries the payload of a transition request. Only the
// fields the requested edge validates are consulted.
type TransitionInput struct {
	BrandName       string
	Classes         []int
	Approved        *bool
	Reason          string
	Comment         string
	PersonType      workflow.PersonType
	Documents       []*entity.Document
	CertificateRef  string
	CertificateName string
}

// CaseService manages cases and executes lifecycle transitions
type CaseService interface {
	CreateCase(ctx context.Context, actor workflow.Actor, in CreateCaseInput) (*entity.Case, error)
	GetCase(ctx context.Context, id int64) (*entity.Case, error)
	ListCases(ctx context.Context, f port.CaseFilter) ([]*entity.Case, error)
	DeleteCase(ctx context.Context, actor workflow.Actor, id int64) error
	ExecuteTransition(ctx context.Context, actor workflow.Actor, caseID int64, action workflow.Action, in TransitionInput) (*entity.Case, error)
}

type caseServiceImpl struct {
	caseRepo    port.CaseRepository
	docRepo     port.DocumentRepository
	historyRepo port.HistoryRepository
	invoiceRepo port.InvoiceRepository
	txManager   port.TransactionManager
	dispatcher  Dispatcher
	advisor     port.BrandAdvisor
	logger      Logger
}

// NewCaseService creates a new CaseService. advisor may be nil.
func NewCaseService(
	caseRepo port.CaseRepository,
	docRepo port.DocumentRepository,
	historyRepo port.HistoryRepository,
	invoiceRepo port.InvoiceRepository,
	txManager port.TransactionManager,
	dispatcher Dispatcher,
	advisor port.BrandAdvisor,
	logger Logger,
) CaseService {
	return &caseServiceImpl{
		caseRepo:    caseRepo,
		docRepo:     docRepo,
		historyRepo: historyRepo,
		invoiceRepo: invoiceRepo,
		txManager:   txManager,
		dispatcher:  dispatcher,
		advisor:     advisor,
		logger:      logger,
	}
}

// CreateCase registers a new case in intake. The creating operator becomes
// the assigned operator.
func (s *caseServiceImpl) CreateCase(ctx context.Context, actor workflow.Actor, in CreateCaseInput) (*entity.Case, error) {
	if actor.Role != workflow.RoleOperator && actor.Role != workflow.RoleAdmin {
		return nil, fmt.Errorf("%w: only an operator may create a case", workflow.ErrAuthorization)
	}
	if in.ClientName == "" || in.ClientPhone == "" {
		return nil, fmt.Errorf("%w: client name and phone are required", workflow.ErrValidation)
	}

	now := time.Now()
	c := &entity.Case{
		ClientName:  in.ClientName,
		ClientPhone: in.ClientPhone,
		ClientEmail: in.ClientEmail,
		BrandName:   in.BrandName,
		Status:      workflow.StatusIntake,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if actor.Role == workflow.RoleOperator {
		c.AssignedOperator = actor.ID
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.Create(txCtx, c); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		entry := &entity.HistoryEntry{
			CaseID:    c.ID,
			Status:    workflow.StatusIntake,
			Comment:   "case created",
			ActorID:   actor.ID,
			ActorRole: actor.Role,
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Case created", "case_id", c.ID, "operator", actor.ID)
	return c, nil
}

// GetCase returns a case with its full document/invoice/history payload
func (s *caseServiceImpl) GetCase(ctx context.Context, id int64) (*entity.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", workflow.ErrNotFound, id)
	}

	if c.Documents, err = s.docRepo.GetByCaseID(ctx, id); err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if c.Invoices, err = s.invoiceRepo.GetByCaseID(ctx, id); err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	if c.History, err = s.historyRepo.GetByCaseID(ctx, id); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return c, nil
}

// ListCases returns case summaries matching the filter
func (s *caseServiceImpl) ListCases(ctx context.Context, f port.CaseFilter) ([]*entity.Case, error) {
	return s.caseRepo.List(ctx, f)
}

// DeleteCase removes a case entirely. Admin only; never fired by a transition.
func (s *caseServiceImpl) DeleteCase(ctx context.Context, actor workflow.Actor, id int64) error {
	if actor.Role != workflow.RoleAdmin {
		return fmt.Errorf("%w: only admin may delete a case", workflow.ErrAuthorization)
	}
	c, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get case: %w", err)
	}
	if c == nil {
		return fmt.Errorf("%w: case %d", workflow.ErrNotFound, id)
	}
	if err := s.caseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	s.logger.Info("Case deleted", "case_id", id, "actor", actor.ID)
	return nil
}

// ExecuteTransition runs one lifecycle transition: load, consult the
// transition table (which applies the guard), mutate, commit status and
// history atomically, then dispatch effects. A rejection at any step before
// the commit leaves the case untouched.
func (s *caseServiceImpl) ExecuteTransition(ctx context.Context, actor workflow.Actor, caseID int64, action workflow.Action, in TransitionInput) (*entity.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", workflow.ErrNotFound, caseID)
	}

	res, err := workflow.Transition(c.Ref(), actor, action, buildPayload(in))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.apply(c, actor, action, in, now); err != nil {
		return nil, err
	}
	c.Status = res.Next
	c.UpdatedAt = now

	entry := &entity.HistoryEntry{
		CaseID:    c.ID,
		Status:    res.Next,
		Comment:   historyComment(action, in),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.caseRepo.Save(txCtx, c); err != nil {
			return fmt.Errorf("save case: %w", err)
		}
		if action == workflow.ActionSubmitForBrandReview {
			if err := s.caseRepo.ReplaceClasses(txCtx, c.ID, c.Classes); err != nil {
				return fmt.Errorf("replace classes: %w", err)
			}
		}
		if action == workflow.ActionSubmitDocuments {
			if err := s.replaceBundles(txCtx, c, in.Documents, now); err != nil {
				return err
			}
		}
		if action == workflow.ActionCompleteByLawyer {
			cert := &entity.Document{
				CaseID:     c.ID,
				Kind:       entity.DocTrademarkCert,
				Bundle:     entity.BundleNone,
				FileRef:    in.CertificateRef,
				FileName:   in.CertificateName,
				UploadedBy: actor.ID,
				UploadedAt: now,
			}
			if err := s.docRepo.Create(txCtx, cert); err != nil {
				return fmt.Errorf("attach certificate: %w", err)
			}
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transition committed",
		"case_id", c.ID, "action", action.String(), "status", c.Status.String(), "actor", actor.ID)

	// Post-commit side effects; their failure never unwinds the commit.
	s.dispatcher.Dispatch(ctx, c, res.Effects)
	if action == workflow.ActionSubmitForBrandReview && s.advisor != nil {
		s.adviseAsync(c)
	}

	return c, nil
}

// apply performs the action-specific field mutations, including the
// responsibility handoff: the actor claims the role slot when it is empty.
func (s *caseServiceImpl) apply(c *entity.Case, actor workflow.Actor, action workflow.Action, in TransitionInput, now time.Time) error {
	switch action {
	case workflow.ActionSubmitForBrandReview:
		classes, err := entity.NormalizeClasses(in.Classes)
		if err != nil {
			return err
		}
		c.BrandName = in.BrandName
		c.Classes = classes
		if c.AssignedOperator == "" && actor.Role == workflow.RoleOperator {
			c.AssignedOperator = actor.ID
		}
	case workflow.ActionReviewBrand:
		if c.AssignedChecker == "" && actor.Role == workflow.RoleChecker {
			c.AssignedChecker = actor.ID
		}
	case workflow.ActionSubmitDocuments:
		c.PersonType = in.PersonType
	case workflow.ActionAcceptByLawyer:
		if c.AssignedLawyer == "" && actor.Role == workflow.RoleLawyer {
			c.AssignedLawyer = actor.ID
		}
	case workflow.ActionArchive:
		c.Archived = true
		c.ArchivedAt = &now
	}
	return nil
}

// replaceBundles enforces the single-bundle invariant: both bundles are
// cleared and only the submitted one is written back.
func (s *caseServiceImpl) replaceBundles(ctx context.Context, c *entity.Case, docs []*entity.Document, now time.Time) error {
	if err := entity.ValidateBundle(docs, c.PersonType); err != nil {
		return err
	}
	for _, b := range []entity.DocumentBundle{entity.BundleOrganization, entity.BundleIndividual} {
		if err := s.docRepo.DeleteBundle(ctx, c.ID, b); err != nil {
			return fmt.Errorf("clear %s bundle: %w", b, err)
		}
	}
	for _, d := range docs {
		d.CaseID = c.ID
		d.UploadedAt = now
		if err := s.docRepo.Create(ctx, d); err != nil {
			return fmt.Errorf("create document %s: %w", d.Kind, err)
		}
	}
	return nil
}

// adviseAsync asks the brand advisor for a note off the request path and
// delivers it to the checker. Failures are logged and dropped.
func (s *caseServiceImpl) adviseAsync(c *entity.Case) {
	snapshot := *c
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		note, err := s.advisor.Advise(ctx, snapshot.BrandName, snapshot.Classes)
		if err != nil {
			s.logger.Error("Brand advisory failed", "case_id", snapshot.ID, "error", err)
			return
		}
		s.dispatcher.Advisory(ctx, &snapshot, note)
	}()
}

func buildPayload(in TransitionInput) workflow.Payload {
	p := workflow.Payload{
		BrandName:      in.BrandName,
		Classes:        in.Classes,
		Approved:       in.Approved,
		Reason:         in.Reason,
		Comment:        in.Comment,
		PersonType:     in.PersonType,
		CertificateRef: in.CertificateRef,
	}
	for _, d := range in.Documents {
		switch d.Bundle {
		case entity.BundleOrganization:
			p.HasOrgDocs = true
		case entity.BundleIndividual:
			p.HasIndivDocs = true
		}
	}
	return p
}

func historyComment(action workflow.Action, in TransitionInput) string {
	switch action {
	case workflow.ActionSubmitForBrandReview:
		return fmt.Sprintf("brand %q submitted for review", in.BrandName)
	case workflow.ActionReviewBrand:
		if in.Approved != nil && !*in.Approved {
			return in.Reason
		}
		return "brand approved"
	case workflow.ActionReturnDocuments, workflow.ActionReject:
		return in.Reason
	case workflow.ActionSendToLawyer:
		return in.Comment
	case workflow.ActionSubmitDocuments:
		return fmt.Sprintf("documents submitted (%s)", in.PersonType)
	case workflow.ActionCompleteByLawyer:
		return "registration certificate attached"
	default:
		return ""
	}
}
