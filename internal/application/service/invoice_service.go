package service

import (
	"context"
	"fmt"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// InvoiceService runs the nested payment sub-workflow attached to a case
type InvoiceService interface {
	SendInvoice(ctx context.Context, actor workflow.Actor, caseID int64, amountCents int64, comment, billRef string) (*entity.Invoice, error)
	UploadReceipt(ctx context.Context, actor workflow.Actor, caseID, invoiceID int64, receiptRef string) (*entity.Invoice, error)
	ApproveReceipt(ctx context.Context, actor workflow.Actor, caseID, invoiceID int64) (*entity.Invoice, error)
}

type invoiceServiceImpl struct {
	caseRepo    port.CaseRepository
	invoiceRepo port.InvoiceRepository
	historyRepo port.HistoryRepository
	txManager   port.TransactionManager
	dispatcher  Dispatcher
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	caseRepo port.CaseRepository,
	invoiceRepo port.InvoiceRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	dispatcher Dispatcher,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		caseRepo:    caseRepo,
		invoiceRepo: invoiceRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// SendInvoice creates a payment request in PENDING on an active case
func (s *invoiceServiceImpl) SendInvoice(ctx context.Context, actor workflow.Actor, caseID int64, amountCents int64, comment, billRef string) (*entity.Invoice, error) {
	if err := workflow.AuthorizeInvoiceIssue(actor); err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", workflow.ErrValidation)
	}
	if billRef == "" {
		return nil, fmt.Errorf("%w: invoice file is required", workflow.ErrValidation)
	}

	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: case %d is %s", workflow.ErrState, caseID, c.Status)
	}

	inv := &entity.Invoice{
		CaseID:      caseID,
		AmountCents: amountCents,
		Comment:     comment,
		BillRef:     billRef,
		Status:      workflow.InvoicePending,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return s.historyRepo.Append(txCtx, &entity.HistoryEntry{
			CaseID:    caseID,
			Status:    c.Status,
			Comment:   fmt.Sprintf("invoice #%d issued", inv.ID),
			ActorID:   actor.ID,
			ActorRole: actor.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice issued", "case_id", caseID, "invoice_id", inv.ID, "amount_cents", amountCents)
	s.dispatcher.Dispatch(ctx, c, []workflow.Effect{invoiceSlotEffect(c.Ref(), workflow.RoleChecker, workflow.NotifyInvoiceIssued)})
	return inv, nil
}

// UploadReceipt advances PENDING → RECEIPT_UPLOADED with the stored receipt
func (s *invoiceServiceImpl) UploadReceipt(ctx context.Context, actor workflow.Actor, caseID, invoiceID int64, receiptRef string) (*entity.Invoice, error) {
	c, inv, err := s.loadInvoice(ctx, caseID, invoiceID)
	if err != nil {
		return nil, err
	}

	next, err := workflow.TransitionInvoice(c.Ref(), inv.Status, workflow.InvoiceActionUploadReceipt, actor, receiptRef)
	if err != nil {
		return nil, err
	}

	inv.Status = next
	inv.ReceiptRef = receiptRef
	inv.UploadedBy = actor.ID

	err = s.commit(ctx, inv, &entity.HistoryEntry{
		CaseID:    caseID,
		Status:    c.Status,
		Comment:   fmt.Sprintf("receipt uploaded for invoice #%d", inv.ID),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Receipt uploaded", "case_id", caseID, "invoice_id", inv.ID)
	s.dispatcher.Dispatch(ctx, c, []workflow.Effect{invoiceSlotEffect(c.Ref(), workflow.RoleLawyer, workflow.NotifyReceiptUploaded)})
	return inv, nil
}

// ApproveReceipt advances RECEIPT_UPLOADED → PAID and fires the multi-target
// paid notification set
func (s *invoiceServiceImpl) ApproveReceipt(ctx context.Context, actor workflow.Actor, caseID, invoiceID int64) (*entity.Invoice, error) {
	c, inv, err := s.loadInvoice(ctx, caseID, invoiceID)
	if err != nil {
		return nil, err
	}

	next, err := workflow.TransitionInvoice(c.Ref(), inv.Status, workflow.InvoiceActionApproveReceipt, actor, inv.ReceiptRef)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inv.Status = next
	inv.ApprovedBy = actor.ID
	inv.PaidAt = &now

	err = s.commit(ctx, inv, &entity.HistoryEntry{
		CaseID:    caseID,
		Status:    c.Status,
		Comment:   fmt.Sprintf("invoice #%d paid", inv.ID),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice paid", "case_id", caseID, "invoice_id", inv.ID)
	s.dispatcher.Dispatch(ctx, c, workflow.InvoicePaidEffects(c.Ref()))
	return inv, nil
}

func (s *invoiceServiceImpl) loadCase(ctx context.Context, caseID int64) (*entity.Case, error) {
	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: case %d", workflow.ErrNotFound, caseID)
	}
	return c, nil
}

func (s *invoiceServiceImpl) loadInvoice(ctx context.Context, caseID, invoiceID int64) (*entity.Case, *entity.Invoice, error) {
	c, err := s.loadCase(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}
	inv, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil || inv.CaseID != caseID {
		return nil, nil, fmt.Errorf("%w: invoice %d on case %d", workflow.ErrNotFound, invoiceID, caseID)
	}
	return c, inv, nil
}

func (s *invoiceServiceImpl) commit(ctx context.Context, inv *entity.Invoice, entry *entity.HistoryEntry) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Update(txCtx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
}

// invoiceSlotEffect mirrors the table's assigned-slot-or-role-pool targeting
// for invoice notifications.
func invoiceSlotEffect(c workflow.CaseRef, role workflow.Role, t workflow.NotificationType) workflow.Effect {
	switch role {
	case workflow.RoleChecker:
		if c.AssignedChecker != "" {
			return workflow.Effect{TargetUser: c.AssignedChecker, Type: t}
		}
	case workflow.RoleLawyer:
		if c.AssignedLawyer != "" {
			return workflow.Effect{TargetUser: c.AssignedLawyer, Type: t}
		}
	case workflow.RoleOperator:
		if c.AssignedOperator != "" {
			return workflow.Effect{TargetUser: c.AssignedOperator, Type: t}
		}
	}
	return workflow.Effect{TargetRole: role, Type: t}
}
