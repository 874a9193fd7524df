package service

import (
	"context"
	"fmt"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// NotificationService dispatches post-commit effects and serves the in-app
// notification feed. Dispatch is best-effort: every failure is logged and
// swallowed, never surfaced to the transition that produced the effect.
type NotificationService interface {
	Dispatcher
	ListForActor(ctx context.Context, actor workflow.Actor, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, actor workflow.Actor, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	userRepo         port.UserRepository
	channel          port.MessageChannel
	logger           Logger
}

// NewNotificationService creates a new NotificationService. channel may be
// nil when no external messenger is configured.
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	userRepo port.UserRepository,
	channel port.MessageChannel,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		channel:          channel,
		logger:           logger,
	}
}

// Dispatch resolves each effect to concrete recipients (role tag fans out to
// every current holder) and delivers, deduplicating per recipient and type
// within one call.
func (s *notificationServiceImpl) Dispatch(ctx context.Context, c *entity.Case, effects []workflow.Effect) {
	seen := make(map[string]bool)

	for _, eff := range effects {
		title, message := render(eff.Type, c)

		if eff.TargetUser != "" {
			s.deliver(ctx, c, eff, eff.TargetUser, title, message, seen)
			continue
		}

		users, err := s.userRepo.ListByRole(ctx, eff.TargetRole)
		if err != nil {
			s.logger.Error("Notification fan-out failed",
				"case_id", c.ID, "role", eff.TargetRole.String(), "error", err)
			continue
		}
		for _, u := range users {
			s.deliver(ctx, c, eff, u.ID, title, message, seen)
		}
	}
}

// Advisory delivers a brand-check note to the case's checker slot
func (s *notificationServiceImpl) Advisory(ctx context.Context, c *entity.Case, note string) {
	eff := workflow.Effect{TargetRole: workflow.RoleChecker, Type: workflow.NotifyBrandCheckAdvisory}
	if c.AssignedChecker != "" {
		eff = workflow.Effect{TargetUser: c.AssignedChecker, Type: workflow.NotifyBrandCheckAdvisory}
	}

	title := fmt.Sprintf("Brand check notes for case #%d", c.ID)
	seen := make(map[string]bool)

	if eff.TargetUser != "" {
		s.deliver(ctx, c, eff, eff.TargetUser, title, note, seen)
		return
	}
	users, err := s.userRepo.ListByRole(ctx, eff.TargetRole)
	if err != nil {
		s.logger.Error("Advisory fan-out failed", "case_id", c.ID, "error", err)
		return
	}
	for _, u := range users {
		s.deliver(ctx, c, eff, u.ID, title, note, seen)
	}
}

// ListForActor returns the actor's notification feed, newest first
func (s *notificationServiceImpl) ListForActor(ctx context.Context, actor workflow.Actor, limit int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.notificationRepo.ListForUser(ctx, actor.ID, limit)
}

// MarkRead dismisses one notification belonging to the actor
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor workflow.Actor, id int64) error {
	if err := s.notificationRepo.MarkRead(ctx, id, actor.ID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *notificationServiceImpl) deliver(ctx context.Context, c *entity.Case, eff workflow.Effect, userID, title, message string, seen map[string]bool) {
	key := userID + "|" + string(eff.Type)
	if seen[key] {
		return
	}
	seen[key] = true

	n := &entity.Notification{
		TargetRole: eff.TargetRole,
		TargetUser: userID,
		CaseID:     c.ID,
		Type:       eff.Type,
		Title:      title,
		Message:    message,
		Link:       fmt.Sprintf("/cases/%d", c.ID),
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to persist notification",
			"case_id", c.ID, "user", userID, "type", string(eff.Type), "error", err)
		return
	}

	if s.channel != nil {
		if err := s.channel.Send(ctx, userID, title, message); err != nil {
			s.logger.Error("Channel delivery failed",
				"case_id", c.ID, "user", userID, "error", err)
		}
	}
}

// render builds the human-readable title and message for a notification type
func render(t workflow.NotificationType, c *entity.Case) (string, string) {
	ref := fmt.Sprintf("case #%d", c.ID)
	if c.BrandName != "" {
		ref = fmt.Sprintf("case #%d (%s)", c.ID, c.BrandName)
	}

	switch t {
	case workflow.NotifyBrandReviewRequested:
		return "Brand review requested", fmt.Sprintf("%s is waiting for a brand review", ref)
	case workflow.NotifyBrandApproved:
		return "Brand approved", fmt.Sprintf("The brand on %s was approved; collect client documents", ref)
	case workflow.NotifyBrandRejected:
		return "Brand rejected", fmt.Sprintf("The brand on %s was rejected and returned to you", ref)
	case workflow.NotifyDocumentsSubmitted:
		return "Documents submitted", fmt.Sprintf("%s has a document bundle to check", ref)
	case workflow.NotifyDocumentsReturned:
		return "Documents returned", fmt.Sprintf("The documents on %s were returned for rework", ref)
	case workflow.NotifySentToLegal:
		return "Case sent to legal", fmt.Sprintf("%s is waiting for a lawyer to accept it", ref)
	case workflow.NotifyLegalAccepted:
		return "Case accepted by lawyer", fmt.Sprintf("A lawyer started work on %s", ref)
	case workflow.NotifyLegalCompleted:
		return "Legal work completed", fmt.Sprintf("The registration certificate for %s is ready", ref)
	case workflow.NotifyCaseArchived:
		return "Case archived", fmt.Sprintf("%s was archived", ref)
	case workflow.NotifyCaseRejected:
		return "Case rejected", fmt.Sprintf("%s was terminally rejected", ref)
	case workflow.NotifyInvoiceIssued:
		return "Invoice issued", fmt.Sprintf("A payment request was issued on %s", ref)
	case workflow.NotifyReceiptUploaded:
		return "Receipt uploaded", fmt.Sprintf("A payment receipt on %s is waiting for approval", ref)
	case workflow.NotifyInvoicePaid:
		return "Invoice paid", fmt.Sprintf("A payment on %s was confirmed", ref)
	default:
		return string(t), ref
	}
}
