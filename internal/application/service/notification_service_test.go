package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

type mockChannel struct {
	sendFunc func(ctx context.Context, userID, title, message string) error

	sent []string
}

func (m *mockChannel) Send(ctx context.Context, userID, title, message string) error {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, userID, title, message)
	}
	m.sent = append(m.sent, userID)
	return nil
}

func rolePool(users map[workflow.Role][]string) func(ctx context.Context, role workflow.Role) ([]*entity.User, error) {
	return func(ctx context.Context, role workflow.Role) ([]*entity.User, error) {
		var out []*entity.User
		for _, id := range users[role] {
			out = append(out, &entity.User{ID: id, Role: role, Active: true})
		}
		return out, nil
	}
}

func TestNotificationService_Dispatch(t *testing.T) {
	c := &entity.Case{ID: 5, BrandName: "Lathera"}

	t.Run("role effect fans out to every holder", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		users := &mockUserRepo{listByRoleFunc: rolePool(map[workflow.Role][]string{
			workflow.RoleChecker: {"ch1", "ch2"},
		})}
		channel := &mockChannel{}
		svc := NewNotificationService(repo, users, channel, nopLogger{})

		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetRole: workflow.RoleChecker, Type: workflow.NotifyBrandReviewRequested},
		})

		if len(repo.created) != 2 {
			t.Fatalf("persisted = %d, want 2", len(repo.created))
		}
		if len(channel.sent) != 2 {
			t.Errorf("channel deliveries = %d, want 2", len(channel.sent))
		}
		for _, n := range repo.created {
			if n.CaseID != 5 || n.Type != workflow.NotifyBrandReviewRequested {
				t.Errorf("notification = %+v", n)
			}
			if n.Link != "/cases/5" {
				t.Errorf("link = %q", n.Link)
			}
		}
	})

	t.Run("user effect targets exactly one recipient", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		svc := NewNotificationService(repo, &mockUserRepo{}, nil, nopLogger{})

		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetUser: "op1", Type: workflow.NotifyBrandRejected},
		})

		if len(repo.created) != 1 || repo.created[0].TargetUser != "op1" {
			t.Fatalf("created = %+v", repo.created)
		}
	})

	t.Run("same recipient and type delivered once", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		users := &mockUserRepo{listByRoleFunc: rolePool(map[workflow.Role][]string{
			workflow.RoleOperator: {"op1"},
		})}
		svc := NewNotificationService(repo, users, nil, nopLogger{})

		// op1 is both the assigned operator and a member of the operator pool.
		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetRole: workflow.RoleOperator, Type: workflow.NotifyInvoicePaid},
			{TargetUser: "op1", Type: workflow.NotifyInvoicePaid},
		})

		if len(repo.created) != 1 {
			t.Fatalf("persisted = %d, want 1 after dedupe", len(repo.created))
		}
	})

	t.Run("channel failure never drops the feed entry", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		channel := &mockChannel{sendFunc: func(ctx context.Context, userID, title, message string) error {
			return fmt.Errorf("messenger unreachable")
		}}
		svc := NewNotificationService(repo, &mockUserRepo{}, channel, nopLogger{})

		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetUser: "op1", Type: workflow.NotifyCaseArchived},
		})

		if len(repo.created) != 1 {
			t.Errorf("persisted = %d, want 1 despite channel failure", len(repo.created))
		}
	})

	t.Run("persist failure skips the channel", func(t *testing.T) {
		repo := &mockNotificationRepo{createFunc: func(ctx context.Context, n *entity.Notification) error {
			return fmt.Errorf("disk full")
		}}
		channel := &mockChannel{}
		svc := NewNotificationService(repo, &mockUserRepo{}, channel, nopLogger{})

		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetUser: "op1", Type: workflow.NotifyCaseArchived},
		})

		if len(channel.sent) != 0 {
			t.Errorf("channel deliveries = %d, want 0", len(channel.sent))
		}
	})

	t.Run("fan-out lookup failure is swallowed", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		users := &mockUserRepo{listByRoleFunc: func(ctx context.Context, role workflow.Role) ([]*entity.User, error) {
			return nil, fmt.Errorf("db closed")
		}}
		svc := NewNotificationService(repo, users, nil, nopLogger{})

		svc.Dispatch(context.Background(), c, []workflow.Effect{
			{TargetRole: workflow.RoleChecker, Type: workflow.NotifySentToLegal},
		})

		if len(repo.created) != 0 {
			t.Errorf("persisted = %d, want 0", len(repo.created))
		}
	})
}

func TestNotificationService_Advisory(t *testing.T) {
	t.Run("assigned checker gets the note directly", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		svc := NewNotificationService(repo, &mockUserRepo{}, nil, nopLogger{})

		svc.Advisory(context.Background(), &entity.Case{ID: 5, AssignedChecker: "ch1"}, "possible conflict in class 9")

		if len(repo.created) != 1 {
			t.Fatalf("persisted = %d, want 1", len(repo.created))
		}
		n := repo.created[0]
		if n.TargetUser != "ch1" || n.Type != workflow.NotifyBrandCheckAdvisory {
			t.Errorf("notification = %+v", n)
		}
		if n.Message != "possible conflict in class 9" {
			t.Errorf("message = %q", n.Message)
		}
	})

	t.Run("unassigned case falls back to the checker pool", func(t *testing.T) {
		repo := &mockNotificationRepo{}
		users := &mockUserRepo{listByRoleFunc: rolePool(map[workflow.Role][]string{
			workflow.RoleChecker: {"ch1", "ch2"},
		})}
		svc := NewNotificationService(repo, users, nil, nopLogger{})

		svc.Advisory(context.Background(), &entity.Case{ID: 5}, "note")

		if len(repo.created) != 2 {
			t.Errorf("persisted = %d, want 2", len(repo.created))
		}
	})
}

func TestNotificationService_Feed(t *testing.T) {
	actor := workflow.Actor{ID: "op1", Role: workflow.RoleOperator}

	t.Run("list applies default limit", func(t *testing.T) {
		var gotLimit int
		repo := &mockNotificationRepo{listForUserFunc: func(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
			gotLimit = limit
			return []*entity.Notification{{ID: 1, TargetUser: userID}}, nil
		}}
		svc := NewNotificationService(repo, &mockUserRepo{}, nil, nopLogger{})

		feed, err := svc.ListForActor(context.Background(), actor, 0)
		if err != nil {
			t.Fatalf("ListForActor() error = %v", err)
		}
		if gotLimit != 50 {
			t.Errorf("limit = %d, want default 50", gotLimit)
		}
		if len(feed) != 1 {
			t.Errorf("feed = %d entries", len(feed))
		}
	})

	t.Run("mark read wraps repository errors", func(t *testing.T) {
		repo := &mockNotificationRepo{markReadFunc: func(ctx context.Context, id int64, userID string) error {
			return fmt.Errorf("%w: notification %d", workflow.ErrNotFound, id)
		}}
		svc := NewNotificationService(repo, &mockUserRepo{}, nil, nopLogger{})

		err := svc.MarkRead(context.Background(), actor, 9)
		if !errors.Is(err, workflow.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}
