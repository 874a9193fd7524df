package service

import (
	"context"

	"github.com/markreg/caseflow/internal/application/port"
	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/markreg/caseflow/internal/domain/workflow"
)

// Mock repositories with overridable behavior per test

type mockCaseRepo struct {
	createFunc         func(ctx context.Context, c *entity.Case) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.Case, error)
	listFunc           func(ctx context.Context, f port.CaseFilter) ([]*entity.Case, error)
	saveFunc           func(ctx context.Context, c *entity.Case) error
	deleteFunc         func(ctx context.Context, id int64) error
	replaceClassesFunc func(ctx context.Context, caseID int64, classes []int) error

	saved []*entity.Case
}

func (m *mockCaseRepo) Create(ctx context.Context, c *entity.Case) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	c.ID = 1
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id int64) (*entity.Case, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCaseRepo) List(ctx context.Context, f port.CaseFilter) ([]*entity.Case, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, f)
	}
	return nil, nil
}

func (m *mockCaseRepo) Save(ctx context.Context, c *entity.Case) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	snapshot := *c
	m.saved = append(m.saved, &snapshot)
	return nil
}

func (m *mockCaseRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockCaseRepo) ReplaceClasses(ctx context.Context, caseID int64, classes []int) error {
	if m.replaceClassesFunc != nil {
		return m.replaceClassesFunc(ctx, caseID, classes)
	}
	return nil
}

type mockDocRepo struct {
	createFunc       func(ctx context.Context, d *entity.Document) error
	getByCaseIDFunc  func(ctx context.Context, caseID int64) ([]*entity.Document, error)
	deleteBundleFunc func(ctx context.Context, caseID int64, bundle entity.DocumentBundle) error

	created        []*entity.Document
	deletedBundles []entity.DocumentBundle
}

func (m *mockDocRepo) Create(ctx context.Context, d *entity.Document) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, d)
	}
	m.created = append(m.created, d)
	return nil
}

func (m *mockDocRepo) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Document, error) {
	if m.getByCaseIDFunc != nil {
		return m.getByCaseIDFunc(ctx, caseID)
	}
	return nil, nil
}

func (m *mockDocRepo) DeleteBundle(ctx context.Context, caseID int64, bundle entity.DocumentBundle) error {
	if m.deleteBundleFunc != nil {
		return m.deleteBundleFunc(ctx, caseID, bundle)
	}
	m.deletedBundles = append(m.deletedBundles, bundle)
	return nil
}

type mockHistoryRepo struct {
	appendFunc      func(ctx context.Context, e *entity.HistoryEntry) error
	getByCaseIDFunc func(ctx context.Context, caseID int64) ([]*entity.HistoryEntry, error)

	appended []*entity.HistoryEntry
}

func (m *mockHistoryRepo) Append(ctx context.Context, e *entity.HistoryEntry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, e)
	}
	e.Seq = int64(len(m.appended) + 1)
	m.appended = append(m.appended, e)
	return nil
}

func (m *mockHistoryRepo) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.HistoryEntry, error) {
	if m.getByCaseIDFunc != nil {
		return m.getByCaseIDFunc(ctx, caseID)
	}
	return m.appended, nil
}

type mockInvoiceRepo struct {
	createFunc      func(ctx context.Context, inv *entity.Invoice) error
	getByIDFunc     func(ctx context.Context, id int64) (*entity.Invoice, error)
	getByCaseIDFunc func(ctx context.Context, caseID int64) ([]*entity.Invoice, error)
	updateFunc      func(ctx context.Context, inv *entity.Invoice) error

	updated []*entity.Invoice
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, inv)
	}
	inv.ID = 1
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*entity.Invoice, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) GetByCaseID(ctx context.Context, caseID int64) ([]*entity.Invoice, error) {
	if m.getByCaseIDFunc != nil {
		return m.getByCaseIDFunc(ctx, caseID)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, inv)
	}
	snapshot := *inv
	m.updated = append(m.updated, &snapshot)
	return nil
}

type mockNotificationRepo struct {
	createFunc      func(ctx context.Context, n *entity.Notification) error
	listForUserFunc func(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	markReadFunc    func(ctx context.Context, id int64, userID string) error

	created []*entity.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	if m.listForUserFunc != nil {
		return m.listForUserFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id int64, userID string) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, userID)
	}
	return nil
}

type mockUserRepo struct {
	getByIDFunc    func(ctx context.Context, id string) (*entity.User, error)
	getByTokenFunc func(ctx context.Context, token string) (*entity.User, error)
	listByRoleFunc func(ctx context.Context, role workflow.Role) ([]*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByToken(ctx context.Context, token string) (*entity.User, error) {
	if m.getByTokenFunc != nil {
		return m.getByTokenFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role workflow.Role) ([]*entity.User, error) {
	if m.listByRoleFunc != nil {
		return m.listByRoleFunc(ctx, role)
	}
	return nil, nil
}

// mockTxManager runs the callback inline; commits counts successful runs
type mockTxManager struct {
	commits int
	failErr error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.failErr != nil {
		return m.failErr
	}
	if err := fn(ctx); err != nil {
		return err
	}
	m.commits++
	return nil
}

type mockDispatcher struct {
	dispatched [][]workflow.Effect
	advisories []string
}

func (m *mockDispatcher) Dispatch(ctx context.Context, c *entity.Case, effects []workflow.Effect) {
	m.dispatched = append(m.dispatched, effects)
}

func (m *mockDispatcher) Advisory(ctx context.Context, c *entity.Case, note string) {
	m.advisories = append(m.advisories, note)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
