package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/aggregates/employee"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/authz"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/itf"
)

var errMockNotFound = errors.New("not found")

type mockEmployeeRepo struct {
	employees map[uuid.UUID]*employee.Employee
	called    bool
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[uuid.UUID]*employee.Employee)}
}

func (m *mockEmployeeRepo) mark() { m.called = true }

func (m *mockEmployeeRepo) Count(ctx context.Context) (int64, error) {
	m.mark()
	var count int64
	for _, e := range m.employees {
		if e.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *mockEmployeeRepo) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	m.mark()
	out := make([]*employee.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		if e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEmployeeRepo) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	m.mark()
	out := make([]*employee.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		if params != nil && params.ActiveOnly && !e.IsActive() {
			continue
		}
		if params != nil && params.PositionID != nil {
			if e.PositionID() == nil || *e.PositionID() != *params.PositionID {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEmployeeRepo) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	m.mark()
	e, ok := m.employees[id]
	if !ok {
		return nil, errMockNotFound
	}
	return e, nil
}

func (m *mockEmployeeRepo) GetByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	m.mark()
	for _, e := range m.employees {
		if e.Email() == email {
			return e, nil
		}
	}
	return nil, errMockNotFound
}

func (m *mockEmployeeRepo) Create(ctx context.Context, data *employee.Employee) (*employee.Employee, error) {
	m.mark()
	m.employees[data.ID()] = data
	return data, nil
}

func (m *mockEmployeeRepo) Update(ctx context.Context, data *employee.Employee) error {
	m.mark()
	if _, ok := m.employees[data.ID()]; !ok {
		return errMockNotFound
	}
	m.employees[data.ID()] = data
	return nil
}

type stubHierarchyRepo struct {
	hierarchy.Repository
	nodes map[uuid.UUID]*hierarchy.Node
}

func (s *stubHierarchyRepo) GetNodeByID(ctx context.Context, id uuid.UUID) (*hierarchy.Node, error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, errMockNotFound
	}
	return node, nil
}

type stubPublisher struct{}

func (s *stubPublisher) Publish(args ...interface{})     {}
func (s *stubPublisher) Subscribe(handler interface{})   {}
func (s *stubPublisher) Unsubscribe(handler interface{}) {}
func (s *stubPublisher) Clear()                          {}
func (s *stubPublisher) SubscribersCount() int           { return 0 }

func setupEmployeeService(t *testing.T) (*EmployeeService, *mockEmployeeRepo, *stubHierarchyRepo, context.Context) {
	t.Helper()
	t.Cleanup(func() { authorizeHRMFn = defaultAuthorizeHRM })
	authorizeHRMFn = func(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
		return nil
	}
	repo := newMockEmployeeRepo()
	hierarchyRepo := &stubHierarchyRepo{nodes: make(map[uuid.UUID]*hierarchy.Node)}
	svc := NewEmployeeService(repo, hierarchyRepo, &stubPublisher{})
	ctx := itf.NewTestContext().Build()
	return svc, repo, hierarchyRepo, ctx
}

func TestCreateEmployee_Succeeds(t *testing.T) {
	svc, repo, _, ctx := setupEmployeeService(t)

	created, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com",
		employee.WithSalary(decimal.NewFromInt(90000)),
	)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", created.FullName())
	require.True(t, created.IsActive())
	require.Contains(t, repo.employees, created.ID())
}

func TestCreateEmployee_DuplicateEmail(t *testing.T) {
	svc, _, _, ctx := setupEmployeeService(t)

	_, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Augusta", "King", "ada@example.com")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateEmployee_ChangesContactAndSalary(t *testing.T) {
	svc, _, _, ctx := setupEmployeeService(t)

	created, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID(), "Ada", "King", "ada.king@example.com", "+100", decimal.NewFromInt(95000))
	require.NoError(t, err)
	require.Equal(t, "Ada King", updated.FullName())
	require.Equal(t, "ada.king@example.com", updated.Email())
	require.True(t, updated.Salary().Equal(decimal.NewFromInt(95000)))
}

func TestAssignPosition_RequiresActiveNode(t *testing.T) {
	svc, _, hierarchyRepo, ctx := setupEmployeeService(t)

	created, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	active := hierarchy.NewNode(uuid.New(), "Engineering", "ENG")
	inactive := hierarchy.NewNode(uuid.New(), "Archive", "ARC")
	inactive.Deactivate()
	hierarchyRepo.nodes[active.ID()] = active
	hierarchyRepo.nodes[inactive.ID()] = inactive

	activeID := active.ID()
	updated, err := svc.AssignPosition(ctx, created.ID(), &activeID)
	require.NoError(t, err)
	require.NotNil(t, updated.PositionID())
	require.Equal(t, activeID, *updated.PositionID())

	inactiveID := inactive.ID()
	_, err = svc.AssignPosition(ctx, created.ID(), &inactiveID)
	require.ErrorIs(t, err, ErrPositionInactive)

	cleared, err := svc.AssignPosition(ctx, created.ID(), nil)
	require.NoError(t, err)
	require.Nil(t, cleared.PositionID())
}

func TestDeactivateEmployee(t *testing.T) {
	svc, repo, _, ctx := setupEmployeeService(t)

	created, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, created.ID()))
	require.False(t, repo.employees[created.ID()].IsActive())

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEmployeeService_AuthorizeCreateDenied(t *testing.T) {
	t.Cleanup(func() { authorizeHRMFn = defaultAuthorizeHRM })

	svc, repo, _, ctx := setupEmployeeService(t)

	authorizeHRMFn = func(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
		require.Equal(t, EmployeesAuthzObject, object)
		require.Equal(t, "create", action)
		return errors.New("forbidden")
	}

	_, err := svc.Create(ctx, "Ada", "Lovelace", "ada@example.com")
	require.Error(t, err)
	require.False(t, repo.called, "repository should not be called when authorization fails")
}

func TestEmployeeService_AuthorizeUpdateDenied(t *testing.T) {
	t.Cleanup(func() { authorizeHRMFn = defaultAuthorizeHRM })

	svc, repo, _, ctx := setupEmployeeService(t)

	authorizeHRMFn = func(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
		require.Equal(t, EmployeesAuthzObject, object)
		require.Equal(t, "update", action)
		return errors.New("forbidden")
	}

	_, err := svc.Update(ctx, uuid.New(), "Ada", "Lovelace", "ada@example.com", "", decimal.Zero)
	require.Error(t, err)
	require.False(t, repo.called, "repository should not be called when authorization fails")
}

func TestEmployeeService_AuthorizeDeleteDenied(t *testing.T) {
	t.Cleanup(func() { authorizeHRMFn = defaultAuthorizeHRM })

	svc, repo, _, ctx := setupEmployeeService(t)

	authorizeHRMFn = func(ctx context.Context, object, action string, opts ...authz.RequestOption) error {
		require.Equal(t, EmployeesAuthzObject, object)
		require.Equal(t, "delete", action)
		return errors.New("forbidden")
	}

	err := svc.Deactivate(ctx, uuid.New())
	require.Error(t, err)
	require.False(t, repo.called, "repository should not be called when authorization fails")
}
