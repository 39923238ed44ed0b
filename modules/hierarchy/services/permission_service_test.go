package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/permission"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/itf"
)

type mockPermissionRepo struct {
	roles        map[uuid.UUID]*permission.DynamicRole
	permissions  map[uuid.UUID]*permission.ContextualPermission
	inheritances map[uuid.UUID]*permission.Inheritance
}

func newMockPermissionRepo() *mockPermissionRepo {
	return &mockPermissionRepo{
		roles:        make(map[uuid.UUID]*permission.DynamicRole),
		permissions:  make(map[uuid.UUID]*permission.ContextualPermission),
		inheritances: make(map[uuid.UUID]*permission.Inheritance),
	}
}

func (m *mockPermissionRepo) CreateRole(_ context.Context, data *permission.DynamicRole) (*permission.DynamicRole, error) {
	m.roles[data.ID()] = data
	return data, nil
}

func (m *mockPermissionRepo) GetRoleByID(_ context.Context, id uuid.UUID) (*permission.DynamicRole, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, errMockNotFound
	}
	return role, nil
}

func (m *mockPermissionRepo) GetRolesForHierarchy(_ context.Context, hierarchyID uuid.UUID) ([]*permission.DynamicRole, error) {
	out := make([]*permission.DynamicRole, 0, len(m.roles))
	for _, role := range m.roles {
		if role.HierarchyID() == hierarchyID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (m *mockPermissionRepo) CreatePermission(_ context.Context, data *permission.ContextualPermission) (*permission.ContextualPermission, error) {
	m.permissions[data.ID()] = data
	return data, nil
}

func (m *mockPermissionRepo) GetPermissionByID(_ context.Context, id uuid.UUID) (*permission.ContextualPermission, error) {
	p, ok := m.permissions[id]
	if !ok {
		return nil, errMockNotFound
	}
	return p, nil
}

func (m *mockPermissionRepo) GetPermissionsForUser(_ context.Context, userID uuid.UUID) ([]*permission.ContextualPermission, error) {
	out := make([]*permission.ContextualPermission, 0, len(m.permissions))
	for _, p := range m.permissions {
		if p.UserID() == userID && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPermissionRepo) GetDerivedPermissions(_ context.Context, sourcePermissionID uuid.UUID) ([]*permission.ContextualPermission, error) {
	out := make([]*permission.ContextualPermission, 0, len(m.permissions))
	for _, p := range m.permissions {
		if p.InheritedFrom() != nil && *p.InheritedFrom() == sourcePermissionID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPermissionRepo) UpdatePermission(_ context.Context, data *permission.ContextualPermission) error {
	m.permissions[data.ID()] = data
	return nil
}

func (m *mockPermissionRepo) DeleteDerivedPermissions(_ context.Context, sourcePermissionID uuid.UUID) error {
	for id, p := range m.permissions {
		if p.InheritedFrom() != nil && *p.InheritedFrom() == sourcePermissionID {
			delete(m.permissions, id)
		}
	}
	return nil
}

func (m *mockPermissionRepo) CreateInheritance(_ context.Context, data *permission.Inheritance) (*permission.Inheritance, error) {
	m.inheritances[data.ID()] = data
	return data, nil
}

func (m *mockPermissionRepo) GetInheritancesForPermission(_ context.Context, sourcePermissionID uuid.UUID) ([]*permission.Inheritance, error) {
	out := make([]*permission.Inheritance, 0, len(m.inheritances))
	for _, inh := range m.inheritances {
		if inh.SourcePermissionID() == sourcePermissionID {
			out = append(out, inh)
		}
	}
	return out, nil
}

func (m *mockPermissionRepo) UpdateInheritance(_ context.Context, data *permission.Inheritance) error {
	m.inheritances[data.ID()] = data
	return nil
}

type permissionFixture struct {
	svc       *services.PermissionService
	repo      *mockPermissionRepo
	ctx       context.Context
	hierarchy *services.BuildResult
	role      *permission.DynamicRole
	userID    uuid.UUID
}

func setupPermissionService(t *testing.T) *permissionFixture {
	t.Helper()
	hierarchyRepo := newMockHierarchyRepo()
	permissionRepo := newMockPermissionRepo()
	bus := eventbus.NewEventPublisher(logrus.New())
	tc := itf.NewTestContext()
	ctx := tc.Build()

	hierarchySvc := services.NewHierarchyService(hierarchyRepo, bus)
	result, err := hierarchySvc.BuildHierarchy(ctx, hierarchy.TypeOrganizational, "Org", threeLevelSpecs())
	require.NoError(t, err)

	svc := services.NewPermissionService(permissionRepo, hierarchyRepo, bus)
	role, err := svc.CreateRole(ctx, result.Definition.ID(), "approver", permission.WithActions([]string{"leave.approve"}))
	require.NoError(t, err)

	return &permissionFixture{
		svc:       svc,
		repo:      permissionRepo,
		ctx:       ctx,
		hierarchy: result,
		role:      role,
		userID:    tc.UserID(),
	}
}

func TestGrant_WithRulePropagates(t *testing.T) {
	f := setupPermissionService(t)
	root, mid, leaf := f.hierarchy.Nodes[0], f.hierarchy.Nodes[1], f.hierarchy.Nodes[2]

	granted, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{MaxDepth: 1})
	require.NoError(t, err)
	require.True(t, granted.IsDirect())

	derived, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Len(t, derived, 1)
	require.Equal(t, mid.ID(), derived[0].NodeID())
	require.False(t, derived[0].IsDirect())

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, leaf.ID(), time.Now())
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func TestGrant_UnlimitedRuleReachesWholeSubtree(t *testing.T) {
	f := setupPermissionService(t)
	root := f.hierarchy.Nodes[0]

	granted, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)

	derived, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Len(t, derived, 2)
}

func TestGrant_RuleExcludesCodes(t *testing.T) {
	f := setupPermissionService(t)
	root, leaf := f.hierarchy.Nodes[0], f.hierarchy.Nodes[2]

	granted, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{
		ExcludeCodes: []string{"B"},
	})
	require.NoError(t, err)

	derived, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Len(t, derived, 1)
	require.Equal(t, leaf.ID(), derived[0].NodeID())
}

func TestRecomputeInherited_DropsStaleCopies(t *testing.T) {
	f := setupPermissionService(t)
	root := f.hierarchy.Nodes[0]

	granted, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)

	before, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Len(t, before, 2)

	count, err := f.svc.RecomputeInherited(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Equal(t, 2, count)

	after, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Len(t, after, 2)
	for _, p := range after {
		require.NotContains(t, permissionIDs(before), p.ID())
	}
}

func TestResolve_DirectBeatsInherited(t *testing.T) {
	f := setupPermissionService(t)
	root, mid := f.hierarchy.Nodes[0], f.hierarchy.Nodes[1]

	_, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)
	direct, err := f.svc.Grant(f.ctx, f.userID, mid.ID(), f.role.ID(), nil)
	require.NoError(t, err)

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, mid.ID(), time.Now())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, direct.ID(), resolved[0].ID())
	require.True(t, resolved[0].IsDirect())
}

func TestResolve_NearestAncestorWins(t *testing.T) {
	f := setupPermissionService(t)
	root, mid, leaf := f.hierarchy.Nodes[0], f.hierarchy.Nodes[1], f.hierarchy.Nodes[2]

	_, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)
	fromMid, err := f.svc.Grant(f.ctx, f.userID, mid.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, leaf.ID(), time.Now())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.False(t, resolved[0].IsDirect())
	require.Equal(t, fromMid.ID(), *resolved[0].InheritedFrom())
}

func TestResolve_ExpiredGrantExcluded(t *testing.T) {
	f := setupPermissionService(t)
	mid := f.hierarchy.Nodes[1]

	until := time.Now().Add(-time.Hour)
	_, err := f.svc.Grant(
		f.ctx, f.userID, mid.ID(), f.role.ID(), nil,
		permission.WithWindow(time.Now().Add(-2*time.Hour), &until),
	)
	require.NoError(t, err)

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, mid.ID(), time.Now())
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func TestResolve_TieBreaksOnLatestEffectiveFrom(t *testing.T) {
	f := setupPermissionService(t)
	mid := f.hierarchy.Nodes[1]

	older, err := f.svc.Grant(
		f.ctx, f.userID, mid.ID(), f.role.ID(), nil,
		permission.WithWindow(time.Now().Add(-48*time.Hour), nil),
	)
	require.NoError(t, err)
	newer, err := f.svc.Grant(
		f.ctx, f.userID, mid.ID(), f.role.ID(), nil,
		permission.WithWindow(time.Now().Add(-time.Hour), nil),
	)
	require.NoError(t, err)

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, mid.ID(), time.Now())
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	require.Equal(t, newer.ID(), resolved[0].ID())
	require.NotEqual(t, older.ID(), resolved[0].ID())
}

func TestRevoke_DropsDerivedCopies(t *testing.T) {
	f := setupPermissionService(t)
	root := f.hierarchy.Nodes[0]

	granted, err := f.svc.Grant(f.ctx, f.userID, root.ID(), f.role.ID(), &permission.InheritanceRule{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Revoke(f.ctx, granted.ID()))

	derived, err := f.repo.GetDerivedPermissions(f.ctx, granted.ID())
	require.NoError(t, err)
	require.Empty(t, derived)

	resolved, err := f.svc.ResolveEffectivePermissions(f.ctx, f.userID, root.ID(), time.Now())
	require.NoError(t, err)
	require.Empty(t, resolved)
}

func permissionIDs(perms []*permission.ContextualPermission) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.ID())
	}
	return out
}
