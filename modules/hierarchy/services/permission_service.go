package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/permission"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

type PermissionGrantedEvent struct {
	Result *permission.ContextualPermission
}

type InheritedPermissionsRecomputedEvent struct {
	SourcePermissionID uuid.UUID
	DerivedCount       int
}

type PermissionService struct {
	repo          permission.Repository
	hierarchyRepo hierarchy.Repository
	publisher     eventbus.EventBus
}

func NewPermissionService(
	repo permission.Repository,
	hierarchyRepo hierarchy.Repository,
	publisher eventbus.EventBus,
) *PermissionService {
	return &PermissionService{
		repo:          repo,
		hierarchyRepo: hierarchyRepo,
		publisher:     publisher,
	}
}

func (s *PermissionService) CreateRole(
	ctx context.Context,
	hierarchyID uuid.UUID,
	name string,
	opts ...permission.RoleOption,
) (*permission.DynamicRole, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*permission.DynamicRole, error) {
		return s.repo.CreateRole(txCtx, permission.NewDynamicRole(hierarchyID, name, opts...))
	})
}

func (s *PermissionService) GetRolesForHierarchy(ctx context.Context, hierarchyID uuid.UUID) ([]*permission.DynamicRole, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*permission.DynamicRole, error) {
		return s.repo.GetRolesForHierarchy(txCtx, hierarchyID)
	})
}

// Grant records a direct permission. When a rule is supplied the grant also
// propagates down the subtree in the same transaction.
func (s *PermissionService) Grant(
	ctx context.Context,
	userID, nodeID, roleID uuid.UUID,
	rule *permission.InheritanceRule,
	opts ...permission.Option,
) (*permission.ContextualPermission, error) {
	granted, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*permission.ContextualPermission, error) {
		perm, err := permission.New(userID, nodeID, roleID, opts...)
		if err != nil {
			return nil, err
		}
		perm, err = s.repo.CreatePermission(txCtx, perm)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			if _, err := s.repo.CreateInheritance(txCtx, permission.NewInheritance(perm.ID(), *rule)); err != nil {
				return nil, err
			}
			if _, err := s.recompute(txCtx, perm); err != nil {
				return nil, err
			}
		}
		return perm, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(PermissionGrantedEvent{Result: granted})
	return granted, nil
}

func (s *PermissionService) Revoke(ctx context.Context, permissionID uuid.UUID) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		perm, err := s.repo.GetPermissionByID(txCtx, permissionID)
		if err != nil {
			return err
		}
		perm.Deactivate()
		if err := s.repo.UpdatePermission(txCtx, perm); err != nil {
			return err
		}
		// Inherited copies fall with their source.
		return s.repo.DeleteDerivedPermissions(txCtx, permissionID)
	})
}

// RecomputeInherited rebuilds the inherited copies of a source grant after
// the tree or the rule changed. Stale copies are dropped first, so a
// reparented subtree never keeps grants from its old position.
func (s *PermissionService) RecomputeInherited(ctx context.Context, sourcePermissionID uuid.UUID) (int, error) {
	count, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (int, error) {
		perm, err := s.repo.GetPermissionByID(txCtx, sourcePermissionID)
		if err != nil {
			return 0, err
		}
		return s.recompute(txCtx, perm)
	})
	if err != nil {
		return 0, err
	}

	s.publisher.Publish(InheritedPermissionsRecomputedEvent{
		SourcePermissionID: sourcePermissionID,
		DerivedCount:       count,
	})
	return count, nil
}

func (s *PermissionService) recompute(ctx context.Context, source *permission.ContextualPermission) (int, error) {
	if !source.IsDirect() {
		return 0, nil
	}
	if err := s.repo.DeleteDerivedPermissions(ctx, source.ID()); err != nil {
		return 0, err
	}
	inheritances, err := s.repo.GetInheritancesForPermission(ctx, source.ID())
	if err != nil {
		return 0, err
	}
	if len(inheritances) == 0 {
		return 0, nil
	}

	sourceNode, err := s.hierarchyRepo.GetNodeByID(ctx, source.NodeID())
	if err != nil {
		return 0, err
	}
	nodes, err := s.hierarchyRepo.GetNodes(ctx, sourceNode.HierarchyID())
	if err != nil {
		return 0, err
	}

	sourceID := source.ID()
	prefix := sourceNode.Path() + "/"
	created := 0
	for _, node := range nodes {
		if !strings.HasPrefix(node.Path(), prefix) {
			continue
		}
		distance := node.Level() - sourceNode.Level()
		matched := false
		for _, inh := range inheritances {
			if inh.IsActive() && inh.Rule().Matches(distance, node.Code()) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		derived, err := permission.New(
			source.UserID(),
			node.ID(),
			source.RoleID(),
			permission.WithScope(source.Scope()),
			permission.WithRestrictions(source.Restrictions()),
			permission.WithWindow(source.EffectiveFrom(), source.EffectiveUntil()),
			permission.WithInheritedFrom(&sourceID),
		)
		if err != nil {
			return 0, err
		}
		if _, err := s.repo.CreatePermission(ctx, derived); err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}

// ResolveEffectivePermissions returns the winning grant per role for a user
// at a node. Direct grants beat inherited ones; among inherited grants the
// one sourced from the nearest ancestor wins; remaining ties go to the
// latest effective_from.
func (s *PermissionService) ResolveEffectivePermissions(
	ctx context.Context,
	userID, nodeID uuid.UUID,
	now time.Time,
) ([]*permission.ContextualPermission, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*permission.ContextualPermission, error) {
		all, err := s.repo.GetPermissionsForUser(txCtx, userID)
		if err != nil {
			return nil, err
		}

		candidates := make([]*permission.ContextualPermission, 0, len(all))
		for _, p := range all {
			if p.NodeID() == nodeID && p.AccessibleAt(now) {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return nil, nil
		}

		winners := make(map[uuid.UUID]*permission.ContextualPermission, len(candidates))
		for _, p := range candidates {
			incumbent, ok := winners[p.RoleID()]
			if !ok {
				winners[p.RoleID()] = p
				continue
			}
			better, err := s.beats(txCtx, p, incumbent)
			if err != nil {
				return nil, err
			}
			if better {
				winners[p.RoleID()] = p
			}
		}

		resolved := make([]*permission.ContextualPermission, 0, len(winners))
		for _, p := range winners {
			resolved = append(resolved, p)
		}
		return resolved, nil
	})
}

func (s *PermissionService) beats(ctx context.Context, a, b *permission.ContextualPermission) (bool, error) {
	if a.IsDirect() != b.IsDirect() {
		return a.IsDirect(), nil
	}
	if !a.IsDirect() {
		levelA, err := s.sourceLevel(ctx, a)
		if err != nil {
			return false, err
		}
		levelB, err := s.sourceLevel(ctx, b)
		if err != nil {
			return false, err
		}
		// Deeper source node means nearer ancestor.
		if levelA != levelB {
			return levelA > levelB, nil
		}
	}
	return a.EffectiveFrom().After(b.EffectiveFrom()), nil
}

func (s *PermissionService) sourceLevel(ctx context.Context, p *permission.ContextualPermission) (int, error) {
	source, err := s.repo.GetPermissionByID(ctx, *p.InheritedFrom())
	if err != nil {
		return 0, err
	}
	node, err := s.hierarchyRepo.GetNodeByID(ctx, source.NodeID())
	if err != nil {
		return 0, err
	}
	return node.Level(), nil
}
