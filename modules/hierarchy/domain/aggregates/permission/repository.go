package permission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateRole(ctx context.Context, data *DynamicRole) (*DynamicRole, error)
	GetRoleByID(ctx context.Context, id uuid.UUID) (*DynamicRole, error)
	GetRolesForHierarchy(ctx context.Context, hierarchyID uuid.UUID) ([]*DynamicRole, error)

	CreatePermission(ctx context.Context, data *ContextualPermission) (*ContextualPermission, error)
	GetPermissionByID(ctx context.Context, id uuid.UUID) (*ContextualPermission, error)
	// GetPermissionsForUser returns every active grant held by the user,
	// direct and inherited, across all nodes.
	GetPermissionsForUser(ctx context.Context, userID uuid.UUID) ([]*ContextualPermission, error)
	// GetDerivedPermissions returns the inherited copies produced from a
	// source grant.
	GetDerivedPermissions(ctx context.Context, sourcePermissionID uuid.UUID) ([]*ContextualPermission, error)
	UpdatePermission(ctx context.Context, data *ContextualPermission) error
	// DeleteDerivedPermissions hard-deletes the inherited copies of a source
	// grant prior to recomputation. Derivative rows are the only rows ever
	// physically deleted.
	DeleteDerivedPermissions(ctx context.Context, sourcePermissionID uuid.UUID) error

	CreateInheritance(ctx context.Context, data *Inheritance) (*Inheritance, error)
	GetInheritancesForPermission(ctx context.Context, sourcePermissionID uuid.UUID) ([]*Inheritance, error)
	UpdateInheritance(ctx context.Context, data *Inheritance) error
}
