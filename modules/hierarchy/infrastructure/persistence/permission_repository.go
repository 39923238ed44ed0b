package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/permission"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var (
	ErrRoleNotFound        = gerrors.New("dynamic role not found")
	ErrPermissionNotFound  = gerrors.New("contextual permission not found")
	ErrInheritanceNotFound = gerrors.New("permission inheritance not found")
)

type PgPermissionRepository struct{}

func NewPermissionRepository() permission.Repository {
	return &PgPermissionRepository{}
}

const roleColumns = `id, hierarchy_id, name, description, actions, is_active, created_at, updated_at`

func (r *PgPermissionRepository) CreateRole(ctx context.Context, data *permission.DynamicRole) (*permission.DynamicRole, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	actions, err := json.Marshal(data.Actions())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO dynamic_roles (id, hierarchy_id, name, description, actions, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`,
		data.ID(),
		data.HierarchyID(),
		data.Name(),
		data.Description(),
		actions,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create dynamic role")
	}
	return r.GetRoleByID(ctx, id)
}

func (r *PgPermissionRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (*permission.DynamicRole, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+roleColumns+` FROM dynamic_roles WHERE id=$1`, id)
	return scanRole(row)
}

func (r *PgPermissionRepository) GetRolesForHierarchy(ctx context.Context, hierarchyID uuid.UUID) ([]*permission.DynamicRole, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+roleColumns+`
FROM dynamic_roles
WHERE hierarchy_id=$1 AND is_active
ORDER BY name
`, hierarchyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*permission.DynamicRole, 0, 8)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

const permissionColumns = `id, user_id, node_id, role_id, scope, restrictions, effective_from, effective_until, inherited_from, is_active, created_at, updated_at`

func (r *PgPermissionRepository) CreatePermission(ctx context.Context, data *permission.ContextualPermission) (*permission.ContextualPermission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	scope, err := json.Marshal(data.Scope())
	if err != nil {
		return nil, err
	}
	restrictions, err := json.Marshal(data.Restrictions())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO contextual_permissions (id, user_id, node_id, role_id, scope, restrictions, effective_from, effective_until, inherited_from, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`,
		data.ID(),
		data.UserID(),
		data.NodeID(),
		data.RoleID(),
		scope,
		restrictions,
		data.EffectiveFrom(),
		data.EffectiveUntil(),
		data.InheritedFrom(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create contextual permission")
	}
	return r.GetPermissionByID(ctx, id)
}

func (r *PgPermissionRepository) GetPermissionByID(ctx context.Context, id uuid.UUID) (*permission.ContextualPermission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+permissionColumns+` FROM contextual_permissions WHERE id=$1`, id)
	return scanPermission(row)
}

func (r *PgPermissionRepository) GetPermissionsForUser(ctx context.Context, userID uuid.UUID) ([]*permission.ContextualPermission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+permissionColumns+`
FROM contextual_permissions
WHERE user_id=$1 AND is_active
ORDER BY created_at
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func (r *PgPermissionRepository) GetDerivedPermissions(ctx context.Context, sourcePermissionID uuid.UUID) ([]*permission.ContextualPermission, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+permissionColumns+`
FROM contextual_permissions
WHERE inherited_from=$1
ORDER BY created_at
`, sourcePermissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPermissions(rows)
}

func (r *PgPermissionRepository) UpdatePermission(ctx context.Context, data *permission.ContextualPermission) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	scope, err := json.Marshal(data.Scope())
	if err != nil {
		return err
	}
	restrictions, err := json.Marshal(data.Restrictions())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE contextual_permissions
SET scope=$2, restrictions=$3, effective_from=$4, effective_until=$5, is_active=$6, updated_at=$7
WHERE id=$1
`,
		data.ID(),
		scope,
		restrictions,
		data.EffectiveFrom(),
		data.EffectiveUntil(),
		data.IsActive(),
		time.Now(),
	)
	return err
}

func (r *PgPermissionRepository) DeleteDerivedPermissions(ctx context.Context, sourcePermissionID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM contextual_permissions WHERE inherited_from=$1`, sourcePermissionID)
	return err
}

const inheritanceColumns = `id, source_permission_id, rule, is_active, created_at, updated_at`

func (r *PgPermissionRepository) CreateInheritance(ctx context.Context, data *permission.Inheritance) (*permission.Inheritance, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rule, err := json.Marshal(data.Rule())
	if err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO permission_inheritances (id, source_permission_id, rule, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`,
		data.ID(),
		data.SourcePermissionID(),
		rule,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(new(uuid.UUID)); err != nil {
		return nil, gerrors.Wrap(err, "failed to create permission inheritance")
	}
	return data, nil
}

func (r *PgPermissionRepository) GetInheritancesForPermission(ctx context.Context, sourcePermissionID uuid.UUID) ([]*permission.Inheritance, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+inheritanceColumns+`
FROM permission_inheritances
WHERE source_permission_id=$1
ORDER BY created_at
`, sourcePermissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*permission.Inheritance, 0, 4)
	for rows.Next() {
		inh, err := scanInheritance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inh)
	}
	return out, rows.Err()
}

func (r *PgPermissionRepository) UpdateInheritance(ctx context.Context, data *permission.Inheritance) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	rule, err := json.Marshal(data.Rule())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE permission_inheritances
SET rule=$2, is_active=$3, updated_at=$4
WHERE id=$1
`,
		data.ID(),
		rule,
		data.IsActive(),
		time.Now(),
	)
	return err
}

func collectPermissions(rows pgx.Rows) ([]*permission.ContextualPermission, error) {
	out := make([]*permission.ContextualPermission, 0, 16)
	for rows.Next() {
		p, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanRole(row pgx.Row) (*permission.DynamicRole, error) {
	var (
		id          uuid.UUID
		hierarchyID uuid.UUID
		name        string
		description string
		actions     []byte
		isActive    bool
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &hierarchyID, &name, &description, &actions, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	var decoded []string
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &decoded); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode role actions")
		}
	}
	return permission.NewDynamicRole(
		hierarchyID,
		name,
		permission.WithRoleID(id),
		permission.WithDescription(description),
		permission.WithActions(decoded),
		permission.WithRoleIsActive(isActive),
		permission.WithRoleCreatedAt(createdAt),
		permission.WithRoleUpdatedAt(updatedAt),
	), nil
}

func scanPermission(row pgx.Row) (*permission.ContextualPermission, error) {
	var (
		id             uuid.UUID
		userID         uuid.UUID
		nodeID         uuid.UUID
		roleID         uuid.UUID
		scope          []byte
		restrictions   []byte
		effectiveFrom  time.Time
		effectiveUntil *time.Time
		inheritedFrom  *uuid.UUID
		isActive       bool
		createdAt      time.Time
		updatedAt      time.Time
	)
	if err := row.Scan(&id, &userID, &nodeID, &roleID, &scope, &restrictions, &effectiveFrom, &effectiveUntil, &inheritedFrom, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	var scopeMap, restrictionsMap map[string]any
	if len(scope) > 0 {
		if err := json.Unmarshal(scope, &scopeMap); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode permission scope")
		}
	}
	if len(restrictions) > 0 {
		if err := json.Unmarshal(restrictions, &restrictionsMap); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode permission restrictions")
		}
	}
	return permission.New(
		userID,
		nodeID,
		roleID,
		permission.WithID(id),
		permission.WithScope(scopeMap),
		permission.WithRestrictions(restrictionsMap),
		permission.WithWindow(effectiveFrom, effectiveUntil),
		permission.WithInheritedFrom(inheritedFrom),
		permission.WithIsActive(isActive),
		permission.WithCreatedAt(createdAt),
		permission.WithUpdatedAt(updatedAt),
	)
}

func scanInheritance(row pgx.Row) (*permission.Inheritance, error) {
	var (
		id                 uuid.UUID
		sourcePermissionID uuid.UUID
		rule               []byte
		isActive           bool
		createdAt          time.Time
		updatedAt          time.Time
	)
	if err := row.Scan(&id, &sourcePermissionID, &rule, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInheritanceNotFound
		}
		return nil, err
	}
	var decoded permission.InheritanceRule
	if len(rule) > 0 {
		if err := json.Unmarshal(rule, &decoded); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode inheritance rule")
		}
	}
	return permission.NewInheritance(
		sourcePermissionID,
		decoded,
		permission.WithInheritanceID(id),
		permission.WithInheritanceIsActive(isActive),
		permission.WithInheritanceCreatedAt(createdAt),
		permission.WithInheritanceUpdatedAt(updatedAt),
	), nil
}
