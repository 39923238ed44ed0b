package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var (
	ErrHierarchyNotFound    = gerrors.New("hierarchy not found")
	ErrNodeNotFound         = gerrors.New("hierarchy node not found")
	ErrRelationshipNotFound = gerrors.New("hierarchy relationship not found")
)

type PgHierarchyRepository struct{}

func NewHierarchyRepository() hierarchy.Repository {
	return &PgHierarchyRepository{}
}

const definitionColumns = `id, tenant_id, name, type, max_depth, is_active, config, created_by, updated_by, created_at, updated_at`

func (r *PgHierarchyRepository) CreateDefinition(ctx context.Context, data *hierarchy.Definition) (*hierarchy.Definition, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	config, err := json.Marshal(data.Config())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO hierarchy_definitions (id, tenant_id, name, type, max_depth, is_active, config, created_by, updated_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id
`,
		data.ID(),
		data.TenantID(),
		data.Name(),
		string(data.Type()),
		data.MaxDepth(),
		data.IsActive(),
		config,
		data.CreatedBy(),
		data.UpdatedBy(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create hierarchy definition")
	}
	return r.GetDefinitionByID(ctx, id)
}

func (r *PgHierarchyRepository) GetDefinitionByID(ctx context.Context, id uuid.UUID) (*hierarchy.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+definitionColumns+` FROM hierarchy_definitions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanDefinition(row)
}

func (r *PgHierarchyRepository) GetDefinitions(ctx context.Context, params *hierarchy.DefinitionFindParams) ([]*hierarchy.Definition, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + definitionColumns + ` FROM hierarchy_definitions WHERE tenant_id=$1`
	args := []any{tenantID}
	if params != nil {
		if params.Type != "" {
			args = append(args, string(params.Type))
			q += ` AND type=$2`
		}
		if params.ActiveOnly {
			q += ` AND is_active`
		}
	}
	q += ` ORDER BY type, name`

	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*hierarchy.Definition, 0, 8)
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (r *PgHierarchyRepository) UpdateDefinition(ctx context.Context, data *hierarchy.Definition) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	config, err := json.Marshal(data.Config())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE hierarchy_definitions
SET name=$3, max_depth=$4, is_active=$5, config=$6, updated_by=$7, updated_at=$8
WHERE tenant_id=$1 AND id=$2
`,
		data.TenantID(),
		data.ID(),
		data.Name(),
		data.MaxDepth(),
		data.IsActive(),
		config,
		data.UpdatedBy(),
		time.Now(),
	)
	return err
}

const nodeColumns = `n.id, n.hierarchy_id, n.parent_id, n.name, n.code, n.level, n.path, n.lft, n.rgt, n.metadata, n.is_active, n.created_at, n.updated_at`

func (r *PgHierarchyRepository) CreateNode(ctx context.Context, data *hierarchy.Node) (*hierarchy.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	metadata, err := json.Marshal(data.Metadata())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO hierarchy_nodes (id, hierarchy_id, parent_id, name, code, level, path, lft, rgt, metadata, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
RETURNING id
`,
		data.ID(),
		data.HierarchyID(),
		data.ParentID(),
		data.Name(),
		data.Code(),
		data.Level(),
		data.Path(),
		data.Left(),
		data.Right(),
		metadata,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create hierarchy node")
	}
	return r.GetNodeByID(ctx, id)
}

func (r *PgHierarchyRepository) GetNodeByID(ctx context.Context, id uuid.UUID) (*hierarchy.Node, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT `+nodeColumns+`
FROM hierarchy_nodes n
JOIN hierarchy_definitions d ON d.id = n.hierarchy_id
WHERE d.tenant_id=$1 AND n.id=$2
`, tenantID, id)
	return scanNode(row)
}

func (r *PgHierarchyRepository) GetNodes(ctx context.Context, hierarchyID uuid.UUID) ([]*hierarchy.Node, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+nodeColumns+`
FROM hierarchy_nodes n
JOIN hierarchy_definitions d ON d.id = n.hierarchy_id
WHERE d.tenant_id=$1 AND n.hierarchy_id=$2 AND n.is_active
ORDER BY n.lft
`, tenantID, hierarchyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*hierarchy.Node, 0, 32)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, rows.Err()
}

func (r *PgHierarchyRepository) UpdateNode(ctx context.Context, data *hierarchy.Node) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(data.Metadata())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE hierarchy_nodes
SET name=$2, code=$3, metadata=$4, is_active=$5, updated_at=$6
WHERE id=$1
`,
		data.ID(),
		data.Name(),
		data.Code(),
		metadata,
		data.IsActive(),
		time.Now(),
	)
	return err
}

func (r *PgHierarchyRepository) UpdateNodePlacements(ctx context.Context, nodes []*hierarchy.Node) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, node := range nodes {
		if _, err := tx.Exec(ctx, `
UPDATE hierarchy_nodes
SET parent_id=$2, level=$3, path=$4, lft=$5, rgt=$6, updated_at=$7
WHERE id=$1
`,
			node.ID(),
			node.ParentID(),
			node.Level(),
			node.Path(),
			node.Left(),
			node.Right(),
			now,
		); err != nil {
			return gerrors.Wrapf(err, "failed to place node %s", node.ID())
		}
	}
	return nil
}

const relationshipColumns = `id, parent_node_id, child_node_id, type, weight, is_active, created_at, updated_at`

func (r *PgHierarchyRepository) CreateRelationship(ctx context.Context, data *hierarchy.Relationship) (*hierarchy.Relationship, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO hierarchy_relationships (id, parent_node_id, child_node_id, type, weight, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`,
		data.ID(),
		data.ParentNodeID(),
		data.ChildNodeID(),
		string(data.Type()),
		data.Weight(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(new(uuid.UUID)); err != nil {
		return nil, gerrors.Wrap(err, "failed to create hierarchy relationship")
	}
	return data, nil
}

func (r *PgHierarchyRepository) GetRelationshipsForNode(ctx context.Context, nodeID uuid.UUID) ([]*hierarchy.Relationship, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+relationshipColumns+`
FROM hierarchy_relationships
WHERE (parent_node_id=$1 OR child_node_id=$1) AND is_active
ORDER BY created_at
`, nodeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*hierarchy.Relationship, 0, 8)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}

func (r *PgHierarchyRepository) UpdateRelationship(ctx context.Context, data *hierarchy.Relationship) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE hierarchy_relationships
SET weight=$2, is_active=$3, updated_at=$4
WHERE id=$1
`,
		data.ID(),
		data.Weight(),
		data.IsActive(),
		time.Now(),
	)
	return err
}

func scanDefinition(row pgx.Row) (*hierarchy.Definition, error) {
	var (
		id        uuid.UUID
		tenantID  uuid.UUID
		name      string
		typ       string
		maxDepth  int
		isActive  bool
		config    []byte
		createdBy uuid.UUID
		updatedBy uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &tenantID, &name, &typ, &maxDepth, &isActive, &config, &createdBy, &updatedBy, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHierarchyNotFound
		}
		return nil, err
	}
	var cfg hierarchy.DefinitionConfig
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode hierarchy config")
		}
	}
	return hierarchy.NewDefinition(
		tenantID,
		name,
		hierarchy.Type(typ),
		hierarchy.WithID(id),
		hierarchy.WithMaxDepth(maxDepth),
		hierarchy.WithIsActive(isActive),
		hierarchy.WithConfig(cfg),
		hierarchy.WithCreatedBy(createdBy),
		hierarchy.WithUpdatedBy(updatedBy),
		hierarchy.WithCreatedAt(createdAt),
		hierarchy.WithUpdatedAt(updatedAt),
	)
}

func scanNode(row pgx.Row) (*hierarchy.Node, error) {
	var (
		id          uuid.UUID
		hierarchyID uuid.UUID
		parentID    *uuid.UUID
		name        string
		code        string
		level       int
		path        string
		lft         int
		rgt         int
		metadata    []byte
		isActive    bool
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &hierarchyID, &parentID, &name, &code, &level, &path, &lft, &rgt, &metadata, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	var meta hierarchy.NodeMetadata
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode node metadata")
		}
	}
	return hierarchy.NewNode(
		hierarchyID,
		name,
		code,
		hierarchy.WithNodeID(id),
		hierarchy.WithParentID(parentID),
		hierarchy.WithLevel(level),
		hierarchy.WithPath(path),
		hierarchy.WithNestedSet(lft, rgt),
		hierarchy.WithMetadata(meta),
		hierarchy.WithNodeIsActive(isActive),
		hierarchy.WithNodeCreatedAt(createdAt),
		hierarchy.WithNodeUpdatedAt(updatedAt),
	), nil
}

func scanRelationship(row pgx.Row) (*hierarchy.Relationship, error) {
	var (
		id           uuid.UUID
		parentNodeID uuid.UUID
		childNodeID  uuid.UUID
		typ          string
		weight       decimal.Decimal
		isActive     bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&id, &parentNodeID, &childNodeID, &typ, &weight, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRelationshipNotFound
		}
		return nil, err
	}
	return hierarchy.NewRelationship(
		parentNodeID,
		childNodeID,
		hierarchy.RelationshipType(typ),
		hierarchy.WithRelationshipID(id),
		hierarchy.WithWeight(weight),
		hierarchy.WithRelationshipIsActive(isActive),
		hierarchy.WithRelationshipCreatedAt(createdAt),
		hierarchy.WithRelationshipUpdatedAt(updatedAt),
	)
}
