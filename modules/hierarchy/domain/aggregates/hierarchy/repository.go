package hierarchy

import (
	"context"

	"github.com/google/uuid"
)

type DefinitionFindParams struct {
	Type       Type
	ActiveOnly bool
}

type Repository interface {
	CreateDefinition(ctx context.Context, data *Definition) (*Definition, error)
	GetDefinitionByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetDefinitions(ctx context.Context, params *DefinitionFindParams) ([]*Definition, error)
	UpdateDefinition(ctx context.Context, data *Definition) error

	CreateNode(ctx context.Context, data *Node) (*Node, error)
	GetNodeByID(ctx context.Context, id uuid.UUID) (*Node, error)
	// GetNodes returns the active nodes of a hierarchy ordered by lft.
	GetNodes(ctx context.Context, hierarchyID uuid.UUID) ([]*Node, error)
	UpdateNode(ctx context.Context, data *Node) error
	// UpdateNodePlacements persists the tree position fields of every given
	// node. Callers wrap this in one transaction with the triggering change.
	UpdateNodePlacements(ctx context.Context, nodes []*Node) error

	CreateRelationship(ctx context.Context, data *Relationship) (*Relationship, error)
	GetRelationshipsForNode(ctx context.Context, nodeID uuid.UUID) ([]*Relationship, error)
	UpdateRelationship(ctx context.Context, data *Relationship) error
}
