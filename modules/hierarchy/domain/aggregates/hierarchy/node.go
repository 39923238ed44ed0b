package hierarchy

import (
	"time"

	"github.com/google/uuid"
)

// NodeMetadata is the typed shape of the node's metadata column.
type NodeMetadata struct {
	SpanOfControl int            `json:"span_of_control,omitempty"`
	SalaryTier    string         `json:"salary_tier,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Node is one position/unit within a hierarchy. The root carries a nil
// parent and level 0; path is the ancestor id chain joined by "/", self
// included.
type Node struct {
	id          uuid.UUID
	hierarchyID uuid.UUID
	parentID    *uuid.UUID
	name        string
	code        string
	level       int
	path        string
	lft         int
	rgt         int
	metadata    NodeMetadata
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

type NodeOption func(*Node)

func WithNodeID(id uuid.UUID) NodeOption {
	return func(n *Node) {
		n.id = id
	}
}

func WithParentID(parentID *uuid.UUID) NodeOption {
	return func(n *Node) {
		n.parentID = parentID
	}
}

func WithLevel(level int) NodeOption {
	return func(n *Node) {
		n.level = level
	}
}

func WithPath(path string) NodeOption {
	return func(n *Node) {
		n.path = path
	}
}

func WithNestedSet(lft, rgt int) NodeOption {
	return func(n *Node) {
		n.lft = lft
		n.rgt = rgt
	}
}

func WithMetadata(metadata NodeMetadata) NodeOption {
	return func(n *Node) {
		n.metadata = metadata
	}
}

func WithNodeIsActive(isActive bool) NodeOption {
	return func(n *Node) {
		n.isActive = isActive
	}
}

func WithNodeCreatedAt(createdAt time.Time) NodeOption {
	return func(n *Node) {
		n.createdAt = createdAt
	}
}

func WithNodeUpdatedAt(updatedAt time.Time) NodeOption {
	return func(n *Node) {
		n.updatedAt = updatedAt
	}
}

func NewNode(hierarchyID uuid.UUID, name, code string, opts ...NodeOption) *Node {
	n := &Node{
		id:          uuid.New(),
		hierarchyID: hierarchyID,
		name:        name,
		code:        code,
		isActive:    true,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.path == "" {
		n.path = n.id.String()
	}
	return n
}

func (n *Node) ID() uuid.UUID {
	return n.id
}

func (n *Node) HierarchyID() uuid.UUID {
	return n.hierarchyID
}

func (n *Node) ParentID() *uuid.UUID {
	return n.parentID
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Code() string {
	return n.code
}

func (n *Node) Level() int {
	return n.level
}

func (n *Node) Path() string {
	return n.path
}

func (n *Node) Left() int {
	return n.lft
}

func (n *Node) Right() int {
	return n.rgt
}

func (n *Node) Metadata() NodeMetadata {
	return n.metadata
}

func (n *Node) IsActive() bool {
	return n.isActive
}

func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

func (n *Node) IsRoot() bool {
	return n.parentID == nil
}

// SetPlacement rewrites the tree position fields after a structural change.
func (n *Node) SetPlacement(parentID *uuid.UUID, path string, level int) {
	n.parentID = parentID
	n.path = path
	n.level = level
	n.updatedAt = time.Now()
}

func (n *Node) SetNestedSet(lft, rgt int) {
	n.lft = lft
	n.rgt = rgt
	n.updatedAt = time.Now()
}

func (n *Node) SetMetadata(metadata NodeMetadata) {
	n.metadata = metadata
	n.updatedAt = time.Now()
}

func (n *Node) Deactivate() {
	n.isActive = false
	n.updatedAt = time.Now()
}

// ChildPath derives a child's materialized path from its parent's.
func ChildPath(parentPath string, childID uuid.UUID) string {
	if parentPath == "" {
		return childID.String()
	}
	return parentPath + "/" + childID.String()
}
