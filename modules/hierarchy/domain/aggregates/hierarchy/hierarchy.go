package hierarchy

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Type distinguishes the structuring schemes an organization can maintain in
// parallel. Each tenant holds at most one canonical definition per type.
type Type string

const (
	TypeOrganizational Type = "organizational"
	TypeFunctional     Type = "functional"
	TypeProject        Type = "project"
	TypeGeographical   Type = "geographical"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeOrganizational, TypeFunctional, TypeProject, TypeGeographical:
		return true
	}
	return false
}

const (
	DefaultMaxDepth = 10
	MinMaxDepth     = 1
	MaxMaxDepth     = 50
)

var ErrInvalidMaxDepth = gerrors.New("hierarchy max depth out of range")

// DefinitionConfig is the typed shape of the definition's config column.
// Extra keeps forward compatibility with fields this version does not model.
type DefinitionConfig struct {
	AllowMatrix     bool           `json:"allow_matrix"`
	AutoCreateCodes bool           `json:"auto_create_codes"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// Definition is one hierarchy instance per tenant per type.
type Definition struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	name      string
	typ       Type
	maxDepth  int
	isActive  bool
	config    DefinitionConfig
	createdBy uuid.UUID
	updatedBy uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

type DefinitionOption func(*Definition)

func WithID(id uuid.UUID) DefinitionOption {
	return func(d *Definition) {
		d.id = id
	}
}

func WithMaxDepth(maxDepth int) DefinitionOption {
	return func(d *Definition) {
		d.maxDepth = maxDepth
	}
}

func WithIsActive(isActive bool) DefinitionOption {
	return func(d *Definition) {
		d.isActive = isActive
	}
}

func WithConfig(config DefinitionConfig) DefinitionOption {
	return func(d *Definition) {
		d.config = config
	}
}

func WithCreatedBy(userID uuid.UUID) DefinitionOption {
	return func(d *Definition) {
		d.createdBy = userID
		d.updatedBy = userID
	}
}

func WithUpdatedBy(userID uuid.UUID) DefinitionOption {
	return func(d *Definition) {
		d.updatedBy = userID
	}
}

func WithCreatedAt(createdAt time.Time) DefinitionOption {
	return func(d *Definition) {
		d.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) DefinitionOption {
	return func(d *Definition) {
		d.updatedAt = updatedAt
	}
}

func NewDefinition(tenantID uuid.UUID, name string, typ Type, opts ...DefinitionOption) (*Definition, error) {
	d := &Definition{
		id:        uuid.New(),
		tenantID:  tenantID,
		name:      name,
		typ:       typ,
		maxDepth:  DefaultMaxDepth,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if !typ.IsValid() {
		return nil, gerrors.Errorf("invalid hierarchy type %q", typ)
	}
	if d.maxDepth < MinMaxDepth || d.maxDepth > MaxMaxDepth {
		return nil, gerrors.Wrapf(ErrInvalidMaxDepth, "got %d", d.maxDepth)
	}
	return d, nil
}

func (d *Definition) ID() uuid.UUID {
	return d.id
}

func (d *Definition) TenantID() uuid.UUID {
	return d.tenantID
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) Type() Type {
	return d.typ
}

func (d *Definition) MaxDepth() int {
	return d.maxDepth
}

func (d *Definition) IsActive() bool {
	return d.isActive
}

func (d *Definition) Config() DefinitionConfig {
	return d.config
}

func (d *Definition) CreatedBy() uuid.UUID {
	return d.createdBy
}

func (d *Definition) UpdatedBy() uuid.UUID {
	return d.updatedBy
}

func (d *Definition) CreatedAt() time.Time {
	return d.createdAt
}

func (d *Definition) UpdatedAt() time.Time {
	return d.updatedAt
}

func (d *Definition) SetName(name string, updatedBy uuid.UUID) {
	d.name = name
	d.updatedBy = updatedBy
	d.updatedAt = time.Now()
}

// Deactivate soft-deletes the definition. Definitions are never removed.
func (d *Definition) Deactivate(updatedBy uuid.UUID) {
	d.isActive = false
	d.updatedBy = updatedBy
	d.updatedAt = time.Now()
}
