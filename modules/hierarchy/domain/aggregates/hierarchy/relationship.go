package hierarchy

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RelationshipType distinguishes the primary reporting line mirror from
// additive matrix/dotted edges. Only direct edges mirror parent pointers;
// matrix and indirect edges never affect depth or path.
type RelationshipType string

const (
	RelationshipDirect   RelationshipType = "direct"
	RelationshipIndirect RelationshipType = "indirect"
	RelationshipMatrix   RelationshipType = "matrix"
)

func (t RelationshipType) IsValid() bool {
	switch t {
	case RelationshipDirect, RelationshipIndirect, RelationshipMatrix:
		return true
	}
	return false
}

var (
	ErrInvalidWeight       = gerrors.New("relationship weight must be within [0, 1]")
	ErrSelfRelationship    = gerrors.New("relationship cannot link a node to itself")
	relationshipWeightOne  = decimal.NewFromInt(1)
	relationshipWeightZero = decimal.Zero
)

// Relationship is an edge between two nodes, independent of the primary
// parent pointer.
type Relationship struct {
	id           uuid.UUID
	parentNodeID uuid.UUID
	childNodeID  uuid.UUID
	typ          RelationshipType
	weight       decimal.Decimal
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

type RelationshipOption func(*Relationship)

func WithRelationshipID(id uuid.UUID) RelationshipOption {
	return func(r *Relationship) {
		r.id = id
	}
}

func WithWeight(weight decimal.Decimal) RelationshipOption {
	return func(r *Relationship) {
		r.weight = weight
	}
}

func WithRelationshipIsActive(isActive bool) RelationshipOption {
	return func(r *Relationship) {
		r.isActive = isActive
	}
}

func WithRelationshipCreatedAt(createdAt time.Time) RelationshipOption {
	return func(r *Relationship) {
		r.createdAt = createdAt
	}
}

func WithRelationshipUpdatedAt(updatedAt time.Time) RelationshipOption {
	return func(r *Relationship) {
		r.updatedAt = updatedAt
	}
}

func NewRelationship(parentNodeID, childNodeID uuid.UUID, typ RelationshipType, opts ...RelationshipOption) (*Relationship, error) {
	r := &Relationship{
		id:           uuid.New(),
		parentNodeID: parentNodeID,
		childNodeID:  childNodeID,
		typ:          typ,
		weight:       relationshipWeightOne,
		isActive:     true,
		createdAt:    time.Now(),
		updatedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !typ.IsValid() {
		return nil, gerrors.Errorf("invalid relationship type %q", typ)
	}
	if parentNodeID == childNodeID {
		return nil, ErrSelfRelationship
	}
	if r.weight.LessThan(relationshipWeightZero) || r.weight.GreaterThan(relationshipWeightOne) {
		return nil, gerrors.Wrapf(ErrInvalidWeight, "got %s", r.weight)
	}
	return r, nil
}

func (r *Relationship) ID() uuid.UUID {
	return r.id
}

func (r *Relationship) ParentNodeID() uuid.UUID {
	return r.parentNodeID
}

func (r *Relationship) ChildNodeID() uuid.UUID {
	return r.childNodeID
}

func (r *Relationship) Type() RelationshipType {
	return r.typ
}

func (r *Relationship) Weight() decimal.Decimal {
	return r.weight
}

func (r *Relationship) IsActive() bool {
	return r.isActive
}

func (r *Relationship) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Relationship) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Relationship) Deactivate() {
	r.isActive = false
	r.updatedAt = time.Now()
}
