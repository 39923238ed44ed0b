package permission

import (
	"slices"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// DynamicRole is a role definition scoped to a hierarchy.
type DynamicRole struct {
	id          uuid.UUID
	hierarchyID uuid.UUID
	name        string
	description string
	actions     []string
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

type RoleOption func(*DynamicRole)

func WithRoleID(id uuid.UUID) RoleOption {
	return func(r *DynamicRole) {
		r.id = id
	}
}

func WithDescription(description string) RoleOption {
	return func(r *DynamicRole) {
		r.description = description
	}
}

func WithActions(actions []string) RoleOption {
	return func(r *DynamicRole) {
		r.actions = actions
	}
}

func WithRoleIsActive(isActive bool) RoleOption {
	return func(r *DynamicRole) {
		r.isActive = isActive
	}
}

func WithRoleCreatedAt(createdAt time.Time) RoleOption {
	return func(r *DynamicRole) {
		r.createdAt = createdAt
	}
}

func WithRoleUpdatedAt(updatedAt time.Time) RoleOption {
	return func(r *DynamicRole) {
		r.updatedAt = updatedAt
	}
}

func NewDynamicRole(hierarchyID uuid.UUID, name string, opts ...RoleOption) *DynamicRole {
	r := &DynamicRole{
		id:          uuid.New(),
		hierarchyID: hierarchyID,
		name:        name,
		isActive:    true,
		createdAt:   time.Now(),
		updatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *DynamicRole) ID() uuid.UUID          { return r.id }
func (r *DynamicRole) HierarchyID() uuid.UUID { return r.hierarchyID }
func (r *DynamicRole) Name() string           { return r.name }
func (r *DynamicRole) Description() string    { return r.description }
func (r *DynamicRole) Actions() []string      { return r.actions }
func (r *DynamicRole) IsActive() bool         { return r.isActive }
func (r *DynamicRole) CreatedAt() time.Time   { return r.createdAt }
func (r *DynamicRole) UpdatedAt() time.Time   { return r.updatedAt }

var ErrEmptyValidityWindow = gerrors.New("effective_until must be after effective_from")

// ContextualPermission is a grant scoped to a (user, node, role) triple with
// an optional validity window. Inherited copies carry the id of the source
// grant they were derived from.
type ContextualPermission struct {
	id             uuid.UUID
	userID         uuid.UUID
	nodeID         uuid.UUID
	roleID         uuid.UUID
	scope          map[string]any
	restrictions   map[string]any
	effectiveFrom  time.Time
	effectiveUntil *time.Time
	inheritedFrom  *uuid.UUID
	isActive       bool
	createdAt      time.Time
	updatedAt      time.Time
}

type Option func(*ContextualPermission)

func WithID(id uuid.UUID) Option {
	return func(p *ContextualPermission) {
		p.id = id
	}
}

func WithScope(scope map[string]any) Option {
	return func(p *ContextualPermission) {
		p.scope = scope
	}
}

func WithRestrictions(restrictions map[string]any) Option {
	return func(p *ContextualPermission) {
		p.restrictions = restrictions
	}
}

func WithWindow(from time.Time, until *time.Time) Option {
	return func(p *ContextualPermission) {
		p.effectiveFrom = from
		p.effectiveUntil = until
	}
}

func WithInheritedFrom(sourceID *uuid.UUID) Option {
	return func(p *ContextualPermission) {
		p.inheritedFrom = sourceID
	}
}

func WithIsActive(isActive bool) Option {
	return func(p *ContextualPermission) {
		p.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *ContextualPermission) {
		p.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *ContextualPermission) {
		p.updatedAt = updatedAt
	}
}

func New(userID, nodeID, roleID uuid.UUID, opts ...Option) (*ContextualPermission, error) {
	p := &ContextualPermission{
		id:            uuid.New(),
		userID:        userID,
		nodeID:        nodeID,
		roleID:        roleID,
		effectiveFrom: time.Now(),
		isActive:      true,
		createdAt:     time.Now(),
		updatedAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.effectiveUntil != nil && !p.effectiveUntil.After(p.effectiveFrom) {
		return nil, ErrEmptyValidityWindow
	}
	return p, nil
}

func (p *ContextualPermission) ID() uuid.UUID                { return p.id }
func (p *ContextualPermission) UserID() uuid.UUID            { return p.userID }
func (p *ContextualPermission) NodeID() uuid.UUID            { return p.nodeID }
func (p *ContextualPermission) RoleID() uuid.UUID            { return p.roleID }
func (p *ContextualPermission) Scope() map[string]any        { return p.scope }
func (p *ContextualPermission) Restrictions() map[string]any { return p.restrictions }
func (p *ContextualPermission) EffectiveFrom() time.Time     { return p.effectiveFrom }
func (p *ContextualPermission) EffectiveUntil() *time.Time   { return p.effectiveUntil }
func (p *ContextualPermission) InheritedFrom() *uuid.UUID    { return p.inheritedFrom }
func (p *ContextualPermission) IsActive() bool               { return p.isActive }
func (p *ContextualPermission) CreatedAt() time.Time         { return p.createdAt }
func (p *ContextualPermission) UpdatedAt() time.Time         { return p.updatedAt }

func (p *ContextualPermission) IsDirect() bool {
	return p.inheritedFrom == nil
}

// AccessibleAt reports whether the grant is usable at the given instant:
// active and now within [effective_from, effective_until).
func (p *ContextualPermission) AccessibleAt(now time.Time) bool {
	if !p.isActive {
		return false
	}
	if now.Before(p.effectiveFrom) {
		return false
	}
	if p.effectiveUntil != nil && !now.Before(*p.effectiveUntil) {
		return false
	}
	return true
}

func (p *ContextualPermission) Deactivate() {
	p.isActive = false
	p.updatedAt = time.Now()
}

// InheritanceRule constrains how far and to which nodes a source grant
// propagates.
type InheritanceRule struct {
	// MaxDepth limits propagation to descendants at most this many levels
	// below the source node; 0 means unlimited.
	MaxDepth int `json:"max_depth"`
	// ExcludeCodes lists node codes the rule skips.
	ExcludeCodes []string `json:"exclude_codes,omitempty"`
}

// Matches reports whether a descendant at the given distance with the given
// code receives the propagated grant.
func (r InheritanceRule) Matches(distance int, nodeCode string) bool {
	if distance < 1 {
		return false
	}
	if r.MaxDepth > 0 && distance > r.MaxDepth {
		return false
	}
	return !slices.Contains(r.ExcludeCodes, nodeCode)
}

// Inheritance propagates a source permission to descendant nodes under a
// rule predicate.
type Inheritance struct {
	id                 uuid.UUID
	sourcePermissionID uuid.UUID
	rule               InheritanceRule
	isActive           bool
	createdAt          time.Time
	updatedAt          time.Time
}

type InheritanceOption func(*Inheritance)

func WithInheritanceID(id uuid.UUID) InheritanceOption {
	return func(i *Inheritance) {
		i.id = id
	}
}

func WithInheritanceIsActive(isActive bool) InheritanceOption {
	return func(i *Inheritance) {
		i.isActive = isActive
	}
}

func WithInheritanceCreatedAt(createdAt time.Time) InheritanceOption {
	return func(i *Inheritance) {
		i.createdAt = createdAt
	}
}

func WithInheritanceUpdatedAt(updatedAt time.Time) InheritanceOption {
	return func(i *Inheritance) {
		i.updatedAt = updatedAt
	}
}

func NewInheritance(sourcePermissionID uuid.UUID, rule InheritanceRule, opts ...InheritanceOption) *Inheritance {
	i := &Inheritance{
		id:                 uuid.New(),
		sourcePermissionID: sourcePermissionID,
		rule:               rule,
		isActive:           true,
		createdAt:          time.Now(),
		updatedAt:          time.Now(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inheritance) ID() uuid.UUID                 { return i.id }
func (i *Inheritance) SourcePermissionID() uuid.UUID { return i.sourcePermissionID }
func (i *Inheritance) Rule() InheritanceRule         { return i.rule }
func (i *Inheritance) IsActive() bool                { return i.isActive }
func (i *Inheritance) CreatedAt() time.Time          { return i.createdAt }
func (i *Inheritance) UpdatedAt() time.Time          { return i.updatedAt }
