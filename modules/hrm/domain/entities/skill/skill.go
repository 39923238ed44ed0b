package skill

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Option func(s *Skill)

func WithID(id uuid.UUID) Option {
	return func(s *Skill) {
		s.id = id
	}
}

func WithCategory(category string) Option {
	return func(s *Skill) {
		s.category = category
	}
}

func WithDescription(description string) Option {
	return func(s *Skill) {
		s.description = description
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(s *Skill) {
		s.createdAt = createdAt
		s.updatedAt = updatedAt
	}
}

func New(tenantID, instanceID uuid.UUID, name string, opts ...Option) *Skill {
	s := &Skill{
		id:         uuid.New(),
		tenantID:   tenantID,
		instanceID: instanceID,
		name:       name,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Skill is a catalog row materialized from a skill template instance.
type Skill struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	instanceID  uuid.UUID
	name        string
	category    string
	description string
	createdAt   time.Time
	updatedAt   time.Time
}

func (s *Skill) ID() uuid.UUID         { return s.id }
func (s *Skill) TenantID() uuid.UUID   { return s.tenantID }
func (s *Skill) InstanceID() uuid.UUID { return s.instanceID }
func (s *Skill) Name() string          { return s.name }
func (s *Skill) Category() string      { return s.category }
func (s *Skill) Description() string   { return s.description }
func (s *Skill) CreatedAt() time.Time  { return s.createdAt }
func (s *Skill) UpdatedAt() time.Time  { return s.updatedAt }

type Repository interface {
	// Upsert inserts or replaces the row keyed by (tenant_id, instance_id).
	Upsert(ctx context.Context, data *Skill) (*Skill, error)
	GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*Skill, error)
	GetAll(ctx context.Context) ([]*Skill, error)
}
