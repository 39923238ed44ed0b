package jobrole

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Option func(j *JobRole)

func WithID(id uuid.UUID) Option {
	return func(j *JobRole) {
		j.id = id
	}
}

func WithDescription(description string) Option {
	return func(j *JobRole) {
		j.description = description
	}
}

func WithSalaryBand(min, max decimal.Decimal) Option {
	return func(j *JobRole) {
		j.minSalary = min
		j.maxSalary = max
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(j *JobRole) {
		j.createdAt = createdAt
		j.updatedAt = updatedAt
	}
}

func New(tenantID, instanceID uuid.UUID, title string, opts ...Option) *JobRole {
	j := &JobRole{
		id:         uuid.New(),
		tenantID:   tenantID,
		instanceID: instanceID,
		title:      title,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// JobRole is a catalog row materialized from a job role template instance.
type JobRole struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	instanceID  uuid.UUID
	title       string
	description string
	minSalary   decimal.Decimal
	maxSalary   decimal.Decimal
	createdAt   time.Time
	updatedAt   time.Time
}

func (j *JobRole) ID() uuid.UUID              { return j.id }
func (j *JobRole) TenantID() uuid.UUID        { return j.tenantID }
func (j *JobRole) InstanceID() uuid.UUID      { return j.instanceID }
func (j *JobRole) Title() string              { return j.title }
func (j *JobRole) Description() string        { return j.description }
func (j *JobRole) MinSalary() decimal.Decimal { return j.minSalary }
func (j *JobRole) MaxSalary() decimal.Decimal { return j.maxSalary }
func (j *JobRole) CreatedAt() time.Time       { return j.createdAt }
func (j *JobRole) UpdatedAt() time.Time       { return j.updatedAt }

type Repository interface {
	Upsert(ctx context.Context, data *JobRole) (*JobRole, error)
	GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*JobRole, error)
	GetAll(ctx context.Context) ([]*JobRole, error)
}
