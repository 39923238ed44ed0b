package leavetype

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Option func(l *LeaveType)

func WithID(id uuid.UUID) Option {
	return func(l *LeaveType) {
		l.id = id
	}
}

func WithDaysPerYear(days int) Option {
	return func(l *LeaveType) {
		l.daysPerYear = days
	}
}

func WithCarryOverMax(days int) Option {
	return func(l *LeaveType) {
		l.carryOverMax = days
	}
}

func WithPaid(paid bool) Option {
	return func(l *LeaveType) {
		l.paid = paid
	}
}

func WithTimestamps(createdAt, updatedAt time.Time) Option {
	return func(l *LeaveType) {
		l.createdAt = createdAt
		l.updatedAt = updatedAt
	}
}

func New(tenantID, instanceID uuid.UUID, name string, opts ...Option) *LeaveType {
	l := &LeaveType{
		id:         uuid.New(),
		tenantID:   tenantID,
		instanceID: instanceID,
		name:       name,
		paid:       true,
		createdAt:  time.Now(),
		updatedAt:  time.Now(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LeaveType is a catalog row materialized from a leave type template instance.
type LeaveType struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	instanceID   uuid.UUID
	name         string
	daysPerYear  int
	carryOverMax int
	paid         bool
	createdAt    time.Time
	updatedAt    time.Time
}

func (l *LeaveType) ID() uuid.UUID         { return l.id }
func (l *LeaveType) TenantID() uuid.UUID   { return l.tenantID }
func (l *LeaveType) InstanceID() uuid.UUID { return l.instanceID }
func (l *LeaveType) Name() string          { return l.name }
func (l *LeaveType) DaysPerYear() int      { return l.daysPerYear }
func (l *LeaveType) CarryOverMax() int     { return l.carryOverMax }
func (l *LeaveType) Paid() bool            { return l.paid }
func (l *LeaveType) CreatedAt() time.Time  { return l.createdAt }
func (l *LeaveType) UpdatedAt() time.Time  { return l.updatedAt }

type Repository interface {
	Upsert(ctx context.Context, data *LeaveType) (*LeaveType, error)
	GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*LeaveType, error)
	GetAll(ctx context.Context) ([]*LeaveType, error)
}
