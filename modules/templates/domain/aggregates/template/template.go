package template

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Type names the catalog a template belongs to. Each type maps to one
// org-level entity the template can be instantiated into.
type Type string

const (
	TypeSkill      Type = "skill"
	TypeJobRole    Type = "job_role"
	TypeAssessment Type = "assessment"
	TypeLeaveType  Type = "leave_type"
	TypeBenefit    Type = "benefit"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeSkill, TypeJobRole, TypeAssessment, TypeLeaveType, TypeBenefit:
		return true
	}
	return false
}

var ErrInvalidType = gerrors.New("unknown template type")

// Record is a master template shared across tenants. Data holds the
// template's fields; version increments on every master edit.
type Record struct {
	id        uuid.UUID
	typ       Type
	name      string
	version   int
	data      map[string]any
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

type RecordOption func(*Record)

func WithRecordID(id uuid.UUID) RecordOption {
	return func(r *Record) {
		r.id = id
	}
}

func WithVersion(version int) RecordOption {
	return func(r *Record) {
		r.version = version
	}
}

func WithData(data map[string]any) RecordOption {
	return func(r *Record) {
		r.data = data
	}
}

func WithRecordIsActive(isActive bool) RecordOption {
	return func(r *Record) {
		r.isActive = isActive
	}
}

func WithRecordCreatedAt(createdAt time.Time) RecordOption {
	return func(r *Record) {
		r.createdAt = createdAt
	}
}

func WithRecordUpdatedAt(updatedAt time.Time) RecordOption {
	return func(r *Record) {
		r.updatedAt = updatedAt
	}
}

func NewRecord(typ Type, name string, opts ...RecordOption) (*Record, error) {
	if !typ.IsValid() {
		return nil, gerrors.Wrapf(ErrInvalidType, "type %q", typ)
	}
	r := &Record{
		id:        uuid.New(),
		typ:       typ,
		name:      name,
		version:   1,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Record) ID() uuid.UUID        { return r.id }
func (r *Record) Type() Type           { return r.typ }
func (r *Record) Name() string         { return r.name }
func (r *Record) Version() int         { return r.version }
func (r *Record) Data() map[string]any { return r.data }
func (r *Record) IsActive() bool       { return r.isActive }
func (r *Record) CreatedAt() time.Time { return r.createdAt }
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// SetData replaces the template payload and bumps the version.
func (r *Record) SetData(data map[string]any) {
	r.data = data
	r.version++
	r.updatedAt = time.Now()
}

// Instance is a tenant's working copy of a template record.
type Instance struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	typ       Type
	name      string
	data      map[string]any
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

type InstanceOption func(*Instance)

func WithInstanceID(id uuid.UUID) InstanceOption {
	return func(i *Instance) {
		i.id = id
	}
}

func WithInstanceData(data map[string]any) InstanceOption {
	return func(i *Instance) {
		i.data = data
	}
}

func WithInstanceIsActive(isActive bool) InstanceOption {
	return func(i *Instance) {
		i.isActive = isActive
	}
}

func WithInstanceCreatedAt(createdAt time.Time) InstanceOption {
	return func(i *Instance) {
		i.createdAt = createdAt
	}
}

func WithInstanceUpdatedAt(updatedAt time.Time) InstanceOption {
	return func(i *Instance) {
		i.updatedAt = updatedAt
	}
}

func NewInstance(tenantID uuid.UUID, typ Type, name string, opts ...InstanceOption) *Instance {
	i := &Instance{
		id:        uuid.New(),
		tenantID:  tenantID,
		typ:       typ,
		name:      name,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Instance) ID() uuid.UUID        { return i.id }
func (i *Instance) TenantID() uuid.UUID  { return i.tenantID }
func (i *Instance) Type() Type           { return i.typ }
func (i *Instance) Name() string         { return i.name }
func (i *Instance) Data() map[string]any { return i.data }
func (i *Instance) IsActive() bool       { return i.isActive }
func (i *Instance) CreatedAt() time.Time { return i.createdAt }
func (i *Instance) UpdatedAt() time.Time { return i.updatedAt }

func (i *Instance) SetData(data map[string]any) {
	i.data = data
	i.updatedAt = time.Now()
}

func (i *Instance) SetField(field string, value any) {
	if i.data == nil {
		i.data = make(map[string]any, 1)
	}
	i.data[field] = value
	i.updatedAt = time.Now()
}
