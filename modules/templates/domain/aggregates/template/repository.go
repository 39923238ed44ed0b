package template

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type InheritanceFindParams struct {
	Type       Type
	TemplateID uuid.UUID
	ActiveOnly bool
}

type Repository interface {
	CreateRecord(ctx context.Context, data *Record) (*Record, error)
	GetRecordByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetRecords(ctx context.Context, typ Type) ([]*Record, error)
	UpdateRecord(ctx context.Context, data *Record) error

	CreateInstance(ctx context.Context, data *Instance) (*Instance, error)
	GetInstanceByID(ctx context.Context, id uuid.UUID) (*Instance, error)
	GetInstances(ctx context.Context, typ Type) ([]*Instance, error)
	UpdateInstance(ctx context.Context, data *Instance) error

	CreateInheritance(ctx context.Context, data *Inheritance) (*Inheritance, error)
	GetInheritanceByID(ctx context.Context, id uuid.UUID) (*Inheritance, error)
	// GetInheritanceByTuple looks up the unique link for (tenant from context,
	// type, template, instance).
	GetInheritanceByTuple(ctx context.Context, typ Type, templateID, instanceID uuid.UUID) (*Inheritance, error)
	GetInheritances(ctx context.Context, params *InheritanceFindParams) ([]*Inheritance, error)
	// GetOutdated returns active auto-syncable inheritances (overrides and
	// opted-out links excluded) whose synced version lags the template or
	// whose last sync predates the cutoff.
	GetOutdated(ctx context.Context, cutoff time.Time) ([]*Inheritance, error)
	UpdateInheritance(ctx context.Context, data *Inheritance) error
}
