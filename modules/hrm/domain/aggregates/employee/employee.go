package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Employee is a person on a tenant's payroll. The position id points at a
// node in the tenant's organizational hierarchy; unassigned employees carry
// nil.
type Employee struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	firstName  string
	lastName   string
	email      string
	phone      string
	positionID *uuid.UUID
	salary     decimal.Decimal
	hireDate   time.Time
	isActive   bool
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Employee)

func WithID(id uuid.UUID) Option {
	return func(e *Employee) {
		e.id = id
	}
}

func WithPhone(phone string) Option {
	return func(e *Employee) {
		e.phone = phone
	}
}

func WithPositionID(positionID *uuid.UUID) Option {
	return func(e *Employee) {
		e.positionID = positionID
	}
}

func WithSalary(salary decimal.Decimal) Option {
	return func(e *Employee) {
		e.salary = salary
	}
}

func WithHireDate(hireDate time.Time) Option {
	return func(e *Employee) {
		e.hireDate = hireDate
	}
}

func WithIsActive(isActive bool) Option {
	return func(e *Employee) {
		e.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(e *Employee) {
		e.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(e *Employee) {
		e.updatedAt = updatedAt
	}
}

func New(tenantID uuid.UUID, firstName, lastName, email string, opts ...Option) *Employee {
	e := &Employee{
		id:        uuid.New(),
		tenantID:  tenantID,
		firstName: firstName,
		lastName:  lastName,
		email:     email,
		hireDate:  time.Now(),
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Employee) ID() uuid.UUID           { return e.id }
func (e *Employee) TenantID() uuid.UUID     { return e.tenantID }
func (e *Employee) FirstName() string       { return e.firstName }
func (e *Employee) LastName() string        { return e.lastName }
func (e *Employee) Email() string           { return e.email }
func (e *Employee) Phone() string           { return e.phone }
func (e *Employee) PositionID() *uuid.UUID  { return e.positionID }
func (e *Employee) Salary() decimal.Decimal { return e.salary }
func (e *Employee) HireDate() time.Time     { return e.hireDate }
func (e *Employee) IsActive() bool          { return e.isActive }
func (e *Employee) CreatedAt() time.Time    { return e.createdAt }
func (e *Employee) UpdatedAt() time.Time    { return e.updatedAt }

func (e *Employee) FullName() string {
	return e.firstName + " " + e.lastName
}

func (e *Employee) SetName(firstName, lastName string) {
	e.firstName = firstName
	e.lastName = lastName
	e.updatedAt = time.Now()
}

func (e *Employee) SetContact(email, phone string) {
	e.email = email
	e.phone = phone
	e.updatedAt = time.Now()
}

func (e *Employee) SetSalary(salary decimal.Decimal) {
	e.salary = salary
	e.updatedAt = time.Now()
}

// AssignPosition places the employee on a hierarchy node; nil detaches.
func (e *Employee) AssignPosition(positionID *uuid.UUID) {
	e.positionID = positionID
	e.updatedAt = time.Now()
}

func (e *Employee) Deactivate() {
	e.isActive = false
	e.updatedAt = time.Now()
}
