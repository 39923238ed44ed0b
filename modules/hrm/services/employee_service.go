package services

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/domain/aggregates/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/aggregates/employee"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

var (
	ErrEmailTaken       = gerrors.New("employee email already taken")
	ErrPositionInactive = gerrors.New("position node is not active")
)

type EmployeeCreatedEvent struct {
	Result *employee.Employee
}

type EmployeeUpdatedEvent struct {
	Result *employee.Employee
}

type EmployeeDeactivatedEvent struct {
	ID uuid.UUID
}

type PositionAssignedEvent struct {
	EmployeeID uuid.UUID
	NodeID     *uuid.UUID
}

type EmployeeService struct {
	repo          employee.Repository
	hierarchyRepo hierarchy.Repository
	publisher     eventbus.EventBus
}

func NewEmployeeService(
	repo employee.Repository,
	hierarchyRepo hierarchy.Repository,
	publisher eventbus.EventBus,
) *EmployeeService {
	return &EmployeeService{
		repo:          repo,
		hierarchyRepo: hierarchyRepo,
		publisher:     publisher,
	}
}

func (s *EmployeeService) Count(ctx context.Context) (int64, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (int64, error) {
		return s.repo.Count(txCtx)
	})
}

func (s *EmployeeService) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*employee.Employee, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *EmployeeService) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*employee.Employee, error) {
		return s.repo.GetPaginated(txCtx, params)
	})
}

func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *EmployeeService) Create(
	ctx context.Context,
	firstName, lastName, email string,
	opts ...employee.Option,
) (*employee.Employee, error) {
	if err := authorizeHRM(ctx, EmployeesAuthzObject, "create"); err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		if existing, err := s.repo.GetByEmail(txCtx, email); err == nil && existing != nil {
			return nil, ErrEmailTaken
		}
		entity := employee.New(tenantID, firstName, lastName, email, opts...)
		if entity.PositionID() != nil {
			if err := s.checkPosition(txCtx, *entity.PositionID()); err != nil {
				return nil, err
			}
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(EmployeeCreatedEvent{Result: created})
	return created, nil
}

func (s *EmployeeService) Update(
	ctx context.Context,
	id uuid.UUID,
	firstName, lastName, email, phone string,
	salary decimal.Decimal,
) (*employee.Employee, error) {
	if err := authorizeHRM(ctx, EmployeesAuthzObject, "update"); err != nil {
		return nil, err
	}

	updated, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if email != entity.Email() {
			if existing, err := s.repo.GetByEmail(txCtx, email); err == nil && existing != nil {
				return nil, ErrEmailTaken
			}
		}
		entity.SetName(firstName, lastName)
		entity.SetContact(email, phone)
		entity.SetSalary(salary)
		if err := s.repo.Update(txCtx, entity); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(EmployeeUpdatedEvent{Result: updated})
	return updated, nil
}

// AssignPosition places the employee on a hierarchy node, or clears the
// placement when nodeID is nil.
func (s *EmployeeService) AssignPosition(ctx context.Context, id uuid.UUID, nodeID *uuid.UUID) (*employee.Employee, error) {
	if err := authorizeHRM(ctx, EmployeesAuthzObject, "update"); err != nil {
		return nil, err
	}

	updated, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*employee.Employee, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if nodeID != nil {
			if err := s.checkPosition(txCtx, *nodeID); err != nil {
				return nil, err
			}
		}
		entity.AssignPosition(nodeID)
		if err := s.repo.Update(txCtx, entity); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(PositionAssignedEvent{EmployeeID: id, NodeID: nodeID})
	return updated, nil
}

func (s *EmployeeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := authorizeHRM(ctx, EmployeesAuthzObject, "delete"); err != nil {
		return err
	}

	err := composables.InTenantTx(ctx, func(txCtx context.Context) error {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		entity.Deactivate()
		return s.repo.Update(txCtx, entity)
	})
	if err != nil {
		return err
	}

	s.publisher.Publish(EmployeeDeactivatedEvent{ID: id})
	return nil
}

func (s *EmployeeService) checkPosition(ctx context.Context, nodeID uuid.UUID) error {
	node, err := s.hierarchyRepo.GetNodeByID(ctx, nodeID)
	if err != nil {
		return err
	}
	if !node.IsActive() {
		return ErrPositionInactive
	}
	return nil
}
