package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/entities/tenant"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

type TenantCreatedEvent struct {
	Result *tenant.Tenant
}

// TenantService is tenant-agnostic: it manages the tenants themselves, so
// reads go straight to the pool and writes use a plain transaction.
type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	return s.repo.GetByDomain(ctx, domain)
}

func (s *TenantService) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.repo.GetAll(ctx)
}

func (s *TenantService) Create(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	var created *tenant.Tenant
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var innerErr error
		created, innerErr = s.repo.Create(txCtx, data)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(TenantCreatedEvent{Result: created})
	return created, nil
}

func (s *TenantService) Update(ctx context.Context, data *tenant.Tenant) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	})
}
