package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/aggregates/user"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

type UserCreatedEvent struct {
	Result *user.User
}

type UserService struct {
	repo      user.Repository
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		return s.repo.GetByID(txCtx, id)
	})
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		return s.repo.GetByEmail(txCtx, email)
	})
}

func (s *UserService) GetAll(ctx context.Context) ([]*user.User, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*user.User, error) {
		return s.repo.GetAll(txCtx)
	})
}

func (s *UserService) Create(ctx context.Context, data *user.User) (*user.User, error) {
	created, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*user.User, error) {
		return s.repo.Create(txCtx, data)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(UserCreatedEvent{Result: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, data *user.User) error {
	return composables.InTenantTx(ctx, func(txCtx context.Context) error {
		return s.repo.Update(txCtx, data)
	})
}
