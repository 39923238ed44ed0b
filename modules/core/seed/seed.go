package seed

import (
	"context"
	"errors"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/aggregates/user"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/entities/tenant"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

const defaultTenantDomain = "default.localhost"

// DefaultTenant ensures a tenant and an admin user exist so a fresh
// installation is usable immediately.
func DefaultTenant(ctx context.Context, app application.Application) error {
	tenantRepo := persistence.NewTenantRepository()
	userRepo := persistence.NewUserRepository()

	ctx = composables.WithPool(ctx, app.DB())

	existing, err := tenantRepo.GetByDomain(ctx, defaultTenantDomain)
	if err != nil && !errors.Is(err, persistence.ErrTenantNotFound) {
		return err
	}
	if existing != nil {
		return nil
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		created, err := tenantRepo.Create(txCtx, tenant.New(
			"Default Organization",
			tenant.WithDomain(defaultTenantDomain),
		))
		if err != nil {
			return err
		}

		adminCtx := composables.WithTenantID(txCtx, created.ID())
		_, err = userRepo.Create(adminCtx, user.New(
			created.ID(),
			"admin@"+defaultTenantDomain,
			user.WithName("System", "Administrator"),
		))
		return err
	})
}
