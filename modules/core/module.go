package core

import (
	"embed"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/seed"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterServices(
		services.NewTenantService(persistence.NewTenantRepository(), app.EventPublisher()),
		services.NewUserService(persistence.NewUserRepository(), app.EventPublisher()),
	)
	app.Seeder().Register(seed.DefaultTenant)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
