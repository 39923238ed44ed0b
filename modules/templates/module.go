package templates

import (
	"embed"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/presentation/controllers"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/seed"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
)

//go:embed infrastructure/persistence/schema/templates-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterServices(
		services.NewTemplateService(persistence.NewTemplateRepository(), app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewTemplateController(app),
	)
	app.Seeder().Register(seed.DefaultTemplates)
	return nil
}

func (m *Module) Name() string {
	return "templates"
}
