package hierarchy

import (
	"embed"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/presentation/controllers"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
)

//go:embed infrastructure/persistence/schema/hierarchy-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	hierarchyRepo := persistence.NewHierarchyRepository()
	permissionRepo := persistence.NewPermissionRepository()
	app.RegisterServices(
		services.NewHierarchyService(hierarchyRepo, app.EventPublisher()),
		services.NewPermissionService(permissionRepo, hierarchyRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewHierarchyController(app),
	)
	return nil
}

func (m *Module) Name() string {
	return "hierarchy"
}
