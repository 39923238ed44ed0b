package hrm

import (
	"embed"

	hierarchypersistence "github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/presentation/controllers"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	templateservices "github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
)

//go:embed infrastructure/persistence/schema/hrm-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&MigrationFiles)
	employeeRepo := persistence.NewEmployeeRepository()
	hierarchyRepo := hierarchypersistence.NewHierarchyRepository()
	app.RegisterServices(
		services.NewEmployeeService(employeeRepo, hierarchyRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewEmployeeController(app),
	)

	// The templates module registers before hrm in modules.Load.
	templateService := app.Service(templateservices.TemplateService{}).(*templateservices.TemplateService)
	templateService.RegisterMaterializer(template.TypeSkill, services.NewSkillMaterializer(persistence.NewSkillRepository()))
	templateService.RegisterMaterializer(template.TypeJobRole, services.NewJobRoleMaterializer(persistence.NewJobRoleRepository()))
	templateService.RegisterMaterializer(template.TypeLeaveType, services.NewLeaveTypeMaterializer(persistence.NewLeaveTypeRepository()))
	return nil
}

func (m *Module) Name() string {
	return "hrm"
}
