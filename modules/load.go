package modules

import (
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hierarchy"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	hierarchy.NewModule(),
	templates.NewModule(),
	hrm.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range BuiltInModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
