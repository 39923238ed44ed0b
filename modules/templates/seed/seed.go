package seed

import (
	"context"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/infrastructure/persistence"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

// DefaultTemplates installs a starter catalog so a fresh installation has
// something to instantiate.
func DefaultTemplates(ctx context.Context, app application.Application) error {
	repo := persistence.NewTemplateRepository()
	ctx = composables.WithPool(ctx, app.DB())

	starters := []struct {
		typ  template.Type
		name string
		data map[string]any
	}{
		{template.TypeLeaveType, "Annual Leave", map[string]any{
			"days_per_year":     25.0,
			"carry_over_max":    5.0,
			"requires_approval": true,
		}},
		{template.TypeLeaveType, "Sick Leave", map[string]any{
			"days_per_year":     10.0,
			"carry_over_max":    0.0,
			"requires_approval": false,
		}},
		{template.TypeSkill, "Go Programming", map[string]any{
			"category":  "engineering",
			"max_level": 5.0,
		}},
		{template.TypeJobRole, "Software Engineer", map[string]any{
			"grade":       "IC3",
			"salary_band": "B",
		}},
	}

	return composables.InTx(ctx, func(txCtx context.Context) error {
		for _, starter := range starters {
			existing, err := repo.GetRecords(txCtx, starter.typ)
			if err != nil {
				return err
			}
			found := false
			for _, record := range existing {
				if record.Name() == starter.name {
					found = true
					break
				}
			}
			if found {
				continue
			}

			record, err := template.NewRecord(starter.typ, starter.name, template.WithData(starter.data))
			if err != nil {
				return err
			}
			if _, err := repo.CreateRecord(txCtx, record); err != nil {
				return err
			}
		}
		return nil
	})
}
