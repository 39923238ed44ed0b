package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/jobrole"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/leavetype"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/skill"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
)

// SkillMaterializer projects skill template instances into the skills catalog.
type SkillMaterializer struct {
	repo skill.Repository
}

func NewSkillMaterializer(repo skill.Repository) *SkillMaterializer {
	return &SkillMaterializer{repo: repo}
}

func (m *SkillMaterializer) Materialize(ctx context.Context, instance *template.Instance) error {
	data := instance.Data()
	_, err := m.repo.Upsert(ctx, skill.New(
		instance.TenantID(),
		instance.ID(),
		instance.Name(),
		skill.WithCategory(fieldString(data, "category")),
		skill.WithDescription(fieldString(data, "description")),
	))
	return err
}

type JobRoleMaterializer struct {
	repo jobrole.Repository
}

func NewJobRoleMaterializer(repo jobrole.Repository) *JobRoleMaterializer {
	return &JobRoleMaterializer{repo: repo}
}

func (m *JobRoleMaterializer) Materialize(ctx context.Context, instance *template.Instance) error {
	data := instance.Data()
	_, err := m.repo.Upsert(ctx, jobrole.New(
		instance.TenantID(),
		instance.ID(),
		instance.Name(),
		jobrole.WithDescription(fieldString(data, "description")),
		jobrole.WithSalaryBand(fieldDecimal(data, "min_salary"), fieldDecimal(data, "max_salary")),
	))
	return err
}

type LeaveTypeMaterializer struct {
	repo leavetype.Repository
}

func NewLeaveTypeMaterializer(repo leavetype.Repository) *LeaveTypeMaterializer {
	return &LeaveTypeMaterializer{repo: repo}
}

func (m *LeaveTypeMaterializer) Materialize(ctx context.Context, instance *template.Instance) error {
	data := instance.Data()
	_, err := m.repo.Upsert(ctx, leavetype.New(
		instance.TenantID(),
		instance.ID(),
		instance.Name(),
		leavetype.WithDaysPerYear(fieldInt(data, "days_per_year")),
		leavetype.WithCarryOverMax(fieldInt(data, "carry_over_max")),
		leavetype.WithPaid(fieldBool(data, "paid", true)),
	))
	return err
}

// Template payloads come back from jsonb, so numbers arrive as float64.

func fieldString(data map[string]any, field string) string {
	if v, ok := data[field].(string); ok {
		return v
	}
	return ""
}

func fieldInt(data map[string]any, field string) int {
	switch v := data[field].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func fieldDecimal(data map[string]any, field string) decimal.Decimal {
	switch v := data[field].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func fieldBool(data map[string]any, field string, fallback bool) bool {
	if v, ok := data[field].(bool); ok {
		return v
	}
	return fallback
}
