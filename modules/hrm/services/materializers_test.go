package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/leavetype"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/skill"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
)

type mockLeaveTypeRepo struct {
	byInstance map[uuid.UUID]*leavetype.LeaveType
}

func (m *mockLeaveTypeRepo) Upsert(_ context.Context, data *leavetype.LeaveType) (*leavetype.LeaveType, error) {
	m.byInstance[data.InstanceID()] = data
	return data, nil
}

func (m *mockLeaveTypeRepo) GetByInstanceID(_ context.Context, instanceID uuid.UUID) (*leavetype.LeaveType, error) {
	l, ok := m.byInstance[instanceID]
	if !ok {
		return nil, errMockNotFound
	}
	return l, nil
}

func (m *mockLeaveTypeRepo) GetAll(_ context.Context) ([]*leavetype.LeaveType, error) {
	out := make([]*leavetype.LeaveType, 0, len(m.byInstance))
	for _, l := range m.byInstance {
		out = append(out, l)
	}
	return out, nil
}

type mockSkillRepo struct {
	byInstance map[uuid.UUID]*skill.Skill
}

func (m *mockSkillRepo) Upsert(_ context.Context, data *skill.Skill) (*skill.Skill, error) {
	m.byInstance[data.InstanceID()] = data
	return data, nil
}

func (m *mockSkillRepo) GetByInstanceID(_ context.Context, instanceID uuid.UUID) (*skill.Skill, error) {
	s, ok := m.byInstance[instanceID]
	if !ok {
		return nil, errMockNotFound
	}
	return s, nil
}

func (m *mockSkillRepo) GetAll(_ context.Context) ([]*skill.Skill, error) {
	out := make([]*skill.Skill, 0, len(m.byInstance))
	for _, s := range m.byInstance {
		out = append(out, s)
	}
	return out, nil
}

func TestLeaveTypeMaterializer_ConvertsJSONNumbers(t *testing.T) {
	repo := &mockLeaveTypeRepo{byInstance: make(map[uuid.UUID]*leavetype.LeaveType)}
	m := NewLeaveTypeMaterializer(repo)

	instance := template.NewInstance(uuid.New(), template.TypeLeaveType, "Annual Leave",
		template.WithInstanceData(map[string]any{
			"days_per_year":  25.0,
			"carry_over_max": 5.0,
			"paid":           true,
		}),
	)
	require.NoError(t, m.Materialize(context.Background(), instance))

	row, err := repo.GetByInstanceID(context.Background(), instance.ID())
	require.NoError(t, err)
	require.Equal(t, "Annual Leave", row.Name())
	require.Equal(t, 25, row.DaysPerYear())
	require.Equal(t, 5, row.CarryOverMax())
	require.True(t, row.Paid())
}

func TestLeaveTypeMaterializer_UpsertIsIdempotent(t *testing.T) {
	repo := &mockLeaveTypeRepo{byInstance: make(map[uuid.UUID]*leavetype.LeaveType)}
	m := NewLeaveTypeMaterializer(repo)

	instance := template.NewInstance(uuid.New(), template.TypeLeaveType, "Sick Leave",
		template.WithInstanceData(map[string]any{"days_per_year": 10.0}),
	)
	require.NoError(t, m.Materialize(context.Background(), instance))

	instance.SetField("days_per_year", 12.0)
	require.NoError(t, m.Materialize(context.Background(), instance))

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 12, all[0].DaysPerYear())
}

func TestSkillMaterializer_CopiesStringFields(t *testing.T) {
	repo := &mockSkillRepo{byInstance: make(map[uuid.UUID]*skill.Skill)}
	m := NewSkillMaterializer(repo)

	instance := template.NewInstance(uuid.New(), template.TypeSkill, "Go Programming",
		template.WithInstanceData(map[string]any{
			"category":    "engineering",
			"description": "Backend development in Go",
		}),
	)
	require.NoError(t, m.Materialize(context.Background(), instance))

	row, err := repo.GetByInstanceID(context.Background(), instance.ID())
	require.NoError(t, err)
	require.Equal(t, "engineering", row.Category())
	require.Equal(t, "Backend development in Go", row.Description())
}
