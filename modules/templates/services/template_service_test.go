package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/itf"
)

var errMockNotFound = errors.New("not found")

type mockTemplateRepo struct {
	records      map[uuid.UUID]*template.Record
	instances    map[uuid.UUID]*template.Instance
	inheritances map[uuid.UUID]*template.Inheritance
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{
		records:      make(map[uuid.UUID]*template.Record),
		instances:    make(map[uuid.UUID]*template.Instance),
		inheritances: make(map[uuid.UUID]*template.Inheritance),
	}
}

func (m *mockTemplateRepo) CreateRecord(_ context.Context, data *template.Record) (*template.Record, error) {
	m.records[data.ID()] = data
	return data, nil
}

func (m *mockTemplateRepo) GetRecordByID(_ context.Context, id uuid.UUID) (*template.Record, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, errMockNotFound
	}
	return record, nil
}

func (m *mockTemplateRepo) GetRecords(_ context.Context, typ template.Type) ([]*template.Record, error) {
	out := make([]*template.Record, 0, len(m.records))
	for _, record := range m.records {
		if record.Type() == typ {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) UpdateRecord(_ context.Context, data *template.Record) error {
	m.records[data.ID()] = data
	return nil
}

func (m *mockTemplateRepo) CreateInstance(_ context.Context, data *template.Instance) (*template.Instance, error) {
	m.instances[data.ID()] = data
	return data, nil
}

func (m *mockTemplateRepo) GetInstanceByID(_ context.Context, id uuid.UUID) (*template.Instance, error) {
	instance, ok := m.instances[id]
	if !ok {
		return nil, errMockNotFound
	}
	return instance, nil
}

func (m *mockTemplateRepo) GetInstances(_ context.Context, typ template.Type) ([]*template.Instance, error) {
	out := make([]*template.Instance, 0, len(m.instances))
	for _, instance := range m.instances {
		if instance.Type() == typ {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) UpdateInstance(_ context.Context, data *template.Instance) error {
	m.instances[data.ID()] = data
	return nil
}

func (m *mockTemplateRepo) CreateInheritance(_ context.Context, data *template.Inheritance) (*template.Inheritance, error) {
	m.inheritances[data.ID()] = data
	return data, nil
}

func (m *mockTemplateRepo) GetInheritanceByID(_ context.Context, id uuid.UUID) (*template.Inheritance, error) {
	inh, ok := m.inheritances[id]
	if !ok {
		return nil, errMockNotFound
	}
	return inh, nil
}

func (m *mockTemplateRepo) GetInheritanceByTuple(_ context.Context, typ template.Type, templateID, instanceID uuid.UUID) (*template.Inheritance, error) {
	for _, inh := range m.inheritances {
		if inh.TemplateType() == typ && inh.TemplateID() == templateID && inh.InstanceID() == instanceID {
			return inh, nil
		}
	}
	return nil, errMockNotFound
}

func (m *mockTemplateRepo) GetInheritances(_ context.Context, params *template.InheritanceFindParams) ([]*template.Inheritance, error) {
	out := make([]*template.Inheritance, 0, len(m.inheritances))
	for _, inh := range m.inheritances {
		if params != nil {
			if params.Type != "" && inh.TemplateType() != params.Type {
				continue
			}
			if params.TemplateID != uuid.Nil && inh.TemplateID() != params.TemplateID {
				continue
			}
			if params.ActiveOnly && !inh.IsActive() {
				continue
			}
		}
		out = append(out, inh)
	}
	return out, nil
}

func (m *mockTemplateRepo) GetOutdated(_ context.Context, cutoff time.Time) ([]*template.Inheritance, error) {
	out := make([]*template.Inheritance, 0, len(m.inheritances))
	for _, inh := range m.inheritances {
		if !inh.IsActive() || !inh.AutoSyncEnabled() || inh.InheritanceType() == template.InheritanceOverride {
			continue
		}
		record, ok := m.records[inh.TemplateID()]
		if ok && inh.SyncedVersion() < record.Version() {
			out = append(out, inh)
			continue
		}
		if inh.LastSyncedAt().Before(cutoff) {
			out = append(out, inh)
		}
	}
	return out, nil
}

func (m *mockTemplateRepo) UpdateInheritance(_ context.Context, data *template.Inheritance) error {
	m.inheritances[data.ID()] = data
	return nil
}

type templateFixture struct {
	svc    *services.TemplateService
	repo   *mockTemplateRepo
	ctx    context.Context
	record *template.Record
}

// leaveTemplate has exactly two fields so customization percentages come
// out round.
func setupTemplateService(t *testing.T) *templateFixture {
	t.Helper()
	repo := newMockTemplateRepo()
	svc := services.NewTemplateService(repo, eventbus.NewEventPublisher(logrus.New()))
	ctx := itf.NewTestContext().Build()

	record, err := svc.CreateTemplate(ctx, template.TypeLeaveType, "Annual Leave", map[string]any{
		"days_per_year":  25.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	return &templateFixture{svc: svc, repo: repo, ctx: ctx, record: record}
}

func TestInstantiate_PristineCopy(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	require.Equal(t, f.record.Data(), result.Instance.Data())
	require.Equal(t, template.InheritanceFull, result.Inheritance.InheritanceType())
	require.Equal(t, 0, result.Inheritance.CustomizationLevel())
	require.Equal(t, template.BandNone, result.Inheritance.Band())
	require.True(t, result.Inheritance.CanAutoSync())
}

func TestInstantiate_OverridesScoreCustomization(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year": 30.0,
	})
	require.NoError(t, err)
	require.Equal(t, 50, result.Inheritance.CustomizationLevel())
	require.Equal(t, template.InheritancePartial, result.Inheritance.InheritanceType())
	require.Equal(t, template.BandMedium, result.Inheritance.Band())
	require.Equal(t, 30.0, result.Instance.Data()["days_per_year"])
	require.Equal(t, 5.0, result.Instance.Data()["carry_over_max"])
}

func TestInstantiate_FullOverrideCoveragePromotesToOverride(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  30.0,
		"carry_over_max": 10.0,
	})
	require.NoError(t, err)
	require.Equal(t, 100, result.Inheritance.CustomizationLevel())
	require.Equal(t, template.InheritanceOverride, result.Inheritance.InheritanceType())
	require.Equal(t, template.BandComplete, result.Inheritance.Band())
	require.False(t, result.Inheritance.CanAutoSync())
}

func TestInstantiate_RejectsUnknownField(t *testing.T) {
	f := setupTemplateService(t)

	_, err := f.svc.Instantiate(f.ctx, f.record.ID(), map[string]any{"bogus": 1})
	require.ErrorIs(t, err, services.ErrUnknownField)
}

func TestInstantiate_RejectsDuplicate(t *testing.T) {
	f := setupTemplateService(t)

	_, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	_, err = f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.ErrorIs(t, err, services.ErrAlreadyInstantiated)
}

func TestSync_AppliesTemplateChange(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	syncResult, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.Equal(t, []string{"days_per_year"}, syncResult.AppliedFields)
	require.Empty(t, syncResult.Conflicts)

	instance, err := f.repo.GetInstanceByID(f.ctx, result.Instance.ID())
	require.NoError(t, err)
	require.Equal(t, 28.0, instance.Data()["days_per_year"])
	require.Equal(t, 2, syncResult.Inheritance.SyncedVersion())
}

func TestSync_PreservesConflict(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	// Tenant customizes the same field the template later changes.
	_, err = f.svc.CustomizeInstance(f.ctx, result.Inheritance.ID(), map[string]any{
		"days_per_year": 30.0,
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	syncResult, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.Empty(t, syncResult.AppliedFields)
	require.Len(t, syncResult.Conflicts, 1)
	require.Equal(t, "days_per_year", syncResult.Conflicts[0].Field)
	require.Equal(t, 28.0, syncResult.Conflicts[0].TemplateValue)
	require.Equal(t, 30.0, syncResult.Conflicts[0].InstanceValue)

	// The customized value survives untouched.
	instance, err := f.repo.GetInstanceByID(f.ctx, result.Instance.ID())
	require.NoError(t, err)
	require.Equal(t, 30.0, instance.Data()["days_per_year"])
}

func TestSync_DisabledAutoSyncSkipsButAdvancesBookkeeping(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	result.Inheritance.SetAutoSync(false)
	require.NoError(t, f.repo.UpdateInheritance(f.ctx, result.Inheritance))

	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	before := result.Inheritance.LastSyncedAt()
	syncResult, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.True(t, syncResult.Skipped)
	require.False(t, syncResult.Inheritance.LastSyncedAt().Before(before))
	require.Equal(t, 2, syncResult.Inheritance.SyncedVersion())

	instance, err := f.repo.GetInstanceByID(f.ctx, result.Instance.ID())
	require.NoError(t, err)
	require.Equal(t, 25.0, instance.Data()["days_per_year"])

	// The skip kept the old payload as merge base, so a forced sync still
	// applies the v2 change even though the versions already match.
	forced, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), true)
	require.NoError(t, err)
	require.Equal(t, []string{"days_per_year"}, forced.AppliedFields)

	instance, err = f.repo.GetInstanceByID(f.ctx, result.Instance.ID())
	require.NoError(t, err)
	require.Equal(t, 28.0, instance.Data()["days_per_year"])
}

func TestSync_OverrideRequiresForce(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	_, err = f.svc.MarkOverride(f.ctx, result.Inheritance.ID())
	require.NoError(t, err)

	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	skipped, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.True(t, skipped.Skipped)

	forced, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), true)
	require.NoError(t, err)
	require.Equal(t, []string{"days_per_year"}, forced.AppliedFields)
}

func TestSync_UpToDateIsNoOp(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	syncResult, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.True(t, syncResult.UpToDate)
}

func TestResolveConflict_UseTemplate(t *testing.T) {
	f := setupTemplateService(t)
	inh := conflictedInheritance(t, f)

	resolved, err := f.svc.ResolveConflict(f.ctx, inh.ID(), "days_per_year", services.ResolutionUseTemplate)
	require.NoError(t, err)
	require.Empty(t, resolved.Conflicts())

	instance, err := f.repo.GetInstanceByID(f.ctx, inh.InstanceID())
	require.NoError(t, err)
	require.Equal(t, 28.0, instance.Data()["days_per_year"])
	require.Equal(t, 0, resolved.CustomizationLevel())
}

func TestResolveConflict_KeepInstance(t *testing.T) {
	f := setupTemplateService(t)
	inh := conflictedInheritance(t, f)

	resolved, err := f.svc.ResolveConflict(f.ctx, inh.ID(), "days_per_year", services.ResolutionKeepInstance)
	require.NoError(t, err)
	require.Empty(t, resolved.Conflicts())

	instance, err := f.repo.GetInstanceByID(f.ctx, inh.InstanceID())
	require.NoError(t, err)
	require.Equal(t, 30.0, instance.Data()["days_per_year"])
}

func TestResolveConflict_UnknownField(t *testing.T) {
	f := setupTemplateService(t)
	inh := conflictedInheritance(t, f)

	_, err := f.svc.ResolveConflict(f.ctx, inh.ID(), "carry_over_max", services.ResolutionUseTemplate)
	require.ErrorIs(t, err, services.ErrNoSuchConflict)
}

func TestResetToTemplate(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), map[string]any{"days_per_year": 30.0})
	require.NoError(t, err)
	_, err = f.svc.MarkOverride(f.ctx, result.Inheritance.ID())
	require.NoError(t, err)

	reset, err := f.svc.ResetToTemplate(f.ctx, result.Inheritance.ID())
	require.NoError(t, err)
	require.Equal(t, template.InheritanceFull, reset.InheritanceType())
	require.Equal(t, 0, reset.CustomizationLevel())
	require.Empty(t, reset.Conflicts())

	instance, err := f.repo.GetInstanceByID(f.ctx, result.Instance.ID())
	require.NoError(t, err)
	require.Equal(t, f.record.Data(), instance.Data())
}

func TestGetOutdatedInheritances(t *testing.T) {
	f := setupTemplateService(t)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	outdated, err := f.svc.GetOutdatedInheritances(f.ctx, 30)
	require.NoError(t, err)
	require.Empty(t, outdated)

	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	outdated, err = f.svc.GetOutdatedInheritances(f.ctx, 30)
	require.NoError(t, err)
	require.Len(t, outdated, 1)
	require.Equal(t, result.Inheritance.ID(), outdated[0].ID())
}

func TestGetOutdatedInheritances_SkipsNonAutoSyncable(t *testing.T) {
	f := setupTemplateService(t)

	overridden, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	_, err = f.svc.MarkOverride(f.ctx, overridden.Inheritance.ID())
	require.NoError(t, err)

	skill, err := f.svc.CreateTemplate(f.ctx, template.TypeSkill, "Go Programming", map[string]any{
		"category": "engineering",
	})
	require.NoError(t, err)
	optedOut, err := f.svc.Instantiate(f.ctx, skill.ID(), nil)
	require.NoError(t, err)
	optedOut.Inheritance.SetAutoSync(false)
	require.NoError(t, f.repo.UpdateInheritance(f.ctx, optedOut.Inheritance))

	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateTemplate(f.ctx, skill.ID(), map[string]any{
		"category": "platform",
	})
	require.NoError(t, err)

	outdated, err := f.svc.GetOutdatedInheritances(f.ctx, 30)
	require.NoError(t, err)
	require.Empty(t, outdated)
}

func TestGetOrganizationStats(t *testing.T) {
	f := setupTemplateService(t)

	skill, err := f.svc.CreateTemplate(f.ctx, template.TypeSkill, "Go Programming", map[string]any{
		"category":  "engineering",
		"max_level": 5.0,
	})
	require.NoError(t, err)

	_, err = f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	_, err = f.svc.Instantiate(f.ctx, skill.ID(), map[string]any{"max_level": 3.0})
	require.NoError(t, err)

	stats, err := f.svc.GetOrganizationStats(f.ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalInheritances)
	require.Equal(t, 1, stats.ByType[template.TypeLeaveType])
	require.Equal(t, 1, stats.ByType[template.TypeSkill])
	require.Equal(t, 1, stats.ByInheritanceType[template.InheritanceFull])
	require.Equal(t, 1, stats.ByInheritanceType[template.InheritancePartial])
	require.Equal(t, 25, stats.AvgCustomization)
	require.Equal(t, 2, stats.AutoSyncEnabled)
}

func conflictedInheritance(t *testing.T, f *templateFixture) *template.Inheritance {
	t.Helper()
	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	_, err = f.svc.CustomizeInstance(f.ctx, result.Inheritance.ID(), map[string]any{
		"days_per_year": 30.0,
	})
	require.NoError(t, err)
	_, err = f.svc.UpdateTemplate(f.ctx, f.record.ID(), map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, err)

	syncResult, err := f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.Len(t, syncResult.Conflicts, 1)
	return syncResult.Inheritance
}

type captureMaterializer struct {
	instances []*template.Instance
}

func (m *captureMaterializer) Materialize(_ context.Context, instance *template.Instance) error {
	m.instances = append(m.instances, instance)
	return nil
}

func TestInstantiate_FeedsMaterializer(t *testing.T) {
	f := setupTemplateService(t)
	capture := &captureMaterializer{}
	f.svc.RegisterMaterializer(template.TypeLeaveType, capture)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)
	require.Len(t, capture.instances, 1)
	require.Equal(t, result.Instance.ID(), capture.instances[0].ID())
}

func TestSync_RematerializesAppliedChanges(t *testing.T) {
	f := setupTemplateService(t)
	capture := &captureMaterializer{}
	f.svc.RegisterMaterializer(template.TypeLeaveType, capture)

	result, err := f.svc.Instantiate(f.ctx, f.record.ID(), nil)
	require.NoError(t, err)

	f.record.SetData(map[string]any{
		"days_per_year":  28.0,
		"carry_over_max": 5.0,
	})
	require.NoError(t, f.repo.UpdateRecord(f.ctx, f.record))

	_, err = f.svc.Sync(f.ctx, result.Inheritance.ID(), false)
	require.NoError(t, err)
	require.Len(t, capture.instances, 2)
	require.Equal(t, 28.0, capture.instances[1].Data()["days_per_year"])
}
