package services

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/configuration"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/eventbus"
)

var (
	ErrAlreadyInstantiated = gerrors.New("template already instantiated for this organization")
	ErrUnknownField        = gerrors.New("field is not part of the template")
	ErrNoSuchConflict      = gerrors.New("no preserved conflict for this field")
	ErrUnknownResolution   = gerrors.New("unknown conflict resolution")
)

// ConflictResolution picks a side when a preserved conflict is settled.
type ConflictResolution string

const (
	ResolutionUseTemplate  ConflictResolution = "use_template"
	ResolutionKeepInstance ConflictResolution = "keep_instance"
)

type InstantiateResult struct {
	Instance    *template.Instance
	Inheritance *template.Inheritance
}

type SyncResult struct {
	Inheritance   *template.Inheritance
	AppliedFields []string
	Conflicts     []template.Conflict
	Skipped       bool
	UpToDate      bool
}

// OrganizationStats summarizes a tenant's template usage.
type OrganizationStats struct {
	TotalInheritances int
	ByType            map[template.Type]int
	ByInheritanceType map[template.InheritanceType]int
	ByBand            map[template.CustomizationBand]int
	AvgCustomization  int
	OpenConflicts     int
	AutoSyncEnabled   int
}

type TemplateInstantiatedEvent struct {
	Result *InstantiateResult
}

type TemplateSyncedEvent struct {
	Result *SyncResult
}

type TemplateService struct {
	repo          template.Repository
	publisher     eventbus.EventBus
	materializers map[template.Type]Materializer
}

func NewTemplateService(repo template.Repository, publisher eventbus.EventBus) *TemplateService {
	return &TemplateService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, typ template.Type, name string, data map[string]any) (*template.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Record, error) {
		record, err := template.NewRecord(typ, name, template.WithData(data))
		if err != nil {
			return nil, err
		}
		return s.repo.CreateRecord(txCtx, record)
	})
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, data map[string]any) (*template.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Record, error) {
		record, err := s.repo.GetRecordByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		record.SetData(data)
		if err := s.repo.UpdateRecord(txCtx, record); err != nil {
			return nil, err
		}
		return record, nil
	})
}

func (s *TemplateService) GetTemplates(ctx context.Context, typ template.Type) ([]*template.Record, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*template.Record, error) {
		return s.repo.GetRecords(txCtx, typ)
	})
}

// Instantiate copies a template into a tenant-owned instance and links the
// two. Overrides diverge the copy immediately; the customization level
// reflects them. One instantiation per template per tenant.
func (s *TemplateService) Instantiate(
	ctx context.Context,
	templateID uuid.UUID,
	overrides map[string]any,
) (*InstantiateResult, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*InstantiateResult, error) {
		record, err := s.repo.GetRecordByID(txCtx, templateID)
		if err != nil {
			return nil, err
		}

		existing, err := s.repo.GetInheritances(txCtx, &template.InheritanceFindParams{
			Type:       record.Type(),
			TemplateID: record.ID(),
			ActiveOnly: true,
		})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, gerrors.Wrapf(ErrAlreadyInstantiated, "template %s", record.ID())
		}

		data := cloneData(record.Data())
		for field, value := range overrides {
			if _, ok := data[field]; !ok {
				return nil, gerrors.Wrapf(ErrUnknownField, "field %q", field)
			}
			data[field] = value
		}

		instance := template.NewInstance(tenantID, record.Type(), record.Name(), template.WithInstanceData(data))
		instance, err = s.repo.CreateInstance(txCtx, instance)
		if err != nil {
			return nil, err
		}

		level, err := customizationLevel(record.Data(), data)
		if err != nil {
			return nil, err
		}
		inheritance, err := template.NewInheritance(
			tenantID,
			record.Type(),
			record.ID(),
			instance.ID(),
			template.WithSyncedVersion(record.Version()),
			template.WithSyncedData(cloneData(record.Data())),
		)
		if err != nil {
			return nil, err
		}
		if err := inheritance.SetCustomizationLevel(level); err != nil {
			return nil, err
		}
		inheritance, err = s.repo.CreateInheritance(txCtx, inheritance)
		if err != nil {
			return nil, err
		}
		if err := s.materialize(txCtx, record.Type(), instance); err != nil {
			return nil, err
		}

		return &InstantiateResult{Instance: instance, Inheritance: inheritance}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(TemplateInstantiatedEvent{Result: result})
	return result, nil
}

// CustomizeInstance writes tenant-local field values and reclassifies the
// link from the resulting drift.
func (s *TemplateService) CustomizeInstance(
	ctx context.Context,
	inheritanceID uuid.UUID,
	changes map[string]any,
) (*template.Inheritance, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Inheritance, error) {
		inh, err := s.repo.GetInheritanceByID(txCtx, inheritanceID)
		if err != nil {
			return nil, err
		}
		record, err := s.repo.GetRecordByID(txCtx, inh.TemplateID())
		if err != nil {
			return nil, err
		}
		instance, err := s.repo.GetInstanceByID(txCtx, inh.InstanceID())
		if err != nil {
			return nil, err
		}

		for field, value := range changes {
			if _, ok := record.Data()[field]; !ok {
				return nil, gerrors.Wrapf(ErrUnknownField, "field %q", field)
			}
			instance.SetField(field, value)
		}
		if err := s.repo.UpdateInstance(txCtx, instance); err != nil {
			return nil, err
		}
		if err := s.materialize(txCtx, record.Type(), instance); err != nil {
			return nil, err
		}

		level, err := customizationLevel(record.Data(), instance.Data())
		if err != nil {
			return nil, err
		}
		if err := inh.SetCustomizationLevel(level); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
			return nil, err
		}
		return inh, nil
	})
}

// MarkOverride detaches an instance from syncing while keeping the link for
// reporting and a later reset.
func (s *TemplateService) MarkOverride(ctx context.Context, inheritanceID uuid.UUID) (*template.Inheritance, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Inheritance, error) {
		inh, err := s.repo.GetInheritanceByID(txCtx, inheritanceID)
		if err != nil {
			return nil, err
		}
		if err := inh.Override(); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
			return nil, err
		}
		return inh, nil
	})
}

// Sync three-way merges template changes into the instance. Fields only the
// template changed are applied; fields both sides changed are preserved as
// conflicts, never overwritten. Links that may not auto-sync get their
// bookkeeping touched and nothing else unless force is set.
func (s *TemplateService) Sync(ctx context.Context, inheritanceID uuid.UUID, force bool) (*SyncResult, error) {
	result, err := composables.InTenantTxResult(ctx, func(txCtx context.Context) (*SyncResult, error) {
		inh, err := s.repo.GetInheritanceByID(txCtx, inheritanceID)
		if err != nil {
			return nil, err
		}
		record, err := s.repo.GetRecordByID(txCtx, inh.TemplateID())
		if err != nil {
			return nil, err
		}
		if !force && record.Version() == inh.SyncedVersion() && reflect.DeepEqual(record.Data(), inh.SyncedData()) {
			inh.TouchSync(record.Version())
			if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
				return nil, err
			}
			return &SyncResult{Inheritance: inh, UpToDate: true}, nil
		}
		if !force && !inh.CanAutoSync() {
			inh.TouchSync(record.Version())
			if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
				return nil, err
			}
			return &SyncResult{Inheritance: inh, Skipped: true}, nil
		}

		instance, err := s.repo.GetInstanceByID(txCtx, inh.InstanceID())
		if err != nil {
			return nil, err
		}

		base := inh.SyncedData()
		data := cloneData(instance.Data())
		applied := make([]string, 0, len(record.Data()))
		conflicts := make([]template.Conflict, 0, 2)
		for _, field := range sortedFields(record.Data()) {
			templateValue := record.Data()[field]
			baseValue, hadBase := base[field]
			instanceValue, hasInstance := data[field]

			templateChanged := !hadBase || !reflect.DeepEqual(templateValue, baseValue)
			instanceChanged := !hasInstance || !reflect.DeepEqual(instanceValue, baseValue)

			switch {
			case !templateChanged:
			case !instanceChanged:
				data[field] = templateValue
				applied = append(applied, field)
			case reflect.DeepEqual(templateValue, instanceValue):
			default:
				conflicts = append(conflicts, template.Conflict{
					Field:           field,
					TemplateValue:   templateValue,
					InstanceValue:   instanceValue,
					TemplateVersion: record.Version(),
					DetectedAt:      time.Now(),
				})
			}
		}

		if len(applied) > 0 {
			instance.SetData(data)
			if err := s.repo.UpdateInstance(txCtx, instance); err != nil {
				return nil, err
			}
			if err := s.materialize(txCtx, record.Type(), instance); err != nil {
				return nil, err
			}
		}

		inh.RecordSync(record.Version(), cloneData(record.Data()), conflicts)
		level, err := customizationLevel(record.Data(), data)
		if err != nil {
			return nil, err
		}
		if err := inh.SetCustomizationLevel(level); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
			return nil, err
		}

		return &SyncResult{
			Inheritance:   inh,
			AppliedFields: applied,
			Conflicts:     conflicts,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(TemplateSyncedEvent{Result: result})
	return result, nil
}

// ResolveConflict settles one preserved conflict in favor of either side.
func (s *TemplateService) ResolveConflict(
	ctx context.Context,
	inheritanceID uuid.UUID,
	field string,
	resolution ConflictResolution,
) (*template.Inheritance, error) {
	if resolution != ResolutionUseTemplate && resolution != ResolutionKeepInstance {
		return nil, gerrors.Wrapf(ErrUnknownResolution, "resolution %q", resolution)
	}
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Inheritance, error) {
		inh, err := s.repo.GetInheritanceByID(txCtx, inheritanceID)
		if err != nil {
			return nil, err
		}

		var resolved *template.Conflict
		for _, c := range inh.Conflicts() {
			if c.Field == field {
				conflict := c
				resolved = &conflict
				break
			}
		}
		if resolved == nil {
			return nil, gerrors.Wrapf(ErrNoSuchConflict, "field %q", field)
		}

		if resolution == ResolutionUseTemplate {
			instance, err := s.repo.GetInstanceByID(txCtx, inh.InstanceID())
			if err != nil {
				return nil, err
			}
			instance.SetField(field, resolved.TemplateValue)
			if err := s.repo.UpdateInstance(txCtx, instance); err != nil {
				return nil, err
			}
			if err := s.materialize(txCtx, inh.TemplateType(), instance); err != nil {
				return nil, err
			}
			record, err := s.repo.GetRecordByID(txCtx, inh.TemplateID())
			if err != nil {
				return nil, err
			}
			level, err := customizationLevel(record.Data(), instance.Data())
			if err != nil {
				return nil, err
			}
			if err := inh.SetCustomizationLevel(level); err != nil {
				return nil, err
			}
		}

		inh.ResolveConflict(field)
		if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
			return nil, err
		}
		return inh, nil
	})
}

// ResetToTemplate discards every customization and restores the pristine
// template payload. The only way back from an override.
func (s *TemplateService) ResetToTemplate(ctx context.Context, inheritanceID uuid.UUID) (*template.Inheritance, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*template.Inheritance, error) {
		inh, err := s.repo.GetInheritanceByID(txCtx, inheritanceID)
		if err != nil {
			return nil, err
		}
		record, err := s.repo.GetRecordByID(txCtx, inh.TemplateID())
		if err != nil {
			return nil, err
		}
		instance, err := s.repo.GetInstanceByID(txCtx, inh.InstanceID())
		if err != nil {
			return nil, err
		}

		instance.SetData(cloneData(record.Data()))
		if err := s.repo.UpdateInstance(txCtx, instance); err != nil {
			return nil, err
		}
		if err := s.materialize(txCtx, record.Type(), instance); err != nil {
			return nil, err
		}
		inh.Reset(record.Version(), cloneData(record.Data()))
		if err := s.repo.UpdateInheritance(txCtx, inh); err != nil {
			return nil, err
		}
		return inh, nil
	})
}

// GetOutdatedInheritances lists links behind their template or not synced
// within the staleness window. A non-positive days value falls back to the
// configured default.
func (s *TemplateService) GetOutdatedInheritances(ctx context.Context, days int) ([]*template.Inheritance, error) {
	if days <= 0 {
		days = configuration.Use().Templates.DefaultStaleDays
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) ([]*template.Inheritance, error) {
		return s.repo.GetOutdated(txCtx, cutoff)
	})
}

func (s *TemplateService) GetOrganizationStats(ctx context.Context) (*OrganizationStats, error) {
	return composables.InTenantTxResult(ctx, func(txCtx context.Context) (*OrganizationStats, error) {
		inheritances, err := s.repo.GetInheritances(txCtx, &template.InheritanceFindParams{ActiveOnly: true})
		if err != nil {
			return nil, err
		}

		stats := &OrganizationStats{
			TotalInheritances: len(inheritances),
			ByType:            make(map[template.Type]int),
			ByInheritanceType: make(map[template.InheritanceType]int),
			ByBand:            make(map[template.CustomizationBand]int),
		}
		levelSum := 0
		for _, inh := range inheritances {
			stats.ByType[inh.TemplateType()]++
			stats.ByInheritanceType[inh.InheritanceType()]++
			stats.ByBand[inh.Band()]++
			stats.OpenConflicts += len(inh.Conflicts())
			levelSum += inh.CustomizationLevel()
			if inh.AutoSyncEnabled() {
				stats.AutoSyncEnabled++
			}
		}
		if len(inheritances) > 0 {
			stats.AvgCustomization = levelSum / len(inheritances)
		}
		return stats, nil
	})
}

// customizationLevel scores drift as the share of template fields the
// instance no longer matches, in whole percent.
func customizationLevel(templateData, instanceData map[string]any) (int, error) {
	if len(templateData) == 0 {
		return 0, nil
	}
	patch, err := jsondiff.Compare(templateData, instanceData)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to diff template data")
	}
	changed := make(map[string]struct{}, len(patch))
	for _, op := range patch {
		field := strings.SplitN(strings.TrimPrefix(op.Path, "/"), "/", 2)[0]
		if field != "" {
			changed[field] = struct{}{}
		}
	}
	return len(changed) * 100 / len(templateData), nil
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func sortedFields(data map[string]any) []string {
	fields := make([]string, 0, len(data))
	for field := range data {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
