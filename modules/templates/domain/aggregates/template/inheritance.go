package template

import (
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// InheritanceType tracks how far an instance has drifted from its template.
// The only backward transition is a reset to full.
type InheritanceType string

const (
	InheritanceFull     InheritanceType = "full"
	InheritancePartial  InheritanceType = "partial"
	InheritanceOverride InheritanceType = "override"
)

// CustomizationBand buckets the customization level for reporting.
type CustomizationBand string

const (
	BandNone     CustomizationBand = "none"
	BandLow      CustomizationBand = "low"
	BandMedium   CustomizationBand = "medium"
	BandHigh     CustomizationBand = "high"
	BandComplete CustomizationBand = "complete"
)

// autoSyncCutoff is the customization level at which automatic syncing
// stops: heavily customized instances only sync on explicit request.
const autoSyncCutoff = 75

var (
	ErrInvalidCustomizationLevel = gerrors.New("customization level must be between 0 and 100")
	ErrAlreadyOverride           = gerrors.New("inheritance is already an override")
)

// Conflict preserves both sides of a field the template and the instance
// changed independently. Nothing is overwritten until someone resolves it.
type Conflict struct {
	Field           string    `json:"field"`
	TemplateValue   any       `json:"template_value"`
	InstanceValue   any       `json:"instance_value"`
	TemplateVersion int       `json:"template_version"`
	DetectedAt      time.Time `json:"detected_at"`
}

// Inheritance links one template record to one tenant instance. The
// (tenant, type, template, instance) tuple is unique.
type Inheritance struct {
	id                 uuid.UUID
	tenantID           uuid.UUID
	templateType       Type
	templateID         uuid.UUID
	instanceID         uuid.UUID
	inheritanceType    InheritanceType
	customizationLevel int
	autoSyncEnabled    bool
	syncedVersion      int
	// syncedData snapshots the template payload as of the last applied sync
	// and serves as the merge base for conflict detection.
	syncedData   map[string]any
	lastSyncedAt time.Time
	conflicts    []Conflict
	isActive     bool
	createdAt    time.Time
	updatedAt    time.Time
}

type InheritanceOption func(*Inheritance)

func WithInheritanceID(id uuid.UUID) InheritanceOption {
	return func(i *Inheritance) {
		i.id = id
	}
}

func WithInheritanceType(typ InheritanceType) InheritanceOption {
	return func(i *Inheritance) {
		i.inheritanceType = typ
	}
}

func WithCustomizationLevel(level int) InheritanceOption {
	return func(i *Inheritance) {
		i.customizationLevel = level
	}
}

func WithAutoSync(enabled bool) InheritanceOption {
	return func(i *Inheritance) {
		i.autoSyncEnabled = enabled
	}
}

func WithSyncedVersion(version int) InheritanceOption {
	return func(i *Inheritance) {
		i.syncedVersion = version
	}
}

func WithSyncedData(data map[string]any) InheritanceOption {
	return func(i *Inheritance) {
		i.syncedData = data
	}
}

func WithLastSyncedAt(at time.Time) InheritanceOption {
	return func(i *Inheritance) {
		i.lastSyncedAt = at
	}
}

func WithConflicts(conflicts []Conflict) InheritanceOption {
	return func(i *Inheritance) {
		i.conflicts = conflicts
	}
}

func WithInheritanceIsActive(isActive bool) InheritanceOption {
	return func(i *Inheritance) {
		i.isActive = isActive
	}
}

func WithInheritanceCreatedAt(createdAt time.Time) InheritanceOption {
	return func(i *Inheritance) {
		i.createdAt = createdAt
	}
}

func WithInheritanceUpdatedAt(updatedAt time.Time) InheritanceOption {
	return func(i *Inheritance) {
		i.updatedAt = updatedAt
	}
}

func NewInheritance(tenantID uuid.UUID, typ Type, templateID, instanceID uuid.UUID, opts ...InheritanceOption) (*Inheritance, error) {
	if !typ.IsValid() {
		return nil, gerrors.Wrapf(ErrInvalidType, "type %q", typ)
	}
	i := &Inheritance{
		id:              uuid.New(),
		tenantID:        tenantID,
		templateType:    typ,
		templateID:      templateID,
		instanceID:      instanceID,
		inheritanceType: InheritanceFull,
		autoSyncEnabled: true,
		syncedVersion:   1,
		lastSyncedAt:    time.Now(),
		isActive:        true,
		createdAt:       time.Now(),
		updatedAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.customizationLevel < 0 || i.customizationLevel > 100 {
		return nil, ErrInvalidCustomizationLevel
	}
	return i, nil
}

func (i *Inheritance) ID() uuid.UUID                    { return i.id }
func (i *Inheritance) TenantID() uuid.UUID              { return i.tenantID }
func (i *Inheritance) TemplateType() Type               { return i.templateType }
func (i *Inheritance) TemplateID() uuid.UUID            { return i.templateID }
func (i *Inheritance) InstanceID() uuid.UUID            { return i.instanceID }
func (i *Inheritance) InheritanceType() InheritanceType { return i.inheritanceType }
func (i *Inheritance) CustomizationLevel() int          { return i.customizationLevel }
func (i *Inheritance) AutoSyncEnabled() bool            { return i.autoSyncEnabled }
func (i *Inheritance) SyncedVersion() int               { return i.syncedVersion }
func (i *Inheritance) SyncedData() map[string]any       { return i.syncedData }
func (i *Inheritance) LastSyncedAt() time.Time          { return i.lastSyncedAt }
func (i *Inheritance) Conflicts() []Conflict            { return i.conflicts }
func (i *Inheritance) IsActive() bool                   { return i.isActive }
func (i *Inheritance) CreatedAt() time.Time             { return i.createdAt }
func (i *Inheritance) UpdatedAt() time.Time             { return i.updatedAt }

func (i *Inheritance) Band() CustomizationBand {
	switch {
	case i.customizationLevel == 0:
		return BandNone
	case i.customizationLevel <= 25:
		return BandLow
	case i.customizationLevel <= 50:
		return BandMedium
	case i.customizationLevel <= 75:
		return BandHigh
	default:
		return BandComplete
	}
}

// CanAutoSync reports whether an unattended sync may touch the instance.
// Overrides and heavily customized instances never auto-sync.
func (i *Inheritance) CanAutoSync() bool {
	if !i.autoSyncEnabled {
		return false
	}
	if i.inheritanceType == InheritanceOverride {
		return false
	}
	return i.customizationLevel < autoSyncCutoff
}

// SetCustomizationLevel records drift and advances the type monotonically:
// full -> partial on any drift, anything -> override once drift reaches the
// auto-sync cutoff. It never demotes.
func (i *Inheritance) SetCustomizationLevel(level int) error {
	if level < 0 || level > 100 {
		return ErrInvalidCustomizationLevel
	}
	i.customizationLevel = level
	switch {
	case level >= autoSyncCutoff:
		i.inheritanceType = InheritanceOverride
	case i.inheritanceType == InheritanceFull && level > 0:
		i.inheritanceType = InheritancePartial
	}
	i.updatedAt = time.Now()
	return nil
}

// Override detaches the instance from template syncing entirely.
func (i *Inheritance) Override() error {
	if i.inheritanceType == InheritanceOverride {
		return ErrAlreadyOverride
	}
	i.inheritanceType = InheritanceOverride
	i.updatedAt = time.Now()
	return nil
}

// Reset returns the inheritance to a pristine full link against the given
// template version. The only path out of override.
func (i *Inheritance) Reset(templateVersion int, templateData map[string]any) {
	i.inheritanceType = InheritanceFull
	i.customizationLevel = 0
	i.conflicts = nil
	i.syncedVersion = templateVersion
	i.syncedData = templateData
	i.lastSyncedAt = time.Now()
	i.updatedAt = time.Now()
}

// RecordSync updates the bookkeeping after an applied sync pass.
func (i *Inheritance) RecordSync(templateVersion int, templateData map[string]any, conflicts []Conflict) {
	i.syncedVersion = templateVersion
	i.syncedData = templateData
	i.lastSyncedAt = time.Now()
	i.conflicts = conflicts
	i.updatedAt = time.Now()
}

// TouchSync records that a sync pass ran without applying anything. The
// stored template version still advances; syncedData keeps the old payload
// so a later forced sync merges against the correct base.
func (i *Inheritance) TouchSync(templateVersion int) {
	i.syncedVersion = templateVersion
	i.lastSyncedAt = time.Now()
	i.updatedAt = time.Now()
}

// ResolveConflict drops the named conflict from the preserved set.
func (i *Inheritance) ResolveConflict(field string) bool {
	for idx, c := range i.conflicts {
		if c.Field == field {
			i.conflicts = append(i.conflicts[:idx], i.conflicts[idx+1:]...)
			i.updatedAt = time.Now()
			return true
		}
	}
	return false
}

func (i *Inheritance) SetAutoSync(enabled bool) {
	i.autoSyncEnabled = enabled
	i.updatedAt = time.Now()
}

func (i *Inheritance) Deactivate() {
	i.isActive = false
	i.updatedAt = time.Now()
}
