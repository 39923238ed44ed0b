package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var (
	ErrTemplateNotFound    = gerrors.New("template not found")
	ErrInstanceNotFound    = gerrors.New("template instance not found")
	ErrInheritanceNotFound = gerrors.New("template inheritance not found")
)

type PgTemplateRepository struct{}

func NewTemplateRepository() template.Repository {
	return &PgTemplateRepository{}
}

const recordColumns = `id, type, name, version, data, is_active, created_at, updated_at`

func (r *PgTemplateRepository) CreateRecord(ctx context.Context, data *template.Record) (*template.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(data.Data())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO template_records (id, type, name, version, data, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`,
		data.ID(),
		string(data.Type()),
		data.Name(),
		data.Version(),
		payload,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create template record")
	}
	return r.GetRecordByID(ctx, id)
}

func (r *PgTemplateRepository) GetRecordByID(ctx context.Context, id uuid.UUID) (*template.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+recordColumns+` FROM template_records WHERE id=$1`, id)
	return scanRecord(row)
}

func (r *PgTemplateRepository) GetRecords(ctx context.Context, typ template.Type) ([]*template.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+recordColumns+`
FROM template_records
WHERE type=$1 AND is_active
ORDER BY name
`, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*template.Record, 0, 16)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (r *PgTemplateRepository) UpdateRecord(ctx context.Context, data *template.Record) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data.Data())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE template_records
SET name=$2, version=$3, data=$4, is_active=$5, updated_at=$6
WHERE id=$1
`,
		data.ID(),
		data.Name(),
		data.Version(),
		payload,
		data.IsActive(),
		time.Now(),
	)
	return err
}

const instanceColumns = `id, tenant_id, type, name, data, is_active, created_at, updated_at`

func (r *PgTemplateRepository) CreateInstance(ctx context.Context, data *template.Instance) (*template.Instance, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(data.Data())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO template_instances (id, tenant_id, type, name, data, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`,
		data.ID(),
		data.TenantID(),
		string(data.Type()),
		data.Name(),
		payload,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create template instance")
	}
	return r.GetInstanceByID(ctx, id)
}

func (r *PgTemplateRepository) GetInstanceByID(ctx context.Context, id uuid.UUID) (*template.Instance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+instanceColumns+` FROM template_instances WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanInstance(row)
}

func (r *PgTemplateRepository) GetInstances(ctx context.Context, typ template.Type) ([]*template.Instance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+instanceColumns+`
FROM template_instances
WHERE tenant_id=$1 AND type=$2 AND is_active
ORDER BY name
`, tenantID, string(typ))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*template.Instance, 0, 16)
	for rows.Next() {
		instance, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, rows.Err()
}

func (r *PgTemplateRepository) UpdateInstance(ctx context.Context, data *template.Instance) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(data.Data())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE template_instances
SET name=$3, data=$4, is_active=$5, updated_at=$6
WHERE tenant_id=$1 AND id=$2
`,
		data.TenantID(),
		data.ID(),
		data.Name(),
		payload,
		data.IsActive(),
		time.Now(),
	)
	return err
}

const inheritanceColumns = `id, tenant_id, template_type, template_id, instance_id, inheritance_type, customization_level, auto_sync_enabled, synced_version, synced_data, last_synced_at, conflicts, is_active, created_at, updated_at`

func (r *PgTemplateRepository) CreateInheritance(ctx context.Context, data *template.Inheritance) (*template.Inheritance, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	syncedData, err := json.Marshal(data.SyncedData())
	if err != nil {
		return nil, err
	}
	conflicts, err := json.Marshal(data.Conflicts())
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO template_inheritances (id, tenant_id, template_type, template_id, instance_id, inheritance_type, customization_level, auto_sync_enabled, synced_version, synced_data, last_synced_at, conflicts, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING id
`,
		data.ID(),
		data.TenantID(),
		string(data.TemplateType()),
		data.TemplateID(),
		data.InstanceID(),
		string(data.InheritanceType()),
		data.CustomizationLevel(),
		data.AutoSyncEnabled(),
		data.SyncedVersion(),
		syncedData,
		data.LastSyncedAt(),
		conflicts,
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create template inheritance")
	}
	return r.GetInheritanceByID(ctx, id)
}

func (r *PgTemplateRepository) GetInheritanceByID(ctx context.Context, id uuid.UUID) (*template.Inheritance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+inheritanceColumns+` FROM template_inheritances WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanInheritance(row)
}

func (r *PgTemplateRepository) GetInheritanceByTuple(ctx context.Context, typ template.Type, templateID, instanceID uuid.UUID) (*template.Inheritance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT `+inheritanceColumns+`
FROM template_inheritances
WHERE tenant_id=$1 AND template_type=$2 AND template_id=$3 AND instance_id=$4
`, tenantID, string(typ), templateID, instanceID)
	return scanInheritance(row)
}

func (r *PgTemplateRepository) GetInheritances(ctx context.Context, params *template.InheritanceFindParams) ([]*template.Inheritance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + inheritanceColumns + ` FROM template_inheritances WHERE tenant_id=$1`
	args := []any{tenantID}
	if params != nil {
		if params.Type != "" {
			args = append(args, string(params.Type))
			q += ` AND template_type=$2`
		}
		if params.TemplateID != uuid.Nil {
			args = append(args, params.TemplateID)
			q += ` AND template_id=$` + strconv.Itoa(len(args))
		}
		if params.ActiveOnly {
			q += ` AND is_active`
		}
	}
	q += ` ORDER BY created_at`

	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInheritances(rows)
}

func (r *PgTemplateRepository) GetOutdated(ctx context.Context, cutoff time.Time) ([]*template.Inheritance, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+inheritanceColumns+`
FROM template_inheritances i
JOIN template_records t ON t.id = i.template_id
WHERE i.tenant_id=$1 AND i.is_active
  AND i.auto_sync_enabled AND i.inheritance_type <> 'override'
  AND (i.synced_version < t.version OR i.last_synced_at < $2)
ORDER BY i.last_synced_at
`, tenantID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInheritances(rows)
}

func (r *PgTemplateRepository) UpdateInheritance(ctx context.Context, data *template.Inheritance) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	syncedData, err := json.Marshal(data.SyncedData())
	if err != nil {
		return err
	}
	conflicts, err := json.Marshal(data.Conflicts())
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE template_inheritances
SET inheritance_type=$3, customization_level=$4, auto_sync_enabled=$5, synced_version=$6, synced_data=$7, last_synced_at=$8, conflicts=$9, is_active=$10, updated_at=$11
WHERE tenant_id=$1 AND id=$2
`,
		data.TenantID(),
		data.ID(),
		string(data.InheritanceType()),
		data.CustomizationLevel(),
		data.AutoSyncEnabled(),
		data.SyncedVersion(),
		syncedData,
		data.LastSyncedAt(),
		conflicts,
		data.IsActive(),
		time.Now(),
	)
	return err
}

func collectInheritances(rows pgx.Rows) ([]*template.Inheritance, error) {
	out := make([]*template.Inheritance, 0, 16)
	for rows.Next() {
		inh, err := scanInheritance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inh)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*template.Record, error) {
	var (
		id        uuid.UUID
		typ       string
		name      string
		version   int
		data      []byte
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &typ, &name, &version, &data, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	var decoded map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode template data")
		}
	}
	return template.NewRecord(
		template.Type(typ),
		name,
		template.WithRecordID(id),
		template.WithVersion(version),
		template.WithData(decoded),
		template.WithRecordIsActive(isActive),
		template.WithRecordCreatedAt(createdAt),
		template.WithRecordUpdatedAt(updatedAt),
	)
}

func scanInstance(row pgx.Row) (*template.Instance, error) {
	var (
		id        uuid.UUID
		tenantID  uuid.UUID
		typ       string
		name      string
		data      []byte
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &tenantID, &typ, &name, &data, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	var decoded map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode instance data")
		}
	}
	return template.NewInstance(
		tenantID,
		template.Type(typ),
		name,
		template.WithInstanceID(id),
		template.WithInstanceData(decoded),
		template.WithInstanceIsActive(isActive),
		template.WithInstanceCreatedAt(createdAt),
		template.WithInstanceUpdatedAt(updatedAt),
	), nil
}

func scanInheritance(row pgx.Row) (*template.Inheritance, error) {
	var (
		id                 uuid.UUID
		tenantID           uuid.UUID
		templateType       string
		templateID         uuid.UUID
		instanceID         uuid.UUID
		inheritanceType    string
		customizationLevel int
		autoSyncEnabled    bool
		syncedVersion      int
		syncedData         []byte
		lastSyncedAt       time.Time
		conflicts          []byte
		isActive           bool
		createdAt          time.Time
		updatedAt          time.Time
	)
	if err := row.Scan(
		&id, &tenantID, &templateType, &templateID, &instanceID,
		&inheritanceType, &customizationLevel, &autoSyncEnabled,
		&syncedVersion, &syncedData, &lastSyncedAt, &conflicts,
		&isActive, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInheritanceNotFound
		}
		return nil, err
	}
	var decodedData map[string]any
	if len(syncedData) > 0 {
		if err := json.Unmarshal(syncedData, &decodedData); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode synced data")
		}
	}
	var decodedConflicts []template.Conflict
	if len(conflicts) > 0 {
		if err := json.Unmarshal(conflicts, &decodedConflicts); err != nil {
			return nil, gerrors.Wrap(err, "failed to decode conflicts")
		}
	}
	return template.NewInheritance(
		tenantID,
		template.Type(templateType),
		templateID,
		instanceID,
		template.WithInheritanceID(id),
		template.WithInheritanceType(template.InheritanceType(inheritanceType)),
		template.WithCustomizationLevel(customizationLevel),
		template.WithAutoSync(autoSyncEnabled),
		template.WithSyncedVersion(syncedVersion),
		template.WithSyncedData(decodedData),
		template.WithLastSyncedAt(lastSyncedAt),
		template.WithConflicts(decodedConflicts),
		template.WithInheritanceIsActive(isActive),
		template.WithInheritanceCreatedAt(createdAt),
		template.WithInheritanceUpdatedAt(updatedAt),
	)
}
