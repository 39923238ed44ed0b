package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/entities/tenant"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var ErrTenantNotFound = gerrors.New("tenant not found")

type PgTenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &PgTenantRepository{}
}

const tenantColumns = `id, name, domain, industry, is_active, created_at, updated_at`

func (r *PgTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id=$1`, id)
	return scanTenant(row)
}

func (r *PgTenantRepository) GetByDomain(ctx context.Context, domain string) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE domain=$1`, domain)
	return scanTenant(row)
}

func (r *PgTenantRepository) GetAll(ctx context.Context) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*tenant.Tenant, 0, 16)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PgTenantRepository) Create(ctx context.Context, data *tenant.Tenant) (*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO tenants (id, name, domain, industry, is_active, created_at, updated_at)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7)
RETURNING id
`,
		data.ID(),
		data.Name(),
		data.Domain(),
		data.Industry(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create tenant")
	}
	return r.GetByID(ctx, id)
}

func (r *PgTenantRepository) Update(ctx context.Context, data *tenant.Tenant) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE tenants
SET name=$2, domain=NULLIF($3,''), industry=$4, is_active=$5, updated_at=$6
WHERE id=$1
`,
		data.ID(),
		data.Name(),
		data.Domain(),
		data.Industry(),
		data.IsActive(),
		time.Now(),
	)
	return err
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var (
		id        uuid.UUID
		name      string
		domain    *string
		industry  *string
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &domain, &industry, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	opts := []tenant.Option{
		tenant.WithID(id),
		tenant.WithIsActive(isActive),
		tenant.WithCreatedAt(createdAt),
		tenant.WithUpdatedAt(updatedAt),
	}
	if domain != nil {
		opts = append(opts, tenant.WithDomain(*domain))
	}
	if industry != nil {
		opts = append(opts, tenant.WithIndustry(*industry))
	}
	return tenant.New(name, opts...), nil
}
