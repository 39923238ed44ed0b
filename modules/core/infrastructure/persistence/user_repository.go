package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/domain/aggregates/user"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var ErrUserNotFound = gerrors.New("user not found")

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

const userColumns = `id, tenant_id, email, first_name, last_name, is_active, created_at, updated_at`

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanUser(row)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id=$1 AND email=$2`, tenantID, email)
	return scanUser(row)
}

func (r *PgUserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id=$1 ORDER BY email`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*user.User, 0, 32)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PgUserRepository) Create(ctx context.Context, data *user.User) (*user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO users (id, tenant_id, email, first_name, last_name, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`,
		data.ID(),
		data.TenantID(),
		data.Email(),
		data.FirstName(),
		data.LastName(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create user")
	}
	return r.GetByID(ctx, id)
}

func (r *PgUserRepository) Update(ctx context.Context, data *user.User) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE users
SET email=$3, first_name=$4, last_name=$5, is_active=$6, updated_at=$7
WHERE tenant_id=$1 AND id=$2
`,
		data.TenantID(),
		data.ID(),
		data.Email(),
		data.FirstName(),
		data.LastName(),
		data.IsActive(),
		time.Now(),
	)
	return err
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		id        uuid.UUID
		tenantID  uuid.UUID
		email     string
		firstName string
		lastName  string
		isActive  bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &tenantID, &email, &firstName, &lastName, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.New(
		tenantID,
		email,
		user.WithID(id),
		user.WithName(firstName, lastName),
		user.WithIsActive(isActive),
		user.WithCreatedAt(createdAt),
		user.WithUpdatedAt(updatedAt),
	), nil
}
