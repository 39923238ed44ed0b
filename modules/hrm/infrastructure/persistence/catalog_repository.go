package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/jobrole"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/leavetype"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/entities/skill"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var (
	ErrSkillNotFound     = gerrors.New("skill not found")
	ErrJobRoleNotFound   = gerrors.New("job role not found")
	ErrLeaveTypeNotFound = gerrors.New("leave type not found")
)

type PgSkillRepository struct{}

func NewSkillRepository() skill.Repository {
	return &PgSkillRepository{}
}

func (r *PgSkillRepository) Upsert(ctx context.Context, data *skill.Skill) (*skill.Skill, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO skills (id, tenant_id, instance_id, name, category, description, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (tenant_id, instance_id) DO UPDATE
SET name=excluded.name, category=excluded.category, description=excluded.description, updated_at=excluded.updated_at
`,
		data.ID(),
		data.TenantID(),
		data.InstanceID(),
		data.Name(),
		data.Category(),
		data.Description(),
		data.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to upsert skill")
	}
	return r.GetByInstanceID(ctx, data.InstanceID())
}

func (r *PgSkillRepository) GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*skill.Skill, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT id, tenant_id, instance_id, name, category, description, created_at, updated_at
FROM skills WHERE tenant_id=$1 AND instance_id=$2
`, tenantID, instanceID)
	return scanSkill(row)
}

func (r *PgSkillRepository) GetAll(ctx context.Context) ([]*skill.Skill, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, tenant_id, instance_id, name, category, description, created_at, updated_at
FROM skills WHERE tenant_id=$1 ORDER BY name
`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*skill.Skill, 0, 16)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSkill(row pgx.Row) (*skill.Skill, error) {
	var (
		id          uuid.UUID
		tenantID    uuid.UUID
		instanceID  uuid.UUID
		name        string
		category    string
		description string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &tenantID, &instanceID, &name, &category, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}
	return skill.New(tenantID, instanceID, name,
		skill.WithID(id),
		skill.WithTimestamps(createdAt, updatedAt),
		skill.WithCategory(category),
		skill.WithDescription(description),
	), nil
}

type PgJobRoleRepository struct{}

func NewJobRoleRepository() jobrole.Repository {
	return &PgJobRoleRepository{}
}

func (r *PgJobRoleRepository) Upsert(ctx context.Context, data *jobrole.JobRole) (*jobrole.JobRole, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO job_roles (id, tenant_id, instance_id, title, description, min_salary, max_salary, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (tenant_id, instance_id) DO UPDATE
SET title=excluded.title, description=excluded.description, min_salary=excluded.min_salary, max_salary=excluded.max_salary, updated_at=excluded.updated_at
`,
		data.ID(),
		data.TenantID(),
		data.InstanceID(),
		data.Title(),
		data.Description(),
		data.MinSalary(),
		data.MaxSalary(),
		data.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to upsert job role")
	}
	return r.GetByInstanceID(ctx, data.InstanceID())
}

func (r *PgJobRoleRepository) GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*jobrole.JobRole, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT id, tenant_id, instance_id, title, description, min_salary, max_salary, created_at, updated_at
FROM job_roles WHERE tenant_id=$1 AND instance_id=$2
`, tenantID, instanceID)
	return scanJobRole(row)
}

func (r *PgJobRoleRepository) GetAll(ctx context.Context) ([]*jobrole.JobRole, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, tenant_id, instance_id, title, description, min_salary, max_salary, created_at, updated_at
FROM job_roles WHERE tenant_id=$1 ORDER BY title
`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*jobrole.JobRole, 0, 16)
	for rows.Next() {
		j, err := scanJobRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJobRole(row pgx.Row) (*jobrole.JobRole, error) {
	var (
		id          uuid.UUID
		tenantID    uuid.UUID
		instanceID  uuid.UUID
		title       string
		description string
		minSalary   decimal.Decimal
		maxSalary   decimal.Decimal
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&id, &tenantID, &instanceID, &title, &description, &minSalary, &maxSalary, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobRoleNotFound
		}
		return nil, err
	}
	return jobrole.New(tenantID, instanceID, title,
		jobrole.WithID(id),
		jobrole.WithTimestamps(createdAt, updatedAt),
		jobrole.WithDescription(description),
		jobrole.WithSalaryBand(minSalary, maxSalary),
	), nil
}

type PgLeaveTypeRepository struct{}

func NewLeaveTypeRepository() leavetype.Repository {
	return &PgLeaveTypeRepository{}
}

func (r *PgLeaveTypeRepository) Upsert(ctx context.Context, data *leavetype.LeaveType) (*leavetype.LeaveType, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `
INSERT INTO leave_types (id, tenant_id, instance_id, name, days_per_year, carry_over_max, paid, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (tenant_id, instance_id) DO UPDATE
SET name=excluded.name, days_per_year=excluded.days_per_year, carry_over_max=excluded.carry_over_max, paid=excluded.paid, updated_at=excluded.updated_at
`,
		data.ID(),
		data.TenantID(),
		data.InstanceID(),
		data.Name(),
		data.DaysPerYear(),
		data.CarryOverMax(),
		data.Paid(),
		data.CreatedAt(),
		time.Now(),
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to upsert leave type")
	}
	return r.GetByInstanceID(ctx, data.InstanceID())
}

func (r *PgLeaveTypeRepository) GetByInstanceID(ctx context.Context, instanceID uuid.UUID) (*leavetype.LeaveType, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
SELECT id, tenant_id, instance_id, name, days_per_year, carry_over_max, paid, created_at, updated_at
FROM leave_types WHERE tenant_id=$1 AND instance_id=$2
`, tenantID, instanceID)
	return scanLeaveType(row)
}

func (r *PgLeaveTypeRepository) GetAll(ctx context.Context) ([]*leavetype.LeaveType, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, tenant_id, instance_id, name, days_per_year, carry_over_max, paid, created_at, updated_at
FROM leave_types WHERE tenant_id=$1 ORDER BY name
`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*leavetype.LeaveType, 0, 16)
	for rows.Next() {
		l, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLeaveType(row pgx.Row) (*leavetype.LeaveType, error) {
	var (
		id           uuid.UUID
		tenantID     uuid.UUID
		instanceID   uuid.UUID
		name         string
		daysPerYear  int
		carryOverMax int
		paid         bool
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&id, &tenantID, &instanceID, &name, &daysPerYear, &carryOverMax, &paid, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeaveTypeNotFound
		}
		return nil, err
	}
	return leavetype.New(tenantID, instanceID, name,
		leavetype.WithID(id),
		leavetype.WithTimestamps(createdAt, updatedAt),
		leavetype.WithDaysPerYear(daysPerYear),
		leavetype.WithCarryOverMax(carryOverMax),
		leavetype.WithPaid(paid),
	), nil
}
