package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/hrm/domain/aggregates/employee"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

var ErrEmployeeNotFound = gerrors.New("employee not found")

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

const employeeColumns = `id, tenant_id, first_name, last_name, email, phone, position_id, salary, hire_date, is_active, created_at, updated_at`

func (r *PgEmployeeRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE tenant_id=$1 AND is_active`, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PgEmployeeRepository) GetAll(ctx context.Context) ([]*employee.Employee, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT `+employeeColumns+`
FROM employees
WHERE tenant_id=$1 AND is_active
ORDER BY last_name, first_name
`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (r *PgEmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]*employee.Employee, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + employeeColumns + ` FROM employees WHERE tenant_id=$1`
	args := []any{tenantID}
	if params != nil {
		if params.PositionID != nil {
			args = append(args, *params.PositionID)
			q += ` AND position_id=$` + strconv.Itoa(len(args))
		}
		if params.ActiveOnly {
			q += ` AND is_active`
		}
	}
	q += ` ORDER BY last_name, first_name`
	if params != nil && params.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(params.Limit) + ` OFFSET ` + strconv.Itoa(params.Offset)
	}

	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEmployees(rows)
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*employee.Employee, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	return scanEmployee(row)
}

func (r *PgEmployeeRepository) GetByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE tenant_id=$1 AND email=$2`, tenantID, email)
	return scanEmployee(row)
}

func (r *PgEmployeeRepository) Create(ctx context.Context, data *employee.Employee) (*employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var id uuid.UUID
	if err := tx.QueryRow(ctx, `
INSERT INTO employees (id, tenant_id, first_name, last_name, email, phone, position_id, salary, hire_date, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`,
		data.ID(),
		data.TenantID(),
		data.FirstName(),
		data.LastName(),
		data.Email(),
		data.Phone(),
		data.PositionID(),
		data.Salary(),
		data.HireDate(),
		data.IsActive(),
		data.CreatedAt(),
		data.UpdatedAt(),
	).Scan(&id); err != nil {
		return nil, gerrors.Wrap(err, "failed to create employee")
	}
	return r.GetByID(ctx, id)
}

func (r *PgEmployeeRepository) Update(ctx context.Context, data *employee.Employee) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE employees
SET first_name=$3, last_name=$4, email=$5, phone=$6, position_id=$7, salary=$8, hire_date=$9, is_active=$10, updated_at=$11
WHERE tenant_id=$1 AND id=$2
`,
		data.TenantID(),
		data.ID(),
		data.FirstName(),
		data.LastName(),
		data.Email(),
		data.Phone(),
		data.PositionID(),
		data.Salary(),
		data.HireDate(),
		data.IsActive(),
		time.Now(),
	)
	return err
}

func collectEmployees(rows pgx.Rows) ([]*employee.Employee, error) {
	out := make([]*employee.Employee, 0, 32)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         uuid.UUID
		tenantID   uuid.UUID
		firstName  string
		lastName   string
		email      string
		phone      string
		positionID *uuid.UUID
		salary     decimal.Decimal
		hireDate   time.Time
		isActive   bool
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &tenantID, &firstName, &lastName, &email, &phone, &positionID, &salary, &hireDate, &isActive, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee.New(
		tenantID,
		firstName,
		lastName,
		email,
		employee.WithID(id),
		employee.WithPhone(phone),
		employee.WithPositionID(positionID),
		employee.WithSalary(salary),
		employee.WithHireDate(hireDate),
		employee.WithIsActive(isActive),
		employee.WithCreatedAt(createdAt),
		employee.WithUpdatedAt(updatedAt),
	), nil
}
