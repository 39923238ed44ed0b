package employee

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	PositionID *uuid.UUID
	ActiveOnly bool
	Limit      int
	Offset     int
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]*Employee, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]*Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByEmail(ctx context.Context, email string) (*Employee, error)
	Create(ctx context.Context, data *Employee) (*Employee, error)
	Update(ctx context.Context, data *Employee) error
}
