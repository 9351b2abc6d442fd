package contract

import (
	"context"

	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	Update(ctx context.Context, report *entity.Report) error
	Upsert(ctx context.Context, report *entity.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Report, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Report, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
