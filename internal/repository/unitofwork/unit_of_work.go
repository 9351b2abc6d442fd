package unitofwork

import (
	"context"

	"incident-reporting-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ReportRepository() contract.ReportRepository
}
