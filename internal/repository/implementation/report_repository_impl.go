package implementation

import (
	"context"
	"errors"

	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/mapper"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/internal/repository/contract"
	"incident-reporting-be/internal/repository/scope"
	"incident-reporting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReportMapper
}

func NewReportRepository(db *gorm.DB) contract.ReportRepository {
	return &ReportRepositoryImpl{
		db:     db,
		mapper: mapper.NewReportMapper(),
	}
}

func (r *ReportRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *entity.Report) error {
	m := r.mapper.ToModel(report)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*report = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, report *entity.Report) error {
	m := r.mapper.ToModel(report)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*report = *r.mapper.ToEntity(m)
	return nil
}

// Upsert writes the autosave snapshot keyed by report id. The id is
// minted once per session and reused for every tick, so conflicts update
// in place.
func (r *ReportRepositoryImpl) Upsert(ctx context.Context, report *entity.Report) error {
	m := r.mapper.ToModel(report)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return err
	}
	*report = *r.mapper.ToEntity(m)
	return nil
}

// Delete soft-deletes so a report removed from history stays auditable.
func (r *ReportRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Report{}, id).Error
}

// HardDelete removes the row outright. Discarded sessions and orphaned
// autosave records never reach history, so nothing is kept.
func (r *ReportRepositoryImpl) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(scope.WithSoftDelete).Delete(&model.Report{}, id).Error
}

func (r *ReportRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Report, error) {
	var m model.Report
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ReportRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Report, error) {
	var models []*model.Report
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ReportRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Report{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
