package service

import (
	"context"
	"errors"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/dto"
	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/repository/specification"
	"incident-reporting-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IReportService interface {
	History(ctx context.Context, userId uuid.UUID, mode string, limit, offset int) ([]*dto.ReportResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ReportResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	CompleteActionItem(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.CompleteActionRequest) (*dto.ReportResponse, error)
}

type reportService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewReportService(uowFactory unitofwork.RepositoryFactory) IReportService {
	return &reportService{
		uowFactory: uowFactory,
	}
}

func (s *reportService) History(ctx context.Context, userId uuid.UUID, mode string, limit, offset int) ([]*dto.ReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	specs := []specification.Specification{
		specification.ReportOwnedByUser{UserID: userId},
		specification.ByStatus{Status: constant.StatusCompleted},
		specification.OrderByUpdatedDesc{},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if mode != "" {
		if !constant.ValidMode(mode) {
			return nil, errors.New("unknown report mode")
		}
		specs = append(specs, specification.ByMode{Mode: mode})
	}

	reports, err := uow.ReportRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ReportResponse, len(reports))
	for i, r := range reports {
		out[i] = toReportResponse(r)
	}
	return out, nil
}

func (s *reportService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ReportResponse, error) {
	report, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	return toReportResponse(report), nil
}

func (s *reportService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	report, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return err
	}
	return uow.ReportRepository().Delete(ctx, report.Id)
}

// CompleteActionItem moves one suggested follow-up into actions taken
// after the report is finalized. Remove-by-value, append, re-persist; it
// never reopens the session or changes status.
func (s *reportService) CompleteActionItem(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.CompleteActionRequest) (*dto.ReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	report, err := s.findOwned(ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if report.Status != constant.StatusCompleted {
		return nil, errors.New("report is not completed")
	}

	idx := -1
	for i, text := range report.ActionItems {
		if text == req.Text {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.New("action item not found")
	}

	report.ActionItems = append(report.ActionItems[:idx], report.ActionItems[idx+1:]...)
	report.ActionsTaken = append(report.ActionsTaken, req.Text)

	if err := uow.ReportRepository().Update(ctx, report); err != nil {
		return nil, err
	}
	return toReportResponse(report), nil
}

func (s *reportService) findOwned(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Report, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	report, err := uow.ReportRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ReportOwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.New("report not found")
	}
	return report, nil
}

func toReportResponse(r *entity.Report) *dto.ReportResponse {
	res := &dto.ReportResponse{
		Id:           r.Id.String(),
		Mode:         r.Mode,
		Status:       r.Status,
		Category:     r.Category,
		Summary:      r.Summary,
		Urgency:      r.Urgency,
		TemplateUsed: r.TemplateUsed,
		Transcript:   r.Transcript,
		Analysis:     r.Analysis,
		Timeline:     r.Timeline,
		ActionItems:  r.ActionItems,
		ActionsTaken: r.ActionsTaken,
		Hazards:      r.Hazards,
		Checklist:    r.Checklist,
		Notes:        r.Notes,
		Timestamp:    r.CreatedAt,
	}
	if r.UpdatedAt != nil {
		res.Timestamp = *r.UpdatedAt
	}
	return res
}
