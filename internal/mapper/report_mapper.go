package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

// Stored jsonb columns may be absent or corrupt; decoding always degrades
// to an empty value so a damaged row never takes down a session.

func decodeJSON[T any](raw datatypes.JSON, out *T) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, out)
}

func encodeJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	e := &entity.Report{
		Id:           r.Id,
		UserId:       r.UserId,
		Mode:         r.Mode,
		Status:       r.Status,
		Category:     r.Category,
		Summary:      r.Summary,
		Urgency:      r.Urgency,
		TemplateUsed: r.TemplateUsed,
		Transcript:   r.Transcript,
		Timeline:     []oracle.TimelineEntry{},
		ActionItems:  []string{},
		ActionsTaken: []string{},
		Hazards:      []string{},
		Checklist:    []checklist.Item{},
		Notes:        []string{},
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}

	decodeJSON(r.Analysis, &e.Analysis)
	decodeJSON(r.Timeline, &e.Timeline)
	decodeJSON(r.ActionItems, &e.ActionItems)
	decodeJSON(r.ActionsTaken, &e.ActionsTaken)
	decodeJSON(r.Hazards, &e.Hazards)
	decodeJSON(r.Checklist, &e.Checklist)
	decodeJSON(r.Notes, &e.Notes)

	return e
}

func (m *ReportMapper) ToModel(e *entity.Report) *model.Report {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	r := &model.Report{
		Id:           e.Id,
		UserId:       e.UserId,
		Mode:         e.Mode,
		Status:       e.Status,
		Category:     e.Category,
		Summary:      e.Summary,
		Urgency:      e.Urgency,
		TemplateUsed: e.TemplateUsed,
		Transcript:   e.Transcript,
		Timeline:     encodeJSON(e.Timeline),
		ActionItems:  encodeJSON(e.ActionItems),
		ActionsTaken: encodeJSON(e.ActionsTaken),
		Hazards:      encodeJSON(e.Hazards),
		Checklist:    encodeJSON(e.Checklist),
		Notes:        encodeJSON(e.Notes),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
	}

	if e.Analysis != nil {
		r.Analysis = encodeJSON(e.Analysis)
	}

	return r
}

func (m *ReportMapper) ToEntities(reports []*model.Report) []*entity.Report {
	entities := make([]*entity.Report, len(reports))
	for i, r := range reports {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
