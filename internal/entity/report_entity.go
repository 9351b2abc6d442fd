package entity

import (
	"time"

	"github.com/google/uuid"

	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

// Report is one incident record. While status is in_progress it holds the
// autosaved partial state of a live recording; once completed it carries
// the full merged analysis and becomes immutable except for post-hoc
// action item moves.
type Report struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Mode         string
	Status       string
	Category     string
	Summary      string
	Urgency      string
	TemplateUsed string
	Transcript   string

	Analysis     *oracle.Analysis
	Timeline     []oracle.TimelineEntry
	ActionItems  []string
	ActionsTaken []string
	Hazards      []string

	Checklist []checklist.Item
	Notes     []string

	CreatedAt time.Time
	UpdatedAt *time.Time
}
