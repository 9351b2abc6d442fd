package dto

import (
	"time"

	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

type ReportResponse struct {
	Id           string                 `json:"id"`
	Mode         string                 `json:"mode"`
	Status       string                 `json:"status"`
	Category     string                 `json:"category"`
	Summary      string                 `json:"summary"`
	Urgency      string                 `json:"urgency"`
	TemplateUsed string                 `json:"template_used,omitempty"`
	Transcript   string                 `json:"transcript"`
	Analysis     *oracle.Analysis       `json:"analysis,omitempty"`
	Timeline     []oracle.TimelineEntry `json:"timeline"`
	ActionItems  []string               `json:"action_items"`
	ActionsTaken []string               `json:"actions_taken"`
	Hazards      []string               `json:"hazards,omitempty"`
	Checklist    []checklist.Item       `json:"checklist"`
	Notes        []string               `json:"notes"`
	Timestamp    time.Time              `json:"timestamp"`
}

type CompleteActionRequest struct {
	Text string `json:"text" validate:"required"`
}
