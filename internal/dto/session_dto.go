package dto

import (
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
)

type StartSessionRequest struct {
	Mode string `json:"mode" validate:"required,oneof=EMS FIRE"`
}

type ToggleConsentRequest struct {
	SpeakerId *int `json:"speakerId" validate:"required"`
}

type ToggleItemRequest struct {
	ItemId string `json:"itemId" validate:"required"`
}

type ManualEventRequest struct {
	// Optional zero-padded "HH:MM" override; defaults to now.
	Time        string `json:"time" validate:"omitempty,datetime=15:04"`
	Description string `json:"description" validate:"required"`
}

type StopSessionRequest struct {
	// Optional agency report template forwarded to the analysis model.
	Template string `json:"template"`
}

type SessionResponse struct {
	Id                string                 `json:"id"`
	Mode              string                 `json:"mode"`
	Status            string                 `json:"status"`
	Resumed           bool                   `json:"resumed"`
	Transcript        string                 `json:"transcript"`
	Speakers          []int                  `json:"speakers"`
	ConsentedSpeakers []int                  `json:"consentedSpeakers"`
	Items             []checklist.Item       `json:"items"`
	Notes             []string               `json:"notes"`
	ManualEvents      []oracle.TimelineEntry `json:"manualEvents"`
}

type ToggleConsentResponse struct {
	SpeakerId         int   `json:"speakerId"`
	Consented         bool  `json:"consented"`
	ConsentedSpeakers []int `json:"consentedSpeakers"`
}

type ToggleItemResponse struct {
	Item        checklist.Item       `json:"item"`
	ManualEvent oracle.TimelineEntry `json:"manualEvent"`
}
