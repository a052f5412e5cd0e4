// internal/app/features/calendar/types.go
package calendar

import "github.com/dalemusser/studypal/internal/domain/models"

// EventInput is the create payload. Dates are RFC 3339.
type EventInput struct {
	Title       string `json:"title" validate:"notblank,max=200" label:"Title"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
	StartDate   string `json:"startDate" validate:"notblank" label:"Start date"`
	EndDate     string `json:"endDate"`
	Type        string `json:"type" validate:"omitempty,eventtype" label:"Type"`
	Priority    string `json:"priority" validate:"omitempty,priority" label:"Priority"`
	Location    string `json:"location" validate:"max=200" label:"Location"`
	IsOnline    bool   `json:"isOnline"`
	MeetingURL  string `json:"meetingUrl" validate:"omitempty,httpurl" label:"Meeting URL"`
	Reminders   []int  `json:"reminders"`
}

// calendarResponse is the GET /events payload.
type calendarResponse struct {
	Events         []models.Event `json:"events"`
	UpcomingEvents []models.Event `json:"upcomingEvents"`
}
