package application

import (
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

// Occurrence is a single scheduled game.
type Occurrence = persistence.Occurrence

// Template is a recurrence template.
type Template = persistence.RecurrenceTemplate

// Participant is a registered player.
type Participant = persistence.Participant

// Registration is a participant's place on a roster.
type Registration = persistence.Registration

// RosterEntry is one line of an occurrence's roster.
type RosterEntry = persistence.RosterEntry

// ParticipantStats summarises registrations for admins.
type ParticipantStats struct {
	Total      int
	Registered int
	Incomplete int
}

// CreateOccurrenceInput captures the fields an admin supplies for a one-off game.
// A zero Capacity uses the service default. A nil PublishAt publishes immediately.
type CreateOccurrenceInput struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=4000"`
	StartsAt    time.Time
	Location    string `validate:"required,max=200"`
	Capacity    int    `validate:"min=0,max=500"`
	Host        string `validate:"max=100"`
	TemplateKey string `validate:"omitempty,oneof=standard league tournament custom"`
	CustomText  *string
	CreatedBy   string `validate:"required"`
	PublishAt   *time.Time
}

// CreateTemplateInput captures the fields of a recurring game schedule.
// GameTime and AnnouncementTime are "HH:MM".
type CreateTemplateInput struct {
	Title                 string `validate:"required,max=200"`
	Description           string `validate:"max=4000"`
	Location              string `validate:"required,max=200"`
	Capacity              int    `validate:"min=0,max=500"`
	Kind                  string `validate:"required,oneof=ONCE DAILY WEEKLY BIWEEKLY MONTHLY"`
	GameTime              string `validate:"required"`
	AnnouncementTime      string `validate:"required"`
	AnnouncementDayOffset int    `validate:"min=0,max=7"`
	DayOfWeek             *time.Weekday
	StartsOn              time.Time
	EndsOn                *time.Time
	Host                  string `validate:"max=100"`
	TemplateKey           string `validate:"omitempty,oneof=standard league tournament custom"`
	CustomText            *string
	CreatedBy             string `validate:"required"`
}

// RegisterParticipantInput captures a player's registration details.
type RegisterParticipantInput struct {
	ID          string `validate:"required"`
	DisplayName string `validate:"max=100"`
	Nickname    string `validate:"required,min=3,max=32"`
	Bio         *string
	PhotoRef    *string
}

// SpawnReport summarizes one pass over the active templates.
type SpawnReport struct {
	Created     int
	Skipped     int
	Deactivated int
}
