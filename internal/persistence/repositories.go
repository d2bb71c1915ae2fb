package persistence

import (
	"context"
	"time"
)

// OccurrenceRepository stores scheduled games.
type OccurrenceRepository interface {
	CreateOccurrence(ctx context.Context, occurrence Occurrence) error
	// GetOccurrence returns ErrNotFound for unpublished rows when publishedOnly is set.
	GetOccurrence(ctx context.Context, id string, publishedOnly bool) (Occurrence, error)
	RescheduleOccurrence(ctx context.Context, id string, startsAt time.Time, publishAt *time.Time) error
	MarkPublished(ctx context.Context, id, handle string) error
	// ListActivePublished returns active published games starting after the reference, earliest first.
	ListActivePublished(ctx context.Context, after time.Time) ([]Occurrence, error)
	// ListScheduledUnpublished returns active unpublished games whose publication time is after the reference.
	ListScheduledUnpublished(ctx context.Context, after time.Time) ([]Occurrence, error)
	// ListByTemplateAndDate returns occurrences of a template starting in [dayStart, dayEnd).
	ListByTemplateAndDate(ctx context.Context, templateID string, dayStart, dayEnd time.Time) ([]Occurrence, error)
	// LatestForTemplate returns the occurrence with the latest start for a template.
	LatestForTemplate(ctx context.Context, templateID string) (Occurrence, error)
	// ArchiveStartedBefore deactivates active games that started before cutoff.
	ArchiveStartedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// TemplateRepository stores recurrence templates.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template RecurrenceTemplate) error
	GetTemplate(ctx context.Context, id string) (RecurrenceTemplate, error)
	ListActiveTemplates(ctx context.Context) ([]RecurrenceTemplate, error)
	DeactivateTemplate(ctx context.Context, id string, at time.Time) error
}

// RosterTx is the registration view available inside one roster transaction.
type RosterTx interface {
	OccurrenceCapacity(occurrenceID string) (int, error)
	FindRegistration(occurrenceID, participantID string) (Registration, error)
	CountMain(occurrenceID string) (int, error)
	InsertRegistration(registration Registration) error
	DeleteRegistration(id string) error
	EarliestReserve(occurrenceID string) (Registration, error)
	PromoteRegistration(id string) error
}

// RegistrationRepository stores roster entries.
type RegistrationRepository interface {
	WithinRosterTx(ctx context.Context, fn func(tx RosterTx) error) error
	// ListRoster returns main entries then reserve entries, each by registration time.
	ListRoster(ctx context.Context, occurrenceID string) ([]RosterEntry, error)
}

// ParticipantRepository stores players.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) error
	UpdateParticipant(ctx context.Context, participant Participant) error
	GetParticipant(ctx context.Context, id string) (Participant, error)
	GetParticipantByNickname(ctx context.Context, nickname string) (Participant, error)
	CountParticipants(ctx context.Context) (ParticipantCounts, error)
}
