package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/game-announcer/internal/application"
	"github.com/example/game-announcer/internal/persistence"
)

var (
	occurrenceCounter  uint64
	templateCounter    uint64
	participantCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Tuesday.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Occurrence fixtures ----------------------------

// OccurrenceFixture represents a deterministic game occurrence.
type OccurrenceFixture struct {
	persistence.Occurrence
}

// OccurrenceOption configures the generated occurrence fixture.
type OccurrenceOption func(*OccurrenceFixture)

// NewOccurrenceFixture returns an active, unpublished occurrence starting a day
// after ReferenceTime, plus one hour per generated fixture.
func NewOccurrenceFixture(opts ...OccurrenceOption) OccurrenceFixture {
	idx := atomic.AddUint64(&occurrenceCounter, 1)
	start := referenceTime.Add(24*time.Hour + time.Duration(idx)*time.Hour)
	fixture := OccurrenceFixture{Occurrence: persistence.Occurrence{
		ID:          fmt.Sprintf("occurrence-%03d", idx),
		Title:       fmt.Sprintf("Game %03d", idx),
		Description: "Friendly match",
		StartsAt:    start,
		Location:    "Club Hall",
		Capacity:    10,
		CreatedBy:   "admin",
		TemplateKey: "standard",
		IsActive:    true,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithOccurrenceID overrides the generated occurrence ID.
func WithOccurrenceID(id string) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		f.ID = id
	}
}

// WithOccurrenceStart sets the start time.
func WithOccurrenceStart(start time.Time) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		f.StartsAt = start
	}
}

// WithOccurrenceCapacity sets the main roster capacity.
func WithOccurrenceCapacity(capacity int) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		f.Capacity = capacity
	}
}

// WithOccurrenceTemplate links the occurrence to a template.
func WithOccurrenceTemplate(templateID string) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		id := templateID
		f.TemplateID = &id
	}
}

// WithOccurrencePublishAt sets the scheduled publication time.
func WithOccurrencePublishAt(at time.Time) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		publishAt := at
		f.PublishAt = &publishAt
	}
}

// WithOccurrencePublished marks the occurrence as published under handle.
func WithOccurrencePublished(handle string) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		h := handle
		f.IsPublished = true
		f.MessageHandle = &h
	}
}

// WithOccurrenceInactive marks the occurrence as archived.
func WithOccurrenceInactive() OccurrenceOption {
	return func(f *OccurrenceFixture) {
		f.IsActive = false
	}
}

// WithOccurrenceCustomText switches the occurrence to the custom announcement.
func WithOccurrenceCustomText(text string) OccurrenceOption {
	return func(f *OccurrenceFixture) {
		custom := text
		f.TemplateKey = "custom"
		f.CustomText = &custom
	}
}

// Persistence returns the fixture as a persistence.Occurrence value.
func (f OccurrenceFixture) Persistence() persistence.Occurrence {
	o := f.Occurrence
	o.TemplateID = copyStringPtr(f.TemplateID)
	o.CustomText = copyStringPtr(f.CustomText)
	o.MessageHandle = copyStringPtr(f.MessageHandle)
	o.PublishAt = copyTimePtr(f.PublishAt)
	return o
}

// Input returns the fixture as an application.CreateOccurrenceInput.
func (f OccurrenceFixture) Input() application.CreateOccurrenceInput {
	return application.CreateOccurrenceInput{
		Title:       f.Title,
		Description: f.Description,
		StartsAt:    f.StartsAt,
		Location:    f.Location,
		Capacity:    f.Capacity,
		Host:        f.Host,
		TemplateKey: f.TemplateKey,
		CustomText:  copyStringPtr(f.CustomText),
		CreatedBy:   f.CreatedBy,
		PublishAt:   copyTimePtr(f.PublishAt),
	}
}

// ----------------------------- Template fixtures -----------------------------

// TemplateFixture represents a deterministic recurrence template.
type TemplateFixture struct {
	persistence.RecurrenceTemplate
}

// TemplateOption configures the generated template fixture.
type TemplateOption func(*TemplateFixture)

// NewTemplateFixture returns an active weekly Wednesday 19:00 template announced
// the day before at 12:00, starting on the ReferenceTime date.
func NewTemplateFixture(opts ...TemplateOption) TemplateFixture {
	idx := atomic.AddUint64(&templateCounter, 1)
	wednesday := time.Wednesday
	startsOn := time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day(), 0, 0, 0, 0, time.UTC)
	fixture := TemplateFixture{RecurrenceTemplate: persistence.RecurrenceTemplate{
		ID:                    fmt.Sprintf("template-%03d", idx),
		Title:                 fmt.Sprintf("Weekly game %03d", idx),
		Description:           "Regular evening",
		Location:              "Club Hall",
		Capacity:              10,
		Kind:                  persistence.KindWeekly,
		GameTime:              "19:00",
		AnnouncementTime:      "12:00",
		AnnouncementDayOffset: 1,
		DayOfWeek:             &wednesday,
		StartsOn:              startsOn,
		TemplateKey:           "standard",
		CreatedBy:             "admin",
		IsActive:              true,
		CreatedAt:             referenceTime,
		UpdatedAt:             referenceTime,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTemplateID overrides the generated template ID.
func WithTemplateID(id string) TemplateOption {
	return func(f *TemplateFixture) {
		f.ID = id
	}
}

// WithTemplateKind sets the recurrence kind. Kinds without a weekday anchor
// clear DayOfWeek.
func WithTemplateKind(kind persistence.RecurrenceKind) TemplateOption {
	return func(f *TemplateFixture) {
		f.Kind = kind
		if !kind.RequiresDayOfWeek() {
			f.DayOfWeek = nil
		}
	}
}

// WithTemplateDayOfWeek sets the weekday anchor.
func WithTemplateDayOfWeek(day time.Weekday) TemplateOption {
	return func(f *TemplateFixture) {
		d := day
		f.DayOfWeek = &d
	}
}

// WithTemplateTimes sets the game time, announcement time and day offset.
func WithTemplateTimes(gameTime, announcementTime string, dayOffset int) TemplateOption {
	return func(f *TemplateFixture) {
		f.GameTime = gameTime
		f.AnnouncementTime = announcementTime
		f.AnnouncementDayOffset = dayOffset
	}
}

// WithTemplateWindow sets the active date range. A nil endsOn is open-ended.
func WithTemplateWindow(startsOn time.Time, endsOn *time.Time) TemplateOption {
	return func(f *TemplateFixture) {
		f.StartsOn = startsOn
		f.EndsOn = copyTimePtr(endsOn)
	}
}

// WithTemplateCapacity sets the capacity copied to spawned occurrences.
func WithTemplateCapacity(capacity int) TemplateOption {
	return func(f *TemplateFixture) {
		f.Capacity = capacity
	}
}

// Persistence returns the fixture as a persistence.RecurrenceTemplate value.
func (f TemplateFixture) Persistence() persistence.RecurrenceTemplate {
	t := f.RecurrenceTemplate
	if f.DayOfWeek != nil {
		day := *f.DayOfWeek
		t.DayOfWeek = &day
	}
	t.EndsOn = copyTimePtr(f.EndsOn)
	t.CustomText = copyStringPtr(f.CustomText)
	return t
}

// Input returns the fixture as an application.CreateTemplateInput.
func (f TemplateFixture) Input() application.CreateTemplateInput {
	t := f.Persistence()
	return application.CreateTemplateInput{
		Title:                 t.Title,
		Description:           t.Description,
		Location:              t.Location,
		Capacity:              t.Capacity,
		Kind:                  string(t.Kind),
		GameTime:              t.GameTime,
		AnnouncementTime:      t.AnnouncementTime,
		AnnouncementDayOffset: t.AnnouncementDayOffset,
		DayOfWeek:             t.DayOfWeek,
		StartsOn:              t.StartsOn,
		EndsOn:                t.EndsOn,
		Host:                  t.Host,
		TemplateKey:           t.TemplateKey,
		CustomText:            t.CustomText,
		CreatedBy:             t.CreatedBy,
	}
}

// ---------------------------- Participant fixtures ---------------------------

// ParticipantFixture represents a deterministic registered player.
type ParticipantFixture struct {
	persistence.Participant
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a participant with a completed registration.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ParticipantFixture{Participant: persistence.Participant{
		ID:                   fmt.Sprintf("%d", 100000+idx),
		DisplayName:          fmt.Sprintf("Player %03d", idx),
		Nickname:             fmt.Sprintf("player%03d", idx),
		RegistrationComplete: true,
		CreatedAt:            created,
		UpdatedAt:            created,
	}}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated participant ID.
func WithParticipantID(id string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.ID = id
	}
}

// WithParticipantNickname overrides the generated nickname.
func WithParticipantNickname(nickname string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Nickname = nickname
	}
}

// WithParticipantIncomplete marks the registration as unfinished.
func WithParticipantIncomplete() ParticipantOption {
	return func(f *ParticipantFixture) {
		f.RegistrationComplete = false
	}
}

// Persistence returns the fixture as a persistence.Participant value.
func (f ParticipantFixture) Persistence() persistence.Participant {
	p := f.Participant
	p.Bio = copyStringPtr(f.Bio)
	p.PhotoRef = copyStringPtr(f.PhotoRef)
	return p
}

// Input returns the fixture as an application.RegisterParticipantInput.
func (f ParticipantFixture) Input() application.RegisterParticipantInput {
	return application.RegisterParticipantInput{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		Nickname:    f.Nickname,
		Bio:         copyStringPtr(f.Bio),
		PhotoRef:    copyStringPtr(f.PhotoRef),
	}
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func copyTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
