package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/game-announcer/internal/announcement"
	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/publication"
	"github.com/example/game-announcer/internal/recurrence"
	"github.com/example/game-announcer/internal/roster"
	"github.com/example/game-announcer/internal/scheduler"
)

// DefaultCapacity is used when neither the caller nor the configuration sets one.
const DefaultCapacity = 10

// TemplateRepository captures the template operations needed by the service.
type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template persistence.RecurrenceTemplate) error
	GetTemplate(ctx context.Context, id string) (persistence.RecurrenceTemplate, error)
	ListActiveTemplates(ctx context.Context) ([]persistence.RecurrenceTemplate, error)
	DeactivateTemplate(ctx context.Context, id string, at time.Time) error
}

// ParticipantDirectory resolves participants by id.
type ParticipantDirectory interface {
	GetParticipant(ctx context.Context, id string) (persistence.Participant, error)
}

// RosterManager mutates and lists occurrence rosters.
type RosterManager interface {
	Join(ctx context.Context, occurrenceID, participantID string) (roster.JoinOutcome, error)
	Leave(ctx context.Context, occurrenceID, participantID string) (roster.LeaveOutcome, error)
	List(ctx context.Context, occurrenceID string) ([]persistence.RosterEntry, error)
}

// Publisher publishes and refreshes channel announcements.
type Publisher interface {
	Publish(ctx context.Context, occurrenceID string) (publication.Result, error)
	Refresh(ctx context.Context, occurrenceID string) (publication.Result, error)
}

// PublicationScheduler defers publication until the announcement time.
type PublicationScheduler interface {
	Schedule(ctx context.Context, occurrenceID string, publishAt time.Time) bool
}

// GameServiceDeps groups the collaborators of a GameService.
type GameServiceDeps struct {
	Occurrences     persistence.OccurrenceRepository
	Templates       TemplateRepository
	Participants    ParticipantDirectory
	Roster          RosterManager
	Publisher       Publisher
	Scheduler       PublicationScheduler
	Calculator      *recurrence.Calculator
	DefaultCapacity int
	IDGenerator     func() string
	Now             func() time.Time
	Logger          *slog.Logger
}

// GameService is the produced interface of the announcer: it creates games and
// templates, manages rosters and keeps publication in step with both.
type GameService struct {
	occurrences     persistence.OccurrenceRepository
	templates       TemplateRepository
	participants    ParticipantDirectory
	roster          RosterManager
	publisher       Publisher
	scheduler       PublicationScheduler
	calculator      *recurrence.Calculator
	defaultCapacity int
	idGenerator     func() string
	now             func() time.Time
	logger          *slog.Logger
}

// NewGameService constructs a game service with the provided dependencies.
func NewGameService(deps GameServiceDeps) *GameService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = func() string { return "" }
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Calculator == nil {
		deps.Calculator = recurrence.NewCalculator(time.UTC)
	}
	if deps.DefaultCapacity <= 0 {
		deps.DefaultCapacity = DefaultCapacity
	}
	return &GameService{
		occurrences:     deps.Occurrences,
		templates:       deps.Templates,
		participants:    deps.Participants,
		roster:          deps.Roster,
		publisher:       deps.Publisher,
		scheduler:       deps.Scheduler,
		calculator:      deps.Calculator,
		defaultCapacity: deps.DefaultCapacity,
		idGenerator:     deps.IDGenerator,
		now:             deps.Now,
		logger:          defaultLogger(deps.Logger),
	}
}

func (s *GameService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GameService", operation, attrs...)
}

// CreateOccurrence persists a one-off game and schedules its publication.
// Without a PublishAt the announcement goes out immediately.
func (s *GameService) CreateOccurrence(ctx context.Context, input CreateOccurrenceInput) (occurrence Occurrence, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateOccurrence", "created_by", input.CreatedBy)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create occurrence", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("occurrence_id", occurrence.ID, "published", occurrence.IsPublished).InfoContext(ctx, "occurrence created")
	}()

	now := s.now()
	if vErr := s.validateOccurrenceInput(input, now); vErr.HasErrors() {
		err = vErr
		return
	}

	occurrence = Occurrence{
		ID:          s.idGenerator(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt,
		Location:    strings.TrimSpace(input.Location),
		Capacity:    s.capacityOrDefault(input.Capacity),
		CreatedBy:   input.CreatedBy,
		Host:        strings.TrimSpace(input.Host),
		TemplateKey: templateKeyOrDefault(input.TemplateKey),
		CustomText:  normalizeOptionalString(input.CustomText),
		IsActive:    true,
		PublishAt:   input.PublishAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err = s.occurrences.CreateOccurrence(ctx, occurrence); err != nil {
		err = mapRepoError(err)
		return
	}

	publishAt := now
	if input.PublishAt != nil {
		publishAt = *input.PublishAt
	}
	if !s.scheduler.Schedule(ctx, occurrence.ID, publishAt) {
		logger.WarnContext(ctx, "publication was not scheduled", "occurrence_id", occurrence.ID)
	}

	occurrence, err = s.reload(ctx, occurrence)
	return
}

// CreateTemplate persists a recurring schedule and spawns its first occurrence.
func (s *GameService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (template Template, first *Occurrence, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTemplate", "created_by", input.CreatedBy, "kind", input.Kind)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		attrs := []any{"template_id", template.ID}
		if first != nil {
			attrs = append(attrs, "occurrence_id", first.ID, "starts_at", first.StartsAt)
		}
		logger.With(attrs...).InfoContext(ctx, "template created")
	}()

	now := s.now()
	vErr := s.validateTemplateInput(input, now)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	template = Template{
		ID:                    s.idGenerator(),
		Title:                 strings.TrimSpace(input.Title),
		Description:           strings.TrimSpace(input.Description),
		Location:              strings.TrimSpace(input.Location),
		Capacity:              s.capacityOrDefault(input.Capacity),
		Kind:                  persistence.RecurrenceKind(input.Kind),
		GameTime:              input.GameTime,
		AnnouncementTime:      input.AnnouncementTime,
		AnnouncementDayOffset: input.AnnouncementDayOffset,
		DayOfWeek:             input.DayOfWeek,
		StartsOn:              input.StartsOn,
		EndsOn:                input.EndsOn,
		Host:                  strings.TrimSpace(input.Host),
		TemplateKey:           templateKeyOrDefault(input.TemplateKey),
		CustomText:            normalizeOptionalString(input.CustomText),
		CreatedBy:             input.CreatedBy,
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	rule, ruleErr := recurrence.RuleFromTemplate(template)
	if ruleErr != nil {
		err = newValidationError("kind", ruleErr.Error())
		return
	}
	startsAt, ok := s.calculator.First(rule, now)
	if !ok {
		err = newValidationError("starts_on", "schedule has no upcoming game")
		return
	}

	if err = s.templates.CreateTemplate(ctx, template); err != nil {
		err = mapRepoError(err)
		return
	}

	first, err = s.spawn(ctx, template, startsAt)
	return
}

// Join registers a participant for a published game and refreshes its announcement.
func (s *GameService) Join(ctx context.Context, occurrenceID, participantID string) (outcome roster.JoinOutcome, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Join", "occurrence_id", occurrenceID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join game", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", outcome.Status).InfoContext(ctx, "join processed")
	}()

	var participant Participant
	participant, err = s.participants.GetParticipant(ctx, participantID)
	if errors.Is(err, persistence.ErrNotFound) || (err == nil && !participant.RegistrationComplete) {
		err = ErrRegistrationIncomplete
		return
	}
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if err = s.requireOpenGame(ctx, occurrenceID); err != nil {
		return
	}

	outcome, err = s.roster.Join(ctx, occurrenceID, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if outcome.Status != roster.StatusAlreadyRegistered {
		s.refresh(ctx, logger, occurrenceID)
	}
	return
}

// Leave removes a participant from a game, promoting a reserve when a main slot frees up.
func (s *GameService) Leave(ctx context.Context, occurrenceID, participantID string) (outcome roster.LeaveOutcome, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Leave", "occurrence_id", occurrenceID, "participant_id", participantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to leave game", "error", err, "error_kind", ErrorKind(err))
			return
		}
		attrs := []any{"removed", outcome.Removed}
		if outcome.Promoted != nil {
			attrs = append(attrs, "promoted_participant_id", outcome.Promoted.ParticipantID)
		}
		logger.With(attrs...).InfoContext(ctx, "leave processed")
	}()

	if err = s.requireOpenGame(ctx, occurrenceID); err != nil {
		return
	}

	outcome, err = s.roster.Leave(ctx, occurrenceID, participantID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if outcome.Removed {
		s.refresh(ctx, logger, occurrenceID)
	}
	return
}

// Roster lists an occurrence's registrations, main roster first.
func (s *GameService) Roster(ctx context.Context, occurrenceID string) ([]RosterEntry, error) {
	if _, err := s.occurrences.GetOccurrence(ctx, occurrenceID, false); err != nil {
		return nil, mapRepoError(err)
	}
	entries, err := s.roster.List(ctx, occurrenceID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return entries, nil
}

// EditOccurrenceDate moves a game. Published games get their announcement
// refreshed; unpublished template games get a recomputed publication time.
func (s *GameService) EditOccurrenceDate(ctx context.Context, occurrenceID string, newStart time.Time) (occurrence Occurrence, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "EditOccurrenceDate", "occurrence_id", occurrenceID, "starts_at", newStart)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit occurrence date", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "occurrence date changed")
	}()

	now := s.now()
	if newStart.IsZero() {
		err = newValidationError("starts_at", "starts at is required")
		return
	}
	if !newStart.After(now) {
		err = newValidationError("starts_at", "starts at must be in the future")
		return
	}

	occurrence, err = s.occurrences.GetOccurrence(ctx, occurrenceID, false)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !occurrence.IsActive {
		err = ErrNotFound
		return
	}
	if occurrence.TemplateID != nil {
		var taken bool
		taken, err = s.templateDayTaken(ctx, *occurrence.TemplateID, occurrence.ID, newStart)
		if err != nil {
			return
		}
		if taken {
			err = newValidationError("starts_at", "template already has a game on that day")
			return
		}
	}

	publishAt := occurrence.PublishAt
	reschedule := false
	if !occurrence.IsPublished && occurrence.TemplateID != nil {
		var template Template
		template, err = s.templates.GetTemplate(ctx, *occurrence.TemplateID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		var at recurrence.TimeOfDay
		at, err = recurrence.ParseTimeOfDay(template.AnnouncementTime)
		if err != nil {
			return
		}
		computed := scheduler.ComputePublicationTime(newStart.In(s.calculator.Location()), template.AnnouncementDayOffset, at)
		publishAt = &computed
		reschedule = true
	}

	if err = s.occurrences.RescheduleOccurrence(ctx, occurrenceID, newStart, publishAt); err != nil {
		err = mapRepoError(err)
		return
	}

	switch {
	case occurrence.IsPublished:
		s.refresh(ctx, logger, occurrenceID)
	case reschedule:
		if !s.scheduler.Schedule(ctx, occurrenceID, *publishAt) {
			logger.WarnContext(ctx, "publication was not rescheduled")
		}
	}

	occurrence, err = s.reload(ctx, occurrence)
	return
}

// PublishNow publishes an occurrence immediately, regardless of its schedule.
func (s *GameService) PublishNow(ctx context.Context, occurrenceID string) (result publication.Result, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "PublishNow", "occurrence_id", occurrenceID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to publish occurrence", "error", err, "error_kind", ErrorKind(err), "delivery_kind", result.DeliveryKind)
			return
		}
		logger.With("outcome", result.Outcome).InfoContext(ctx, "publish requested")
	}()

	result, err = s.publisher.Publish(ctx, occurrenceID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// ListUpcoming returns active published games that have not started yet.
func (s *GameService) ListUpcoming(ctx context.Context) ([]Occurrence, error) {
	occurrences, err := s.occurrences.ListActivePublished(ctx, s.now())
	if err != nil {
		return nil, mapRepoError(err)
	}
	return occurrences, nil
}

// ArchivePastOccurrences deactivates games that have already started.
func (s *GameService) ArchivePastOccurrences(ctx context.Context) (count int, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ArchivePastOccurrences")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to archive occurrences", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("archived", count).InfoContext(ctx, "past occurrences archived")
	}()

	count, err = s.occurrences.ArchiveStartedBefore(ctx, s.now())
	return
}

// SpawnFromTemplates creates the next occurrence for every active template that
// has no upcoming game. Templates whose schedule has ended are deactivated.
func (s *GameService) SpawnFromTemplates(ctx context.Context) (report SpawnReport, err error) {
	if s == nil {
		err = fmt.Errorf("GameService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SpawnFromTemplates")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "template spawn pass failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("created", report.Created, "skipped", report.Skipped, "deactivated", report.Deactivated).
			InfoContext(ctx, "template spawn pass finished")
	}()

	var templates []Template
	templates, err = s.templates.ListActiveTemplates(ctx)
	if err != nil {
		return
	}

	now := s.now()
	for _, template := range templates {
		created, ended, spawnErr := s.spawnNext(ctx, template, now)
		if spawnErr != nil {
			// One broken template must not stop the others.
			logger.ErrorContext(ctx, "failed to spawn from template", "template_id", template.ID, "error", spawnErr)
			report.Skipped++
			continue
		}
		switch {
		case ended:
			if deactivateErr := s.templates.DeactivateTemplate(ctx, template.ID, now); deactivateErr != nil {
				logger.ErrorContext(ctx, "failed to deactivate ended template", "template_id", template.ID, "error", deactivateErr)
				continue
			}
			report.Deactivated++
		case created != nil:
			report.Created++
		default:
			report.Skipped++
		}
	}
	return
}

func (s *GameService) spawnNext(ctx context.Context, template Template, now time.Time) (*Occurrence, bool, error) {
	rule, err := recurrence.RuleFromTemplate(template)
	if err != nil {
		return nil, false, err
	}

	reference := now
	latest, err := s.occurrences.LatestForTemplate(ctx, template.ID)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		// A template always spawns its first game on creation; this covers
		// templates whose first game could not be created then.
		if startsAt, ok := s.calculator.First(rule, now); ok {
			occurrence, err := s.spawn(ctx, template, startsAt)
			return occurrence, false, err
		}
		return nil, true, nil
	case err != nil:
		return nil, false, err
	}

	if latest.StartsAt.After(now) {
		return nil, false, nil
	}
	if template.Kind == persistence.KindOnce {
		return nil, true, nil
	}

	previous := latest.StartsAt
	rule.Previous = &previous
	if previous.After(reference) {
		reference = previous
	}

	startsAt, ok := s.calculator.Next(rule, reference)
	if !ok {
		return nil, true, nil
	}
	occurrence, err := s.spawn(ctx, template, startsAt)
	return occurrence, false, err
}

// ListTemplates returns the templates that still spawn games.
func (s *GameService) ListTemplates(ctx context.Context) ([]Template, error) {
	templates, err := s.templates.ListActiveTemplates(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return templates, nil
}

// DeactivateTemplate stops a template from spawning further games.
func (s *GameService) DeactivateTemplate(ctx context.Context, templateID string) (err error) {
	if s == nil {
		return fmt.Errorf("GameService is nil")
	}

	logger := s.loggerWith(ctx, "DeactivateTemplate", "template_id", templateID)
	if err = s.templates.DeactivateTemplate(ctx, templateID, s.now()); err != nil {
		err = mapRepoError(err)
		logger.ErrorContext(ctx, "failed to deactivate template", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "template deactivated")
	return nil
}

// spawn creates the template's occurrence starting at startsAt unless one
// already exists on that calendar date. It returns nil when skipped.
func (s *GameService) spawn(ctx context.Context, template Template, startsAt time.Time) (*Occurrence, error) {
	taken, err := s.templateDayTaken(ctx, template.ID, "", startsAt)
	if err != nil || taken {
		return nil, err
	}

	at, err := recurrence.ParseTimeOfDay(template.AnnouncementTime)
	if err != nil {
		return nil, err
	}
	publishAt := scheduler.ComputePublicationTime(startsAt, template.AnnouncementDayOffset, at)

	now := s.now()
	templateID := template.ID
	occurrence := Occurrence{
		ID:          s.idGenerator(),
		Title:       template.Title,
		Description: template.Description,
		StartsAt:    startsAt,
		Location:    template.Location,
		Capacity:    template.Capacity,
		CreatedBy:   template.CreatedBy,
		TemplateID:  &templateID,
		Host:        template.Host,
		TemplateKey: template.TemplateKey,
		CustomText:  template.CustomText,
		IsActive:    true,
		PublishAt:   &publishAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.occurrences.CreateOccurrence(ctx, occurrence); err != nil {
		return nil, mapRepoError(err)
	}

	if !s.scheduler.Schedule(ctx, occurrence.ID, publishAt) {
		s.loggerWith(ctx, "spawn", "occurrence_id", occurrence.ID).WarnContext(ctx, "publication was not scheduled")
	}

	reloaded, err := s.reload(ctx, occurrence)
	if err != nil {
		return nil, err
	}
	return &reloaded, nil
}

// templateDayTaken reports whether another occurrence of the template starts on
// the calendar day of startsAt.
func (s *GameService) templateDayTaken(ctx context.Context, templateID, exceptID string, startsAt time.Time) (bool, error) {
	dayStart, dayEnd := s.calculator.DayBounds(startsAt)
	existing, err := s.occurrences.ListByTemplateAndDate(ctx, templateID, dayStart, dayEnd)
	if err != nil {
		return false, mapRepoError(err)
	}
	for _, other := range existing {
		if other.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *GameService) requireOpenGame(ctx context.Context, occurrenceID string) error {
	occurrence, err := s.occurrences.GetOccurrence(ctx, occurrenceID, true)
	if err != nil {
		return mapRepoError(err)
	}
	if !occurrence.IsActive {
		return ErrNotFound
	}
	return nil
}

func (s *GameService) refresh(ctx context.Context, logger *slog.Logger, occurrenceID string) {
	result, err := s.publisher.Refresh(ctx, occurrenceID)
	if err != nil {
		logger.WarnContext(ctx, "announcement refresh failed", "error", err, "delivery_kind", result.DeliveryKind)
	}
}

func (s *GameService) reload(ctx context.Context, fallback Occurrence) (Occurrence, error) {
	occurrence, err := s.occurrences.GetOccurrence(ctx, fallback.ID, false)
	if err != nil {
		return fallback, mapRepoError(err)
	}
	return occurrence, nil
}

func (s *GameService) capacityOrDefault(capacity int) int {
	if capacity > 0 {
		return capacity
	}
	return s.defaultCapacity
}

func (s *GameService) validateOccurrenceInput(input CreateOccurrenceInput, now time.Time) *ValidationError {
	vErr := validateStruct(input)

	switch {
	case input.StartsAt.IsZero():
		vErr.add("starts_at", "starts at is required")
	case !input.StartsAt.After(now):
		vErr.add("starts_at", "starts at must be in the future")
	case input.PublishAt != nil && input.PublishAt.After(input.StartsAt):
		vErr.add("publish_at", "publish at must not be after the game starts")
	}
	if input.TemplateKey == announcement.KeyCustom && (input.CustomText == nil || strings.TrimSpace(*input.CustomText) == "") {
		vErr.add("custom_text", "custom text is required for the custom template")
	}
	return vErr
}

func (s *GameService) validateTemplateInput(input CreateTemplateInput, now time.Time) *ValidationError {
	vErr := validateStruct(input)

	if input.GameTime != "" {
		if _, err := recurrence.ParseTimeOfDay(input.GameTime); err != nil {
			vErr.add("game_time", "game time must be HH:MM")
		}
	}
	if input.AnnouncementTime != "" {
		if _, err := recurrence.ParseTimeOfDay(input.AnnouncementTime); err != nil {
			vErr.add("announcement_time", "announcement time must be HH:MM")
		}
	}

	kind := persistence.RecurrenceKind(input.Kind)
	if kind.Valid() && kind.RequiresDayOfWeek() != (input.DayOfWeek != nil) {
		if input.DayOfWeek == nil {
			vErr.add("day_of_week", "day of week is required for weekly schedules")
		} else {
			vErr.add("day_of_week", "day of week is only allowed for weekly schedules")
		}
	}
	if input.DayOfWeek != nil && (*input.DayOfWeek < time.Sunday || *input.DayOfWeek > time.Saturday) {
		vErr.add("day_of_week", "day of week is invalid")
	}

	loc := s.calculator.Location()
	today, _ := s.calculator.DayBounds(now)
	switch {
	case input.StartsOn.IsZero():
		vErr.add("starts_on", "starts on is required")
	case input.StartsOn.In(loc).Before(today):
		vErr.add("starts_on", "starts on must not be in the past")
	}
	if input.EndsOn != nil && !input.StartsOn.IsZero() && input.EndsOn.Before(input.StartsOn) {
		vErr.add("ends_on", "ends on must not be before starts on")
	}
	if input.TemplateKey == announcement.KeyCustom && (input.CustomText == nil || strings.TrimSpace(*input.CustomText) == "") {
		vErr.add("custom_text", "custom text is required for the custom template")
	}
	return vErr
}

func templateKeyOrDefault(key string) string {
	if key == "" {
		return announcement.KeyStandard
	}
	return key
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrConstraintViolation), errors.Is(err, persistence.ErrForeignKeyViolation):
		return newValidationError("input", "violates a storage constraint")
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
