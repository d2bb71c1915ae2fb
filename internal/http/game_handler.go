package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/game-announcer/internal/application"
	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/publication"
	"github.com/example/game-announcer/internal/roster"
)

const dateLayout = "2006-01-02"

const (
	msgStartsAtFormat  = "starts at must be an RFC 3339 timestamp"
	msgPublishAtFormat = "publish at must be an RFC 3339 timestamp"
	msgStartsOnFormat  = "starts on must be YYYY-MM-DD"
	msgEndsOnFormat    = "ends on must be YYYY-MM-DD"
)

type gameService interface {
	CreateOccurrence(ctx context.Context, input application.CreateOccurrenceInput) (application.Occurrence, error)
	CreateTemplate(ctx context.Context, input application.CreateTemplateInput) (application.Template, *application.Occurrence, error)
	ListTemplates(ctx context.Context) ([]application.Template, error)
	DeactivateTemplate(ctx context.Context, templateID string) error
	Join(ctx context.Context, occurrenceID, participantID string) (roster.JoinOutcome, error)
	Leave(ctx context.Context, occurrenceID, participantID string) (roster.LeaveOutcome, error)
	Roster(ctx context.Context, occurrenceID string) ([]application.RosterEntry, error)
	EditOccurrenceDate(ctx context.Context, occurrenceID string, newStart time.Time) (application.Occurrence, error)
	PublishNow(ctx context.Context, occurrenceID string) (publication.Result, error)
	ListUpcoming(ctx context.Context) ([]application.Occurrence, error)
	ArchivePastOccurrences(ctx context.Context) (int, error)
	SpawnFromTemplates(ctx context.Context) (application.SpawnReport, error)
}

type announcementPreviewer interface {
	Preview(ctx context.Context, occurrenceID string) (string, error)
}

// GameHandler serves the admin and player endpoints for games and templates.
type GameHandler struct {
	service   gameService
	previewer announcementPreviewer
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

// NewGameHandler builds a handler. loc interprets template dates; nil means UTC.
func NewGameHandler(service gameService, previewer announcementPreviewer, loc *time.Location, logger *slog.Logger) *GameHandler {
	if loc == nil {
		loc = time.UTC
	}
	logger = defaultLogger(logger)
	return &GameHandler{
		service:   service,
		previewer: previewer,
		location:  loc,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *GameHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "GameHandler", operation, attrs...)
}

func (h *GameHandler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req occurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	admin, _ := AdminFromContext(r.Context())
	input, err := req.toInput(admin)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	occurrence, err := h.service.CreateOccurrence(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "CreateOccurrence", "occurrence_id", occurrence.ID).InfoContext(r.Context(), "occurrence created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, occurrenceResponse{Occurrence: toOccurrenceDTO(occurrence)})
}

func (h *GameHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrences, err := h.service.ListUpcoming(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listOccurrencesResponse{Occurrences: toOccurrenceDTOs(occurrences)})
}

func (h *GameHandler) EditDate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}

	var req editDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	bad := requestErrors{}
	startsAt := bad.time("starts_at", msgStartsAtFormat, req.StartsAt)
	if err := bad.err(); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	occurrence, err := h.service.EditOccurrenceDate(r.Context(), occurrenceID, startsAt)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occurrenceResponse{Occurrence: toOccurrenceDTO(occurrence)})
}

func (h *GameHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}

	result, err := h.service.PublishNow(r.Context(), occurrenceID)
	if err != nil {
		if result.DeliveryKind != "" {
			h.log(r.Context(), "Publish", "occurrence_id", occurrenceID).WarnContext(r.Context(), "channel refused announcement", "delivery_kind", result.DeliveryKind)
			h.responder.writeJSON(r.Context(), w, http.StatusBadGateway, publishResponse{
				Outcome:      string(result.Outcome),
				DeliveryKind: string(result.DeliveryKind),
			})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, publishResponse{Outcome: string(result.Outcome)})
}

func (h *GameHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.previewer == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}

	text, err := h.previewer.Preview(r.Context(), occurrenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, mapPreviewError(err))
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, previewResponse{Text: text})
}

func (h *GameHandler) Roster(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}

	entries, err := h.service.Roster(r.Context(), occurrenceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, rosterResponse{Registrations: toRosterDTOs(entries)})
}

func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	participantID := strings.TrimSpace(req.ParticipantID)
	if participantID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	outcome, err := h.service.Join(r.Context(), occurrenceID, participantID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if outcome.Status == roster.StatusAlreadyRegistered {
		status = http.StatusOK
	}
	h.responder.writeJSON(r.Context(), w, status, joinResponse{
		Status:       string(outcome.Status),
		Registration: toRegistrationDTO(outcome.Registration),
	})
}

func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	occurrenceID, ok := OccurrenceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(occurrenceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccurrenceID)
		return
	}
	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	outcome, err := h.service.Leave(r.Context(), occurrenceID, participantID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := leaveResponse{Removed: outcome.Removed}
	if outcome.Promoted != nil {
		promoted := toRegistrationDTO(*outcome.Promoted)
		response.Promoted = &promoted
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *GameHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	admin, _ := AdminFromContext(r.Context())
	input, err := req.toInput(admin, h.location)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	template, first, err := h.service.CreateTemplate(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := templateResponse{Template: toTemplateDTO(template, h.location)}
	if first != nil {
		dto := toOccurrenceDTO(*first)
		response.FirstOccurrence = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, response)
}

func (h *GameHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	templates, err := h.service.ListTemplates(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := listTemplatesResponse{Templates: make([]templateDTO, 0, len(templates))}
	for _, template := range templates {
		response.Templates = append(response.Templates, toTemplateDTO(template, h.location))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *GameHandler) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	templateID, ok := TemplateIDFromContext(r.Context())
	if !ok || strings.TrimSpace(templateID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTemplateID)
		return
	}

	if err := h.service.DeactivateTemplate(r.Context(), templateID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *GameHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	count, err := h.service.ArchivePastOccurrences(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, archiveResponse{Archived: count})
}

func (h *GameHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	report, err := h.service.SpawnFromTemplates(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, spawnResponse{
		Created:     report.Created,
		Skipped:     report.Skipped,
		Deactivated: report.Deactivated,
	})
}

type occurrenceRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartsAt    string  `json:"starts_at"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity"`
	Host        string  `json:"host"`
	TemplateKey string  `json:"template_key"`
	CustomText  *string `json:"custom_text"`
	PublishAt   *string `json:"publish_at"`
}

func (r occurrenceRequest) toInput(admin string) (application.CreateOccurrenceInput, error) {
	bad := requestErrors{}
	input := application.CreateOccurrenceInput{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Location:    strings.TrimSpace(r.Location),
		Capacity:    r.Capacity,
		Host:        strings.TrimSpace(r.Host),
		TemplateKey: strings.TrimSpace(r.TemplateKey),
		CustomText:  r.CustomText,
		CreatedBy:   admin,
	}
	input.StartsAt = bad.time("starts_at", msgStartsAtFormat, r.StartsAt)
	if r.PublishAt != nil {
		if ts := bad.time("publish_at", msgPublishAtFormat, *r.PublishAt); !ts.IsZero() {
			input.PublishAt = &ts
		}
	}
	return input, bad.err()
}

type editDateRequest struct {
	StartsAt string `json:"starts_at"`
}

type joinRequest struct {
	ParticipantID string `json:"participant_id"`
}

type templateRequest struct {
	Title                 string  `json:"title"`
	Description           string  `json:"description"`
	Location              string  `json:"location"`
	Capacity              int     `json:"capacity"`
	Kind                  string  `json:"kind"`
	GameTime              string  `json:"game_time"`
	AnnouncementTime      string  `json:"announcement_time"`
	AnnouncementDayOffset int     `json:"announcement_day_offset"`
	DayOfWeek             *int    `json:"day_of_week"`
	StartsOn              string  `json:"starts_on"`
	EndsOn                *string `json:"ends_on"`
	Host                  string  `json:"host"`
	TemplateKey           string  `json:"template_key"`
	CustomText            *string `json:"custom_text"`
}

func (r templateRequest) toInput(admin string, loc *time.Location) (application.CreateTemplateInput, error) {
	bad := requestErrors{}
	input := application.CreateTemplateInput{
		Title:                 strings.TrimSpace(r.Title),
		Description:           r.Description,
		Location:              strings.TrimSpace(r.Location),
		Capacity:              r.Capacity,
		Kind:                  strings.ToUpper(strings.TrimSpace(r.Kind)),
		GameTime:              strings.TrimSpace(r.GameTime),
		AnnouncementTime:      strings.TrimSpace(r.AnnouncementTime),
		AnnouncementDayOffset: r.AnnouncementDayOffset,
		Host:                  strings.TrimSpace(r.Host),
		TemplateKey:           strings.TrimSpace(r.TemplateKey),
		CustomText:            r.CustomText,
		CreatedBy:             admin,
	}
	if r.DayOfWeek != nil {
		day := time.Weekday(*r.DayOfWeek)
		input.DayOfWeek = &day
	}
	input.StartsOn = bad.date("starts_on", msgStartsOnFormat, r.StartsOn, loc)
	if r.EndsOn != nil {
		if ends := bad.date("ends_on", msgEndsOnFormat, *r.EndsOn, loc); !ends.IsZero() {
			input.EndsOn = &ends
		}
	}
	return input, bad.err()
}

// requestErrors collects request fields whose raw value could not be parsed.
type requestErrors map[string]string

func (e requestErrors) time(field, message, value string) time.Time {
	ts, err := parseTime(value)
	if err != nil {
		e[field] = message
	}
	return ts
}

func (e requestErrors) date(field, message, value string, loc *time.Location) time.Time {
	ts, err := parseDate(value, loc)
	if err != nil {
		e[field] = message
	}
	return ts
}

func (e requestErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return &application.ValidationError{FieldErrors: e}
}

// parseTime accepts RFC 3339 timestamps. An empty value yields the zero time.
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// parseDate reads a calendar date in loc. An empty value yields the zero time.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

func mapPreviewError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

type occurrenceResponse struct {
	Occurrence occurrenceDTO `json:"occurrence"`
}

type listOccurrencesResponse struct {
	Occurrences []occurrenceDTO `json:"occurrences"`
}

type publishResponse struct {
	Outcome      string `json:"outcome"`
	DeliveryKind string `json:"delivery_kind,omitempty"`
}

type previewResponse struct {
	Text string `json:"text"`
}

type rosterResponse struct {
	Registrations []rosterEntryDTO `json:"registrations"`
}

type joinResponse struct {
	Status       string          `json:"status"`
	Registration registrationDTO `json:"registration"`
}

type leaveResponse struct {
	Removed  bool             `json:"removed"`
	Promoted *registrationDTO `json:"promoted,omitempty"`
}

type templateResponse struct {
	Template        templateDTO    `json:"template"`
	FirstOccurrence *occurrenceDTO `json:"first_occurrence,omitempty"`
}

type listTemplatesResponse struct {
	Templates []templateDTO `json:"templates"`
}

type archiveResponse struct {
	Archived int `json:"archived"`
}

type spawnResponse struct {
	Created     int `json:"created"`
	Skipped     int `json:"skipped"`
	Deactivated int `json:"deactivated"`
}

type occurrenceDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	StartsAt    string  `json:"starts_at"`
	Location    string  `json:"location"`
	Capacity    int     `json:"capacity"`
	Host        string  `json:"host,omitempty"`
	TemplateKey string  `json:"template_key"`
	TemplateID  *string `json:"template_id,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsPublished bool    `json:"is_published"`
	PublishAt   *string `json:"publish_at,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toOccurrenceDTO(o application.Occurrence) occurrenceDTO {
	dto := occurrenceDTO{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		StartsAt:    o.StartsAt.UTC().Format(time.RFC3339Nano),
		Location:    o.Location,
		Capacity:    o.Capacity,
		Host:        o.Host,
		TemplateKey: o.TemplateKey,
		TemplateID:  o.TemplateID,
		IsActive:    o.IsActive,
		IsPublished: o.IsPublished,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if o.PublishAt != nil {
		publishAt := o.PublishAt.UTC().Format(time.RFC3339Nano)
		dto.PublishAt = &publishAt
	}
	return dto
}

func toOccurrenceDTOs(occurrences []application.Occurrence) []occurrenceDTO {
	dtos := make([]occurrenceDTO, 0, len(occurrences))
	for _, o := range occurrences {
		dtos = append(dtos, toOccurrenceDTO(o))
	}
	return dtos
}

type registrationDTO struct {
	ID            string `json:"id"`
	OccurrenceID  string `json:"occurrence_id"`
	ParticipantID string `json:"participant_id"`
	IsReserve     bool   `json:"is_reserve"`
	RegisteredAt  string `json:"registered_at"`
}

func toRegistrationDTO(r application.Registration) registrationDTO {
	return registrationDTO{
		ID:            r.ID,
		OccurrenceID:  r.OccurrenceID,
		ParticipantID: r.ParticipantID,
		IsReserve:     r.IsReserve,
		RegisteredAt:  r.RegisteredAt.UTC().Format(time.RFC3339Nano),
	}
}

type rosterEntryDTO struct {
	registrationDTO
	Nickname string `json:"nickname"`
}

func toRosterDTOs(entries []application.RosterEntry) []rosterEntryDTO {
	dtos := make([]rosterEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, rosterEntryDTO{
			registrationDTO: toRegistrationDTO(e.Registration),
			Nickname:        e.Nickname,
		})
	}
	return dtos
}

type templateDTO struct {
	ID                    string  `json:"id"`
	Title                 string  `json:"title"`
	Description           string  `json:"description"`
	Location              string  `json:"location"`
	Capacity              int     `json:"capacity"`
	Kind                  string  `json:"kind"`
	GameTime              string  `json:"game_time"`
	AnnouncementTime      string  `json:"announcement_time"`
	AnnouncementDayOffset int     `json:"announcement_day_offset"`
	DayOfWeek             *int    `json:"day_of_week,omitempty"`
	StartsOn              string  `json:"starts_on"`
	EndsOn                *string `json:"ends_on,omitempty"`
	Host                  string  `json:"host,omitempty"`
	TemplateKey           string  `json:"template_key"`
	IsActive              bool    `json:"is_active"`
	CreatedBy             string  `json:"created_by"`
}

func toTemplateDTO(t application.Template, loc *time.Location) templateDTO {
	dto := templateDTO{
		ID:                    t.ID,
		Title:                 t.Title,
		Description:           t.Description,
		Location:              t.Location,
		Capacity:              t.Capacity,
		Kind:                  string(t.Kind),
		GameTime:              t.GameTime,
		AnnouncementTime:      t.AnnouncementTime,
		AnnouncementDayOffset: t.AnnouncementDayOffset,
		StartsOn:              t.StartsOn.In(loc).Format(dateLayout),
		Host:                  t.Host,
		TemplateKey:           t.TemplateKey,
		IsActive:              t.IsActive,
		CreatedBy:             t.CreatedBy,
	}
	if t.DayOfWeek != nil {
		day := int(*t.DayOfWeek)
		dto.DayOfWeek = &day
	}
	if t.EndsOn != nil {
		ends := t.EndsOn.In(loc).Format(dateLayout)
		dto.EndsOn = &ends
	}
	return dto
}
