package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/game-announcer/internal/application"
)

type participantService interface {
	Register(ctx context.Context, input application.RegisterParticipantInput) (application.Participant, error)
	Get(ctx context.Context, id string) (application.Participant, error)
	Stats(ctx context.Context) (application.ParticipantStats, error)
}

type ParticipantHandler struct {
	service   participantService
	responder responder
	logger    *slog.Logger
}

func NewParticipantHandler(service participantService, logger *slog.Logger) *ParticipantHandler {
	logger = defaultLogger(logger)
	return &ParticipantHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *ParticipantHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ParticipantHandler", operation, attrs...)
}

// Register creates the participant or completes an existing registration.
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	participant, err := h.service.Register(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Register", "participant_id", participant.ID).InfoContext(r.Context(), "participant registered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, participantResponse{Participant: toParticipantDTO(participant)})
}

func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidParticipantID)
		return
	}

	participant, err := h.service.Get(r.Context(), participantID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, participantResponse{Participant: toParticipantDTO(participant)})
}

// Stats reports how many participants finished registration.
func (h *ParticipantHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsResponse{
		Total:      stats.Total,
		Registered: stats.Registered,
		Incomplete: stats.Incomplete,
	})
}

type statsResponse struct {
	Total      int `json:"total"`
	Registered int `json:"registered"`
	Incomplete int `json:"incomplete"`
}

type participantRequest struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Nickname    string  `json:"nickname"`
	Bio         *string `json:"bio"`
	PhotoRef    *string `json:"photo_ref"`
}

func (r participantRequest) toInput() application.RegisterParticipantInput {
	return application.RegisterParticipantInput{
		ID:          strings.TrimSpace(r.ID),
		DisplayName: r.DisplayName,
		Nickname:    r.Nickname,
		Bio:         r.Bio,
		PhotoRef:    r.PhotoRef,
	}
}

type participantResponse struct {
	Participant participantDTO `json:"participant"`
}

type participantDTO struct {
	ID                   string  `json:"id"`
	DisplayName          string  `json:"display_name"`
	Nickname             string  `json:"nickname"`
	Bio                  *string `json:"bio,omitempty"`
	PhotoRef             *string `json:"photo_ref,omitempty"`
	RegistrationComplete bool    `json:"registration_complete"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

func toParticipantDTO(p application.Participant) participantDTO {
	return participantDTO{
		ID:                   p.ID,
		DisplayName:          p.DisplayName,
		Nickname:             p.Nickname,
		Bio:                  p.Bio,
		PhotoRef:             p.PhotoRef,
		RegistrationComplete: p.RegistrationComplete,
		CreatedAt:            p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:            p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
