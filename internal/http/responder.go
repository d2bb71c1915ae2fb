package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/game-announcer/internal/application"
)

var (
	errBadRequestBody       = errors.New("Некорректный формат запроса.")
	errInvalidOccurrenceID  = errors.New("Некорректный идентификатор игры.")
	errInvalidTemplateID    = errors.New("Некорректный идентификатор шаблона.")
	errInvalidParticipantID = errors.New("Некорректный идентификатор участника.")
	errMissingAdminToken    = errors.New("Укажите токен администратора.")
	errMissingGatewayToken  = errors.New("Укажите токен шлюза.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_REQUIRED",
			Message:   "Неверный токен доступа.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Запрошенный объект не найден."})
	case errors.Is(err, application.ErrNicknameTaken):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "NICKNAME_TAKEN",
			Message:   "Этот никнейм уже занят.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Такой объект уже существует."})
	case errors.Is(err, application.ErrRegistrationIncomplete):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "REGISTRATION_INCOMPLETE",
			Message:   "Сначала завершите регистрацию.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Данные заполнены с ошибками.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Внутренняя ошибка сервера."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Некорректный запрос."
	case http.StatusUnauthorized:
		return "Требуется авторизация."
	case http.StatusForbidden:
		return "Недостаточно прав для этой операции."
	case http.StatusNotFound:
		return "Запрошенный объект не найден."
	case http.StatusConflict:
		return "Запрос конфликтует с текущим состоянием."
	case http.StatusUnprocessableEntity:
		return "Данные заполнены с ошибками."
	default:
		return "Внутренняя ошибка сервера."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "title is required":
		return "Название обязательно."
	case "location is required":
		return "Место проведения обязательно."
	case "starts at is required":
		return "Укажите время начала."
	case "starts at must be in the future":
		return "Время начала должно быть в будущем."
	case "publish at must not be after the game starts":
		return "Публикация должна быть не позже начала игры."
	case "custom text is required for the custom template":
		return "Для своего шаблона нужен текст анонса."
	case "game time must be HH:MM":
		return "Время игры указывается в формате ЧЧ:ММ."
	case "announcement time must be HH:MM":
		return "Время анонса указывается в формате ЧЧ:ММ."
	case "day of week is required for weekly schedules":
		return "Для еженедельного расписания нужен день недели."
	case "day of week is only allowed for weekly schedules":
		return "День недели указывается только для еженедельного расписания."
	case "day of week is invalid":
		return "Некорректный день недели."
	case "starts on is required":
		return "Укажите дату начала."
	case "starts on must not be in the past":
		return "Дата начала не может быть в прошлом."
	case "ends on must not be before starts on":
		return "Дата окончания не может быть раньше даты начала."
	case msgStartsAtFormat:
		return "Время начала указывается в формате RFC 3339."
	case msgPublishAtFormat:
		return "Время публикации указывается в формате RFC 3339."
	case msgStartsOnFormat:
		return "Дата начала указывается в формате ГГГГ-ММ-ДД."
	case msgEndsOnFormat:
		return "Дата окончания указывается в формате ГГГГ-ММ-ДД."
	case "template already has a game on that day":
		return "В этот день по расписанию уже есть игра."
	case "schedule has no upcoming game":
		return "По этому расписанию не будет ни одной игры."
	case "nickname is required":
		return "Никнейм обязателен."
	case "nickname must be at least 3 characters":
		return "Никнейм должен быть не короче 3 символов."
	case "nickname must be at most 32 characters":
		return "Никнейм должен быть не длиннее 32 символов."
	case "nickname may contain letters, digits, '_', '-' and '.' only":
		return "Никнейм может содержать только буквы, цифры и символы _ - ."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
