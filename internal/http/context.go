package http

import (
	"context"
	"log/slog"

	"github.com/example/game-announcer/internal/logging"
)

type contextKey string

const (
	adminContextKey         contextKey = "admin"
	occurrenceIDContextKey  contextKey = "occurrence_id"
	templateIDContextKey    contextKey = "template_id"
	participantIDContextKey contextKey = "participant_id"
)

// ContextWithAdmin marks the request as authenticated with the admin token.
// name identifies the operator and is recorded as the creator of new games.
func ContextWithAdmin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, adminContextKey, name)
}

// AdminFromContext returns the operator name set by RequireAdminToken.
func AdminFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(adminContextKey).(string)
	return name, ok
}

// ContextWithOccurrenceID injects the occurrence identifier resolved from the request path.
func ContextWithOccurrenceID(ctx context.Context, occurrenceID string) context.Context {
	return context.WithValue(ctx, occurrenceIDContextKey, occurrenceID)
}

// OccurrenceIDFromContext extracts an occurrence identifier previously associated with the context.
func OccurrenceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(occurrenceIDContextKey).(string)
	return id, ok
}

// ContextWithTemplateID injects the template identifier resolved from the request path.
func ContextWithTemplateID(ctx context.Context, templateID string) context.Context {
	return context.WithValue(ctx, templateIDContextKey, templateID)
}

// TemplateIDFromContext extracts a template identifier previously associated with the context.
func TemplateIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(templateIDContextKey).(string)
	return id, ok
}

// ContextWithParticipantID injects the participant identifier resolved from the request path.
func ContextWithParticipantID(ctx context.Context, participantID string) context.Context {
	return context.WithValue(ctx, participantIDContextKey, participantID)
}

// ParticipantIDFromContext extracts a participant identifier previously associated with the context.
func ParticipantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(participantIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
