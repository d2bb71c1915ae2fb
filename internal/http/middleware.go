package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/game-announcer/internal/application"
)

// AdminHeader optionally names the operator behind an admin request.
const AdminHeader = "X-Admin-Name"

const defaultAdminName = "admin"

// TokenVerifier checks a presented bearer token.
type TokenVerifier interface {
	Verify(token string) error
}

// RequireAdminToken rejects requests without a valid bearer token.
func RequireAdminToken(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checkBearer(responder, verifier, w, r, errMissingAdminToken) {
				return
			}

			name := strings.TrimSpace(r.Header.Get(AdminHeader))
			if name == "" {
				name = defaultAdminName
			}
			ctx := ContextWithAdmin(r.Context(), name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireGatewayToken guards player endpoints. Player requests reach the API
// through the bot front end, which acts for the participant and presents its
// own token.
func RequireGatewayToken(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !checkBearer(responder, verifier, w, r, errMissingGatewayToken) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkBearer writes the rejection and returns false unless the request
// carries a token the verifier accepts.
func checkBearer(responder responder, verifier TokenVerifier, w http.ResponseWriter, r *http.Request, missing error) bool {
	token := extractBearerToken(r)
	if token == "" {
		responder.writeError(r.Context(), w, http.StatusUnauthorized, missing)
		return false
	}

	if err := verifier.Verify(token); err != nil {
		if errors.Is(err, application.ErrUnauthorized) {
			responder.handleServiceError(r.Context(), w, err)
			return false
		}
		responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "Ошибка проверки токена."})
		return false
	}
	return true
}

func extractBearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
