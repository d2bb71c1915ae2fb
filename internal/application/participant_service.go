package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/example/game-announcer/internal/persistence"
)

// ParticipantService manages player registration.
type ParticipantService struct {
	participants persistence.ParticipantRepository
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService constructs a participant service with the default logger.
func NewParticipantService(participants persistence.ParticipantRepository, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(participants, now, nil)
}

// NewParticipantServiceWithLogger constructs a participant service with a custom logger.
func NewParticipantServiceWithLogger(participants persistence.ParticipantRepository, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{
		participants: participants,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

// Register creates or updates a participant and marks the registration complete.
// Nicknames are unique across participants.
func (s *ParticipantService) Register(ctx context.Context, input RegisterParticipantInput) (participant Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}

	logger := serviceLogger(ctx, s.logger, "ParticipantService", "Register", "participant_id", input.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to register participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("nickname", participant.Nickname).InfoContext(ctx, "participant registered")
	}()

	input.Nickname = strings.TrimSpace(input.Nickname)
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	vErr := validateStruct(input)
	vErr.merge(validateNickname(input.Nickname))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	holder, lookupErr := s.participants.GetParticipantByNickname(ctx, input.Nickname)
	switch {
	case lookupErr == nil && holder.ID != input.ID:
		err = ErrNicknameTaken
		return
	case lookupErr != nil && !errors.Is(lookupErr, persistence.ErrNotFound):
		err = lookupErr
		return
	}

	now := s.now()
	existing, getErr := s.participants.GetParticipant(ctx, input.ID)
	switch {
	case getErr == nil:
		participant = existing
		participant.DisplayName = input.DisplayName
		participant.Nickname = input.Nickname
		participant.Bio = normalizeOptionalString(input.Bio)
		participant.PhotoRef = normalizeOptionalString(input.PhotoRef)
		participant.RegistrationComplete = true
		participant.UpdatedAt = now
		err = s.participants.UpdateParticipant(ctx, participant)
	case errors.Is(getErr, persistence.ErrNotFound):
		participant = Participant{
			ID:                   input.ID,
			DisplayName:          input.DisplayName,
			Nickname:             input.Nickname,
			Bio:                  normalizeOptionalString(input.Bio),
			PhotoRef:             normalizeOptionalString(input.PhotoRef),
			RegistrationComplete: true,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		err = s.participants.CreateParticipant(ctx, participant)
	default:
		err = getErr
		return
	}

	if errors.Is(err, persistence.ErrDuplicate) {
		// Lost a race for the nickname.
		err = ErrNicknameTaken
		return
	}
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Get returns a participant by id.
func (s *ParticipantService) Get(ctx context.Context, id string) (Participant, error) {
	participant, err := s.participants.GetParticipant(ctx, id)
	if err != nil {
		return Participant{}, mapRepoError(err)
	}
	return participant, nil
}

// Stats counts participants by registration state.
func (s *ParticipantService) Stats(ctx context.Context) (ParticipantStats, error) {
	counts, err := s.participants.CountParticipants(ctx)
	if err != nil {
		return ParticipantStats{}, mapRepoError(err)
	}
	return ParticipantStats{
		Total:      counts.Total,
		Registered: counts.Registered,
		Incomplete: counts.Total - counts.Registered,
	}, nil
}

func validateNickname(nickname string) *ValidationError {
	for _, r := range nickname {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' {
			continue
		}
		return newValidationError("nickname", "nickname may contain letters, digits, '_', '-' and '.' only")
	}
	return nil
}
