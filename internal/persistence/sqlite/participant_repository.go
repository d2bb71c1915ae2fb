package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/game-announcer/internal/persistence"
)

const participantColumns = `id, display_name, nickname, bio, photo_ref, registration_complete, created_at, updated_at`

// ParticipantRepository implements persistence.ParticipantRepository using SQLite.
type ParticipantRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateParticipant inserts a participant. A taken nickname yields ErrDuplicate.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, p persistence.Participant) error {
	if p.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.DisplayName,
		p.Nickname,
		nullableString(p.Bio),
		nullableString(p.PhotoRef),
		p.RegistrationComplete,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateParticipant overwrites the mutable participant fields.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, p persistence.Participant) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE participants
		SET display_name = ?, nickname = ?, bio = ?, photo_ref = ?, registration_complete = ?, updated_at = ?
		WHERE id = ?`,
		p.DisplayName,
		p.Nickname,
		nullableString(p.Bio),
		nullableString(p.PhotoRef),
		p.RegistrationComplete,
		formatTime(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// GetParticipant retrieves a participant by ID.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	return r.getOne(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
}

// GetParticipantByNickname looks a participant up by exact, case-sensitive nickname.
func (r *ParticipantRepository) GetParticipantByNickname(ctx context.Context, nickname string) (persistence.Participant, error) {
	return r.getOne(ctx, `SELECT `+participantColumns+` FROM participants WHERE nickname = ?`, nickname)
}

// CountParticipants counts all participants and those with a completed registration.
func (r *ParticipantRepository) CountParticipants(ctx context.Context) (persistence.ParticipantCounts, error) {
	var counts persistence.ParticipantCounts
	err := r.helper.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(registration_complete), 0) FROM participants`,
	).Scan(&counts.Total, &counts.Registered)
	if err != nil {
		return persistence.ParticipantCounts{}, r.mapper.MapError(err)
	}
	return counts, nil
}

func (r *ParticipantRepository) getOne(ctx context.Context, query string, arg string) (persistence.Participant, error) {
	var (
		p                  persistence.Participant
		bio, photoRef      sql.NullString
		createdAt, updated string
	)
	err := r.helper.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.DisplayName,
		&p.Nickname,
		&bio,
		&photoRef,
		&p.RegistrationComplete,
		&createdAt,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Participant{}, persistence.ErrNotFound
		}
		return persistence.Participant{}, r.mapper.MapError(err)
	}

	p.Bio = stringPtr(bio)
	p.PhotoRef = stringPtr(photoRef)
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Participant{}, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return persistence.Participant{}, err
	}
	return p, nil
}
