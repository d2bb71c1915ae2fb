package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/game-announcer/internal/persistence"
)

// RegistrationRepository implements persistence.RegistrationRepository using SQLite.
type RegistrationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewRegistrationRepository creates a new SQLite registration repository.
func NewRegistrationRepository(pool *ConnectionPool) *RegistrationRepository {
	return &RegistrationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// WithinRosterTx runs fn inside a write transaction, retrying when the database is busy.
func (r *RegistrationRepository) WithinRosterTx(ctx context.Context, fn func(tx persistence.RosterTx) error) error {
	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			return fn(&rosterTx{ctx: ctx, tx: tx, mapper: r.mapper})
		})
	})
}

// ListRoster returns main entries then reserve entries, each ordered by registration time.
func (r *RegistrationRepository) ListRoster(ctx context.Context, occurrenceID string) ([]persistence.RosterEntry, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT r.id, r.occurrence_id, r.participant_id, r.is_reserve, r.registered_at, COALESCE(p.nickname, '')
		FROM registrations r
		LEFT JOIN participants p ON p.id = r.participant_id
		WHERE r.occurrence_id = ?
		ORDER BY r.is_reserve ASC, r.registered_at ASC, r.rowid ASC`, occurrenceID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.RosterEntry
	for rows.Next() {
		var (
			entry        persistence.RosterEntry
			registeredAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.OccurrenceID,
			&entry.ParticipantID,
			&entry.IsReserve,
			&registeredAt,
			&entry.Nickname,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if entry.RegisteredAt, err = parseTime("registered_at", registeredAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

type rosterTx struct {
	ctx    context.Context
	tx     *sql.Tx
	mapper *ErrorMapper
}

func (t *rosterTx) OccurrenceCapacity(occurrenceID string) (int, error) {
	var capacity int
	err := t.tx.QueryRowContext(t.ctx, `SELECT capacity FROM occurrences WHERE id = ?`, occurrenceID).Scan(&capacity)
	if err != nil {
		return 0, t.mapper.MapError(err)
	}
	return capacity, nil
}

func (t *rosterTx) FindRegistration(occurrenceID, participantID string) (persistence.Registration, error) {
	return t.scanOne(`
		SELECT id, occurrence_id, participant_id, is_reserve, registered_at
		FROM registrations
		WHERE occurrence_id = ? AND participant_id = ?`, occurrenceID, participantID)
}

func (t *rosterTx) CountMain(occurrenceID string) (int, error) {
	var count int
	err := t.tx.QueryRowContext(t.ctx,
		`SELECT COUNT(*) FROM registrations WHERE occurrence_id = ? AND is_reserve = 0`, occurrenceID,
	).Scan(&count)
	if err != nil {
		return 0, t.mapper.MapError(err)
	}
	return count, nil
}

func (t *rosterTx) InsertRegistration(reg persistence.Registration) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO registrations (id, occurrence_id, participant_id, is_reserve, registered_at)
		VALUES (?, ?, ?, ?, ?)`,
		reg.ID, reg.OccurrenceID, reg.ParticipantID, reg.IsReserve, formatTime(reg.RegisteredAt),
	)
	return t.mapper.MapError(err)
}

func (t *rosterTx) DeleteRegistration(id string) error {
	result, err := t.tx.ExecContext(t.ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return t.mapper.MapError(err)
	}
	return requireAffected(result)
}

func (t *rosterTx) EarliestReserve(occurrenceID string) (persistence.Registration, error) {
	return t.scanOne(`
		SELECT id, occurrence_id, participant_id, is_reserve, registered_at
		FROM registrations
		WHERE occurrence_id = ? AND is_reserve = 1
		ORDER BY registered_at ASC, rowid ASC
		LIMIT 1`, occurrenceID)
}

func (t *rosterTx) PromoteRegistration(id string) error {
	result, err := t.tx.ExecContext(t.ctx, `UPDATE registrations SET is_reserve = 0 WHERE id = ?`, id)
	if err != nil {
		return t.mapper.MapError(err)
	}
	return requireAffected(result)
}

func (t *rosterTx) scanOne(query string, args ...any) (persistence.Registration, error) {
	var (
		reg          persistence.Registration
		registeredAt string
	)
	err := t.tx.QueryRowContext(t.ctx, query, args...).Scan(
		&reg.ID,
		&reg.OccurrenceID,
		&reg.ParticipantID,
		&reg.IsReserve,
		&registeredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Registration{}, persistence.ErrNotFound
		}
		return persistence.Registration{}, fmt.Errorf("failed to read registration: %w", t.mapper.MapError(err))
	}
	if reg.RegisteredAt, err = parseTime("registered_at", registeredAt); err != nil {
		return persistence.Registration{}, err
	}
	return reg, nil
}
