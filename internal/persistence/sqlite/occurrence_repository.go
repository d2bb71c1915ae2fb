package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

const occurrenceColumns = `id, title, description, starts_at, location, capacity, created_by, template_id,
	host, template_key, custom_text, is_active, publish_at, is_published, message_handle, created_at, updated_at`

// OccurrenceRepository implements persistence.OccurrenceRepository using SQLite.
type OccurrenceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewOccurrenceRepository creates a new SQLite occurrence repository.
func NewOccurrenceRepository(pool *ConnectionPool) *OccurrenceRepository {
	return &OccurrenceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateOccurrence inserts a new occurrence.
func (r *OccurrenceRepository) CreateOccurrence(ctx context.Context, o persistence.Occurrence) error {
	if o.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if o.IsPublished && o.MessageHandle == nil {
		return persistence.ErrConstraintViolation
	}
	if o.TemplateKey == "" {
		o.TemplateKey = "standard"
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO occurrences (`+occurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.Title,
		o.Description,
		formatTime(o.StartsAt),
		o.Location,
		o.Capacity,
		o.CreatedBy,
		nullableString(o.TemplateID),
		o.Host,
		o.TemplateKey,
		nullableString(o.CustomText),
		o.IsActive,
		nullableTime(o.PublishAt),
		o.IsPublished,
		nullableString(o.MessageHandle),
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetOccurrence retrieves an occurrence. With publishedOnly, unpublished rows read as missing.
func (r *OccurrenceRepository) GetOccurrence(ctx context.Context, id string, publishedOnly bool) (persistence.Occurrence, error) {
	if id == "" {
		return persistence.Occurrence{}, persistence.ErrNotFound
	}

	query := `SELECT ` + occurrenceColumns + ` FROM occurrences WHERE id = ?`
	if publishedOnly {
		query += ` AND is_published = 1`
	}

	occurrence, err := scanOccurrence(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Occurrence{}, persistence.ErrNotFound
		}
		return persistence.Occurrence{}, r.mapper.MapError(err)
	}
	return occurrence, nil
}

// RescheduleOccurrence moves the start and publication times of an occurrence.
func (r *OccurrenceRepository) RescheduleOccurrence(ctx context.Context, id string, startsAt time.Time, publishAt *time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE occurrences SET starts_at = ?, publish_at = ?, updated_at = ? WHERE id = ?`,
		formatTime(startsAt), nullableTime(publishAt), formatTime(time.Now()), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

// MarkPublished stores the message handle and the published flag together.
// The first recorded handle wins; later calls get ErrAlreadyPublished.
func (r *OccurrenceRepository) MarkPublished(ctx context.Context, id, handle string) error {
	if strings.TrimSpace(handle) == "" {
		return persistence.ErrConstraintViolation
	}
	result, err := r.helper.Exec(ctx,
		`UPDATE occurrences SET is_published = 1, message_handle = ?, updated_at = ? WHERE id = ? AND is_published = 0`,
		handle, formatTime(time.Now()), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	if err := requireAffected(result); !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	var published bool
	err = r.helper.QueryRow(ctx, `SELECT is_published FROM occurrences WHERE id = ?`, id).Scan(&published)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return persistence.ErrNotFound
	case err != nil:
		return r.mapper.MapError(err)
	case published:
		return persistence.ErrAlreadyPublished
	}
	return persistence.ErrNotFound
}

// ListActivePublished lists active published occurrences starting after the reference.
func (r *OccurrenceRepository) ListActivePublished(ctx context.Context, after time.Time) ([]persistence.Occurrence, error) {
	return r.list(ctx, `
		SELECT `+occurrenceColumns+` FROM occurrences
		WHERE is_active = 1 AND is_published = 1 AND starts_at > ?
		ORDER BY starts_at ASC, id ASC`,
		formatTime(after),
	)
}

// ListScheduledUnpublished lists occurrences waiting for a future publication.
func (r *OccurrenceRepository) ListScheduledUnpublished(ctx context.Context, after time.Time) ([]persistence.Occurrence, error) {
	return r.list(ctx, `
		SELECT `+occurrenceColumns+` FROM occurrences
		WHERE is_active = 1 AND is_published = 0 AND publish_at IS NOT NULL AND publish_at > ?
		ORDER BY publish_at ASC, id ASC`,
		formatTime(after),
	)
}

// ListByTemplateAndDate lists occurrences of a template starting in [dayStart, dayEnd).
func (r *OccurrenceRepository) ListByTemplateAndDate(ctx context.Context, templateID string, dayStart, dayEnd time.Time) ([]persistence.Occurrence, error) {
	return r.list(ctx, `
		SELECT `+occurrenceColumns+` FROM occurrences
		WHERE template_id = ? AND starts_at >= ? AND starts_at < ?
		ORDER BY starts_at ASC, id ASC`,
		templateID, formatTime(dayStart), formatTime(dayEnd),
	)
}

// LatestForTemplate returns the template's occurrence with the latest start.
func (r *OccurrenceRepository) LatestForTemplate(ctx context.Context, templateID string) (persistence.Occurrence, error) {
	occurrence, err := scanOccurrence(r.helper.QueryRow(ctx, `
		SELECT `+occurrenceColumns+` FROM occurrences
		WHERE template_id = ?
		ORDER BY starts_at DESC, id DESC
		LIMIT 1`, templateID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Occurrence{}, persistence.ErrNotFound
		}
		return persistence.Occurrence{}, r.mapper.MapError(err)
	}
	return occurrence, nil
}

// ArchiveStartedBefore deactivates active occurrences that started before cutoff.
func (r *OccurrenceRepository) ArchiveStartedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.helper.Exec(ctx,
		`UPDATE occurrences SET is_active = 0, updated_at = ? WHERE is_active = 1 AND starts_at < ?`,
		formatTime(time.Now()), formatTime(cutoff),
	)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *OccurrenceRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Occurrence, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var occurrences []persistence.Occurrence
	for rows.Next() {
		occurrence, err := scanOccurrence(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		occurrences = append(occurrences, occurrence)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return occurrences, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(row rowScanner) (persistence.Occurrence, error) {
	var (
		o                            persistence.Occurrence
		startsAt, createdAt, updated string
		templateID, customText       sql.NullString
		publishAt, messageHandle     sql.NullString
	)

	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&startsAt,
		&o.Location,
		&o.Capacity,
		&o.CreatedBy,
		&templateID,
		&o.Host,
		&o.TemplateKey,
		&customText,
		&o.IsActive,
		&publishAt,
		&o.IsPublished,
		&messageHandle,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.Occurrence{}, err
	}

	o.TemplateID = stringPtr(templateID)
	o.CustomText = stringPtr(customText)
	o.MessageHandle = stringPtr(messageHandle)

	if o.StartsAt, err = parseTime("starts_at", startsAt); err != nil {
		return persistence.Occurrence{}, err
	}
	if o.PublishAt, err = timePtr("publish_at", publishAt); err != nil {
		return persistence.Occurrence{}, err
	}
	if o.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Occurrence{}, err
	}
	if o.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return persistence.Occurrence{}, err
	}
	return o, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
