package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

const templateColumns = `id, title, description, location, capacity, kind, game_time, announcement_time,
	announcement_day_offset, day_of_week, starts_on, ends_on, host, template_key, custom_text,
	created_by, is_active, created_at, updated_at`

// TemplateRepository implements persistence.TemplateRepository using SQLite.
type TemplateRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTemplateRepository creates a new SQLite template repository.
func NewTemplateRepository(pool *ConnectionPool) *TemplateRepository {
	return &TemplateRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateTemplate inserts a recurrence template.
func (r *TemplateRepository) CreateTemplate(ctx context.Context, t persistence.RecurrenceTemplate) error {
	if t.ID == "" || !t.Kind.Valid() {
		return persistence.ErrConstraintViolation
	}
	if t.Kind.RequiresDayOfWeek() != (t.DayOfWeek != nil) {
		return persistence.ErrConstraintViolation
	}
	if t.TemplateKey == "" {
		t.TemplateKey = "standard"
	}

	var dayOfWeek sql.NullInt64
	if t.DayOfWeek != nil {
		dayOfWeek = sql.NullInt64{Int64: int64(*t.DayOfWeek), Valid: true}
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO recurrence_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Title,
		t.Description,
		t.Location,
		t.Capacity,
		string(t.Kind),
		t.GameTime,
		t.AnnouncementTime,
		t.AnnouncementDayOffset,
		dayOfWeek,
		formatTime(t.StartsOn),
		nullableTime(t.EndsOn),
		t.Host,
		t.TemplateKey,
		nullableString(t.CustomText),
		t.CreatedBy,
		t.IsActive,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetTemplate retrieves a template by ID.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (persistence.RecurrenceTemplate, error) {
	t, err := scanTemplate(r.helper.QueryRow(ctx, `SELECT `+templateColumns+` FROM recurrence_templates WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.RecurrenceTemplate{}, persistence.ErrNotFound
		}
		return persistence.RecurrenceTemplate{}, r.mapper.MapError(err)
	}
	return t, nil
}

// ListActiveTemplates lists templates that still spawn occurrences.
func (r *TemplateRepository) ListActiveTemplates(ctx context.Context) ([]persistence.RecurrenceTemplate, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+templateColumns+` FROM recurrence_templates
		WHERE is_active = 1
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var templates []persistence.RecurrenceTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return templates, nil
}

// DeactivateTemplate stops a template from spawning further occurrences.
func (r *TemplateRepository) DeactivateTemplate(ctx context.Context, id string, at time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE recurrence_templates SET is_active = 0, updated_at = ? WHERE id = ?`,
		formatTime(at), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireAffected(result)
}

func scanTemplate(row rowScanner) (persistence.RecurrenceTemplate, error) {
	var (
		t                            persistence.RecurrenceTemplate
		kind                         string
		dayOfWeek                    sql.NullInt64
		startsOn, createdAt, updated string
		endsOn, customText           sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Location,
		&t.Capacity,
		&kind,
		&t.GameTime,
		&t.AnnouncementTime,
		&t.AnnouncementDayOffset,
		&dayOfWeek,
		&startsOn,
		&endsOn,
		&t.Host,
		&t.TemplateKey,
		&customText,
		&t.CreatedBy,
		&t.IsActive,
		&createdAt,
		&updated,
	)
	if err != nil {
		return persistence.RecurrenceTemplate{}, err
	}

	t.Kind = persistence.RecurrenceKind(kind)
	t.CustomText = stringPtr(customText)
	if dayOfWeek.Valid {
		weekday := time.Weekday(dayOfWeek.Int64)
		t.DayOfWeek = &weekday
	}

	if t.StartsOn, err = parseTime("starts_on", startsOn); err != nil {
		return persistence.RecurrenceTemplate{}, err
	}
	if t.EndsOn, err = timePtr("ends_on", endsOn); err != nil {
		return persistence.RecurrenceTemplate{}, err
	}
	if t.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.RecurrenceTemplate{}, err
	}
	if t.UpdatedAt, err = parseTime("updated_at", updated); err != nil {
		return persistence.RecurrenceTemplate{}, err
	}
	return t, nil
}
