// Package publication moves occurrences from unpublished to published and keeps
// the channel message in sync with the roster afterwards.
package publication

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/game-announcer/internal/announcement"
	"github.com/example/game-announcer/internal/delivery"
	"github.com/example/game-announcer/internal/logging"
	"github.com/example/game-announcer/internal/persistence"
)

// Outcome summarizes what a publish or refresh did.
type Outcome string

const (
	OutcomePublished        Outcome = "published"
	OutcomeAlreadyPublished Outcome = "already_published"
	OutcomeUpdated          Outcome = "updated"
	OutcomeUnchanged        Outcome = "unchanged"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeFailed           Outcome = "failed"
)

// Result is returned by Publish and Refresh. DeliveryKind is set when the
// channel reported a failure.
type Result struct {
	Outcome      Outcome
	DeliveryKind delivery.Kind
}

// OccurrenceStore is what the coordinator reads and writes.
type OccurrenceStore interface {
	GetOccurrence(ctx context.Context, id string, publishedOnly bool) (persistence.Occurrence, error)
	MarkPublished(ctx context.Context, id, handle string) error
}

// RosterReader lists an occurrence's roster in display order.
type RosterReader interface {
	ListRoster(ctx context.Context, occurrenceID string) ([]persistence.RosterEntry, error)
}

// Coordinator publishes and refreshes channel announcements.
type Coordinator struct {
	occurrences OccurrenceStore
	roster      RosterReader
	renderer    *announcement.Renderer
	channel     delivery.Channel
	logger      *slog.Logger
}

// NewCoordinator wires a Coordinator. A nil logger uses slog.Default.
func NewCoordinator(occurrences OccurrenceStore, roster RosterReader, renderer *announcement.Renderer, channel delivery.Channel, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		occurrences: occurrences,
		roster:      roster,
		renderer:    renderer,
		channel:     channel,
		logger:      logger,
	}
}

func (c *Coordinator) log(ctx context.Context, operation, occurrenceID string) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = c.logger
	}
	return logger.With("component", "publication", "operation", operation, "occurrence_id", occurrenceID)
}

// Publish sends the announcement for an unpublished occurrence and records the
// message handle. Already published occurrences are left alone.
func (c *Coordinator) Publish(ctx context.Context, occurrenceID string) (Result, error) {
	logger := c.log(ctx, "publish", occurrenceID)

	occurrence, err := c.occurrences.GetOccurrence(ctx, occurrenceID, false)
	if err != nil {
		logger.Error("occurrence lookup failed", "error", err)
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("load occurrence %s: %w", occurrenceID, err)
	}
	if occurrence.IsPublished {
		logger.Info("occurrence already published")
		return Result{Outcome: OutcomeAlreadyPublished}, nil
	}

	text, err := c.render(ctx, occurrence)
	if err != nil {
		logger.Error("render failed", "error", err)
		return Result{Outcome: OutcomeFailed}, err
	}

	handle, err := c.channel.Send(ctx, text)
	if err != nil {
		kind := delivery.KindOf(err)
		logger.Error("announcement send failed", "error", err, "delivery_kind", kind)
		return Result{Outcome: OutcomeFailed, DeliveryKind: kind}, err
	}

	if err := c.occurrences.MarkPublished(ctx, occurrenceID, string(handle)); err != nil {
		if errors.Is(err, persistence.ErrAlreadyPublished) {
			// A concurrent publish recorded its message first; that one stays the tracked announcement.
			logger.Warn("announcement published twice, keeping the first message", "duplicate_handle", handle)
			return Result{Outcome: OutcomeAlreadyPublished}, nil
		}
		// The message is out but the record is not; a retry would post a duplicate.
		logger.Error("failed to record publication", "error", err, "message_handle", handle)
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("mark occurrence %s published: %w", occurrenceID, err)
	}

	logger.Info("announcement published", "message_handle", handle)
	return Result{Outcome: OutcomePublished}, nil
}

// Refresh re-renders a published announcement and edits it in place.
// Unpublished occurrences are skipped. A message that no longer exists fails
// softly: the error is returned and logged but the occurrence stays published.
func (c *Coordinator) Refresh(ctx context.Context, occurrenceID string) (Result, error) {
	logger := c.log(ctx, "refresh", occurrenceID)

	occurrence, err := c.occurrences.GetOccurrence(ctx, occurrenceID, false)
	if err != nil {
		logger.Error("occurrence lookup failed", "error", err)
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("load occurrence %s: %w", occurrenceID, err)
	}
	if !occurrence.IsPublished || occurrence.MessageHandle == nil || *occurrence.MessageHandle == "" {
		logger.Debug("refresh skipped for unpublished occurrence")
		return Result{Outcome: OutcomeSkipped}, nil
	}

	text, err := c.render(ctx, occurrence)
	if err != nil {
		logger.Error("render failed", "error", err)
		return Result{Outcome: OutcomeFailed}, err
	}

	err = c.channel.Edit(ctx, delivery.Handle(*occurrence.MessageHandle), text)
	switch kind := delivery.KindOf(err); kind {
	case "":
		logger.Info("announcement refreshed")
		return Result{Outcome: OutcomeUpdated}, nil
	case delivery.KindUnchanged:
		logger.Info("announcement already up to date")
		return Result{Outcome: OutcomeUnchanged}, nil
	case delivery.KindNotFound:
		logger.Warn("announcement message no longer exists", "error", err, "message_handle", *occurrence.MessageHandle)
		return Result{Outcome: OutcomeFailed, DeliveryKind: kind}, err
	default:
		logger.Error("announcement refresh failed", "error", err, "delivery_kind", kind)
		return Result{Outcome: OutcomeFailed, DeliveryKind: kind}, err
	}
}

// Preview renders the current announcement text without sending it.
func (c *Coordinator) Preview(ctx context.Context, occurrenceID string) (string, error) {
	occurrence, err := c.occurrences.GetOccurrence(ctx, occurrenceID, false)
	if err != nil {
		return "", fmt.Errorf("load occurrence %s: %w", occurrenceID, err)
	}
	return c.render(ctx, occurrence)
}

func (c *Coordinator) render(ctx context.Context, occurrence persistence.Occurrence) (string, error) {
	entries, err := c.roster.ListRoster(ctx, occurrence.ID)
	if err != nil {
		return "", fmt.Errorf("list roster for %s: %w", occurrence.ID, err)
	}
	return c.renderer.Render(announcement.DataFor(occurrence, entries)), nil
}
