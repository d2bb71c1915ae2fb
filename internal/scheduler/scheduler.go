package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/game-announcer/internal/logging"
	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/recurrence"
)

// ComputePublicationTime returns the announcement instant for a game starting at
// start: dayOffset calendar days earlier, at the given time of day, in start's zone.
func ComputePublicationTime(start time.Time, dayOffset int, at recurrence.TimeOfDay) time.Time {
	return at.On(start.AddDate(0, 0, -dayOffset), start.Location())
}

// JobKey is the executor key for an occurrence's publication job.
func JobKey(occurrenceID string) string {
	return "publish:" + occurrenceID
}

// PublishFunc publishes one occurrence. It must treat an already published
// occurrence as success.
type PublishFunc func(ctx context.Context, occurrenceID string) error

// ScheduledLister returns unpublished occurrences waiting for a publication time after the reference.
type ScheduledLister interface {
	ListScheduledUnpublished(ctx context.Context, after time.Time) ([]persistence.Occurrence, error)
}

// Scheduler defers occurrence publication until its announcement time.
type Scheduler struct {
	executor    Executor
	occurrences ScheduledLister
	publish     PublishFunc
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduler wires a Scheduler. Nil now and logger fall back to time.Now and slog.Default.
func NewScheduler(executor Executor, occurrences ScheduledLister, publish PublishFunc, now func() time.Time, logger *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		executor:    executor,
		occurrences: occurrences,
		publish:     publish,
		now:         now,
		logger:      logger,
	}
}

func (s *Scheduler) log(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger.With("component", "scheduler")
	}
	return s.logger.With("component", "scheduler")
}

// Schedule arranges publication of occurrenceID at publishAt. A time that is not
// in the future publishes synchronously. Rescheduling the same occurrence
// replaces the pending job. The result reports success; failures are logged.
func (s *Scheduler) Schedule(ctx context.Context, occurrenceID string, publishAt time.Time) bool {
	logger := s.log(ctx).With("occurrence_id", occurrenceID, "publish_at", publishAt)

	if !publishAt.After(s.now()) {
		if err := s.publish(ctx, occurrenceID); err != nil {
			logger.Error("immediate publication failed", "error", err)
			return false
		}
		logger.Info("published immediately")
		return true
	}

	err := s.executor.SubmitOnce(JobKey(occurrenceID), publishAt, func(jobCtx context.Context) {
		jobLogger := s.logger.With("component", "scheduler", "occurrence_id", occurrenceID)
		if err := s.publish(logging.ContextWithLogger(jobCtx, jobLogger), occurrenceID); err != nil {
			jobLogger.Error("scheduled publication failed", "error", err)
			return
		}
		jobLogger.Info("scheduled publication fired")
	})
	if err != nil {
		logger.Error("failed to schedule publication", "error", err)
		return false
	}

	logger.Info("publication scheduled")
	return true
}

// Recover re-enqueues every active unpublished occurrence with a future
// publication time. It returns the number of jobs scheduled.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	pending, err := s.occurrences.ListScheduledUnpublished(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list scheduled occurrences: %w", err)
	}

	scheduled := 0
	for _, occurrence := range pending {
		if occurrence.PublishAt == nil {
			continue
		}
		if s.Schedule(ctx, occurrence.ID, *occurrence.PublishAt) {
			scheduled++
		}
	}

	s.log(ctx).Info("publication recovery finished", "found", len(pending), "scheduled", scheduled)
	return scheduled, nil
}
