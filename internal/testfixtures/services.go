package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/game-announcer/internal/announcement"
	"github.com/example/game-announcer/internal/application"
	"github.com/example/game-announcer/internal/delivery"
	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/publication"
	"github.com/example/game-announcer/internal/recurrence"
	"github.com/example/game-announcer/internal/roster"
	"github.com/example/game-announcer/internal/scheduler"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Location    *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Location:    time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLocation sets the calendar time zone for recurrence and rendering.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// NewGameService builds a game service from deps, filling identifiers, clock
// and calculator from the factory where deps leaves them unset.
func (f *ServiceFactory) NewGameService(deps application.GameServiceDeps) *application.GameService {
	if deps.IDGenerator == nil {
		deps.IDGenerator = f.IDGenerator.NextFunc()
	}
	if deps.Now == nil {
		deps.Now = f.Clock.NowFunc()
	}
	if deps.Calculator == nil {
		deps.Calculator = recurrence.NewCalculator(f.Location)
	}
	return application.NewGameService(deps)
}

// ParticipantServiceDeps captures dependencies for constructing a participant service.
type ParticipantServiceDeps struct {
	Participants persistence.ParticipantRepository
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewParticipantService builds a participant service using the supplied dependencies.
func (f *ServiceFactory) NewParticipantService(deps ParticipantServiceDeps) *application.ParticipantService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewParticipantServiceWithLogger(deps.Participants, now, deps.Logger)
}

// GameStackDeps captures the optional collaborators of a GameStack.
type GameStackDeps struct {
	Channel         delivery.Channel
	Locker          roster.Locker
	DefaultCapacity int
	Logger          *slog.Logger
}

// GameStack is a fully wired announcer over a SQLite harness. Scheduled
// publications fire when the factory clock advances past them.
type GameStack struct {
	Storage      *SQLiteHarness
	Channel      delivery.Channel
	Games        *application.GameService
	Participants *application.ParticipantService
	Coordinator  *publication.Coordinator
	Scheduler    *scheduler.Scheduler
	Executor     *scheduler.TimerExecutor
}

// NewGameStack wires every component against a fresh SQLite database. When
// deps.Channel is nil a RecordingChannel is used.
func (f *ServiceFactory) NewGameStack(tb testing.TB, deps GameStackDeps) *GameStack {
	tb.Helper()

	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	channel := deps.Channel
	if channel == nil {
		channel = NewRecordingChannel()
	}

	storage := NewSQLiteHarness(tb)
	now := f.Clock.NowFunc()
	calculator := recurrence.NewCalculator(f.Location)

	coordinator := publication.NewCoordinator(
		storage.Occurrences,
		storage.Registrations,
		announcement.NewRenderer(f.Location),
		channel,
		logger,
	)
	executor := scheduler.NewTimerExecutorWithClock(now, f.Clock.TimerFunc())
	tb.Cleanup(executor.Stop)

	sched := scheduler.NewScheduler(executor, storage.Occurrences, func(ctx context.Context, occurrenceID string) error {
		_, err := coordinator.Publish(ctx, occurrenceID)
		return err
	}, now, logger)

	games := application.NewGameService(application.GameServiceDeps{
		Occurrences:     storage.Occurrences,
		Templates:       storage.Templates,
		Participants:    storage.Participants,
		Roster:          roster.NewEngine(storage.Registrations, deps.Locker, f.IDGenerator.NextFunc(), now),
		Publisher:       coordinator,
		Scheduler:       sched,
		Calculator:      calculator,
		DefaultCapacity: deps.DefaultCapacity,
		IDGenerator:     f.IDGenerator.NextFunc(),
		Now:             now,
		Logger:          logger,
	})

	return &GameStack{
		Storage:      storage,
		Channel:      channel,
		Games:        games,
		Participants: application.NewParticipantServiceWithLogger(storage.Participants, now, logger),
		Coordinator:  coordinator,
		Scheduler:    sched,
		Executor:     executor,
	}
}
