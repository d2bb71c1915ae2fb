package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/game-announcer/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite-backed repositories over a shared pool.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger

	Occurrences   *OccurrenceRepository
	Templates     *TemplateRepository
	Registrations *RegistrationRepository
	Participants  *ParticipantRepository
}

// Open connects to the database described by cfg. Call Migrate before use.
func Open(cfg Config, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:          pool,
		logger:        logger,
		Occurrences:   NewOccurrenceRepository(pool),
		Templates:     NewTemplateRepository(pool),
		Registrations: NewRegistrationRepository(pool),
		Participants:  NewParticipantRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(s.pool.DB(), migrationFiles, "migrations", s.logger)
	if _, err := manager.Run(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
