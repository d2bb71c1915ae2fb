package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

// Status describes where a join landed.
type Status string

const (
	StatusMain              Status = "main"
	StatusReserve           Status = "reserve"
	StatusAlreadyRegistered Status = "already_registered"
)

// JoinOutcome is the result of Join. For StatusAlreadyRegistered, Registration
// holds the existing entry.
type JoinOutcome struct {
	Registration persistence.Registration
	Status       Status
}

// LeaveOutcome is the result of Leave. Promoted is set when a reserve moved up.
type LeaveOutcome struct {
	Removed  bool
	Promoted *persistence.Registration
}

// LockKey is the serialization key for an occurrence's roster.
func LockKey(occurrenceID string) string {
	return "roster:" + occurrenceID
}

// Engine maintains the capacity-bounded main roster and the reserve list.
type Engine struct {
	store       persistence.RegistrationRepository
	locks       Locker
	idGenerator func() string
	now         func() time.Time
}

// NewEngine constructs a roster engine. A nil locker serializes in-process.
func NewEngine(store persistence.RegistrationRepository, locks Locker, idGenerator func() string, now func() time.Time) *Engine {
	if locks == nil {
		locks = NewKeyedMutex()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, locks: locks, idGenerator: idGenerator, now: now}
}

// Join registers participantID for occurrenceID. The participant lands on the
// main roster while it has free slots and on the reserve otherwise.
func (e *Engine) Join(ctx context.Context, occurrenceID, participantID string) (JoinOutcome, error) {
	unlock, err := e.locks.Lock(ctx, LockKey(occurrenceID))
	if err != nil {
		return JoinOutcome{}, fmt.Errorf("failed to lock roster: %w", err)
	}
	defer unlock()

	var outcome JoinOutcome
	err = e.store.WithinRosterTx(ctx, func(tx persistence.RosterTx) error {
		capacity, err := tx.OccurrenceCapacity(occurrenceID)
		if err != nil {
			return err
		}

		existing, err := tx.FindRegistration(occurrenceID, participantID)
		switch {
		case err == nil:
			outcome = JoinOutcome{Registration: existing, Status: StatusAlreadyRegistered}
			return nil
		case !errors.Is(err, persistence.ErrNotFound):
			return err
		}

		mainCount, err := tx.CountMain(occurrenceID)
		if err != nil {
			return err
		}

		registration := persistence.Registration{
			ID:            e.idGenerator(),
			OccurrenceID:  occurrenceID,
			ParticipantID: participantID,
			IsReserve:     mainCount >= capacity,
			RegisteredAt:  e.now(),
		}
		if err := tx.InsertRegistration(registration); err != nil {
			return err
		}

		status := StatusMain
		if registration.IsReserve {
			status = StatusReserve
		}
		outcome = JoinOutcome{Registration: registration, Status: status}
		return nil
	})
	if err != nil {
		return JoinOutcome{}, err
	}
	return outcome, nil
}

// Leave removes participantID from occurrenceID. Removing a main entry promotes
// the earliest reserve in the same transaction.
func (e *Engine) Leave(ctx context.Context, occurrenceID, participantID string) (LeaveOutcome, error) {
	unlock, err := e.locks.Lock(ctx, LockKey(occurrenceID))
	if err != nil {
		return LeaveOutcome{}, fmt.Errorf("failed to lock roster: %w", err)
	}
	defer unlock()

	var outcome LeaveOutcome
	err = e.store.WithinRosterTx(ctx, func(tx persistence.RosterTx) error {
		outcome = LeaveOutcome{}

		existing, err := tx.FindRegistration(occurrenceID, participantID)
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.DeleteRegistration(existing.ID); err != nil {
			return err
		}
		outcome.Removed = true

		if existing.IsReserve {
			return nil
		}

		next, err := tx.EarliestReserve(occurrenceID)
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.PromoteRegistration(next.ID); err != nil {
			return err
		}
		next.IsReserve = false
		outcome.Promoted = &next
		return nil
	})
	if err != nil {
		return LeaveOutcome{}, err
	}
	return outcome, nil
}

// List returns main entries then reserve entries, each by registration time.
func (e *Engine) List(ctx context.Context, occurrenceID string) ([]persistence.RosterEntry, error) {
	return e.store.ListRoster(ctx, occurrenceID)
}

// MainCount counts main-roster entries in a listing.
func MainCount(entries []persistence.RosterEntry) int {
	count := 0
	for _, entry := range entries {
		if !entry.IsReserve {
			count++
		}
	}
	return count
}
