package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

type memoryParticipants struct {
	mu      sync.Mutex
	byID    map[string]persistence.Participant
	created int
	updated int
	err     error
}

func newMemoryParticipants(existing ...persistence.Participant) *memoryParticipants {
	repo := &memoryParticipants{byID: make(map[string]persistence.Participant)}
	for _, p := range existing {
		repo.byID[p.ID] = p
	}
	return repo
}

func (m *memoryParticipants) CreateParticipant(ctx context.Context, p persistence.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byID[p.ID] = p
	m.created++
	return nil
}

func (m *memoryParticipants) UpdateParticipant(ctx context.Context, p persistence.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[p.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[p.ID] = p
	m.updated++
	return nil
}

func (m *memoryParticipants) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return persistence.Participant{}, persistence.ErrNotFound
	}
	return p, nil
}

func (m *memoryParticipants) GetParticipantByNickname(ctx context.Context, nickname string) (persistence.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.Nickname == nickname {
			return p, nil
		}
	}
	return persistence.Participant{}, persistence.ErrNotFound
}

func (m *memoryParticipants) CountParticipants(ctx context.Context) (persistence.ParticipantCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.ParticipantCounts{}, m.err
	}
	counts := persistence.ParticipantCounts{Total: len(m.byID)}
	for _, p := range m.byID {
		if p.RegistrationComplete {
			counts.Registered++
		}
	}
	return counts, nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
}

func TestParticipantService_RegisterCreatesParticipant(t *testing.T) {
	t.Parallel()

	repo := newMemoryParticipants()
	svc := NewParticipantService(repo, fixedNow)

	bio := "  likes defence  "
	participant, err := svc.Register(context.Background(), RegisterParticipantInput{
		ID:          "501",
		DisplayName: " Anna ",
		Nickname:    " anna_k ",
		Bio:         &bio,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if participant.Nickname != "anna_k" || participant.DisplayName != "Anna" {
		t.Fatalf("expected trimmed names, got %+v", participant)
	}
	if participant.Bio == nil || *participant.Bio != "likes defence" {
		t.Fatalf("expected trimmed bio, got %v", participant.Bio)
	}
	if !participant.RegistrationComplete || !participant.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected participant state: %+v", participant)
	}
	if repo.created != 1 {
		t.Fatalf("expected one create, got %d", repo.created)
	}
}

func TestParticipantService_RegisterUpdatesExisting(t *testing.T) {
	t.Parallel()

	created := fixedNow().Add(-48 * time.Hour)
	repo := newMemoryParticipants(persistence.Participant{
		ID:        "501",
		Nickname:  "old_nick",
		CreatedAt: created,
		UpdatedAt: created,
	})
	svc := NewParticipantService(repo, fixedNow)

	participant, err := svc.Register(context.Background(), RegisterParticipantInput{ID: "501", Nickname: "new_nick"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if repo.updated != 1 || repo.created != 0 {
		t.Fatalf("expected an update, got created=%d updated=%d", repo.created, repo.updated)
	}
	if !participant.CreatedAt.Equal(created) || !participant.UpdatedAt.Equal(fixedNow()) {
		t.Fatalf("unexpected timestamps: %+v", participant)
	}
	if !participant.RegistrationComplete {
		t.Fatalf("expected registration to be complete")
	}

	again, err := svc.Register(context.Background(), RegisterParticipantInput{ID: "501", Nickname: "new_nick"})
	if err != nil {
		t.Fatalf("re-registering with own nickname returned error: %v", err)
	}
	if again.Nickname != "new_nick" {
		t.Fatalf("unexpected nickname %q", again.Nickname)
	}
}

func TestParticipantService_RegisterErrors(t *testing.T) {
	t.Parallel()

	taken := persistence.Participant{ID: "900", Nickname: "striker", RegistrationComplete: true}

	cases := []struct {
		name    string
		input   RegisterParticipantInput
		repoErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:  "nickname taken",
			input: RegisterParticipantInput{ID: "501", Nickname: "striker"},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNicknameTaken) {
					t.Fatalf("expected ErrNicknameTaken, got %v", err)
				}
			},
		},
		{
			name:  "short nickname",
			input: RegisterParticipantInput{ID: "501", Nickname: "ab"},
			check: expectFieldError("nickname"),
		},
		{
			name:  "nickname with spaces",
			input: RegisterParticipantInput{ID: "501", Nickname: "two words"},
			check: expectFieldError("nickname"),
		},
		{
			name:  "missing id",
			input: RegisterParticipantInput{Nickname: "valid"},
			check: expectFieldError("id"),
		},
		{
			name:    "duplicate on write",
			input:   RegisterParticipantInput{ID: "501", Nickname: "racer"},
			repoErr: persistence.ErrDuplicate,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNicknameTaken) {
					t.Fatalf("expected ErrNicknameTaken, got %v", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := newMemoryParticipants(taken)
			repo.err = tc.repoErr
			svc := NewParticipantService(repo, fixedNow)

			_, err := svc.Register(context.Background(), tc.input)
			tc.check(t, err)
		})
	}
}

func TestParticipantService_GetMapsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewParticipantService(newMemoryParticipants(), fixedNow)
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantService_Stats(t *testing.T) {
	t.Parallel()

	repo := newMemoryParticipants(
		persistence.Participant{ID: "1", Nickname: "anna", RegistrationComplete: true},
		persistence.Participant{ID: "2", Nickname: "boris", RegistrationComplete: true},
		persistence.Participant{ID: "3", Nickname: "clara"},
	)
	svc := NewParticipantService(repo, fixedNow)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Total != 3 || stats.Registered != 2 || stats.Incomplete != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	repo.err = errors.New("disk full")
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatalf("expected repository error to surface")
	}
}

func expectFieldError(field string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		t.Helper()
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected error on %q, got %v", field, vErr.FieldErrors)
		}
	}
}
