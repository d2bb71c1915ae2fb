package testfixtures

import (
	"context"
	"testing"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

type capturingParticipantRepo struct {
	created persistence.Participant
}

func (c *capturingParticipantRepo) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	c.created = participant
	return nil
}

func (c *capturingParticipantRepo) UpdateParticipant(ctx context.Context, participant persistence.Participant) error {
	return nil
}

func (c *capturingParticipantRepo) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	return persistence.Participant{}, persistence.ErrNotFound
}

func (c *capturingParticipantRepo) GetParticipantByNickname(ctx context.Context, nickname string) (persistence.Participant, error) {
	return persistence.Participant{}, persistence.ErrNotFound
}

func (c *capturingParticipantRepo) CountParticipants(ctx context.Context) (persistence.ParticipantCounts, error) {
	return persistence.ParticipantCounts{}, nil
}

func TestServiceFactoryNewParticipantService(t *testing.T) {
	factory := NewServiceFactory()
	repo := &capturingParticipantRepo{}

	svc := factory.NewParticipantService(ParticipantServiceDeps{Participants: repo})
	input := NewParticipantFixture(WithParticipantID("42"), WithParticipantNickname("striker")).Input()

	participant, err := svc.Register(context.Background(), input)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if repo.created.ID != "42" || !repo.created.RegistrationComplete {
		t.Fatalf("repository received unexpected participant: %+v", repo.created)
	}
	if !participant.CreatedAt.Equal(factory.Clock.Current()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Current(), participant.CreatedAt)
	}
}

func TestGameStackPublishesOnClockAdvance(t *testing.T) {
	factory := NewServiceFactory()
	stack := factory.NewGameStack(t, GameStackDeps{})
	ctx := context.Background()

	fixture := NewOccurrenceFixture(WithOccurrencePublishAt(ReferenceTime().Add(2 * time.Hour)))
	occurrence, err := stack.Games.CreateOccurrence(ctx, fixture.Input())
	if err != nil {
		t.Fatalf("CreateOccurrence returned error: %v", err)
	}
	if occurrence.IsPublished {
		t.Fatalf("expected occurrence to wait for its publication time")
	}

	channel := stack.Channel.(*RecordingChannel)
	factory.Clock.Advance(2 * time.Hour)

	if sent := channel.Sent(); len(sent) != 1 {
		t.Fatalf("expected one announcement after advancing, got %d", len(sent))
	}
	stored, err := stack.Storage.Occurrences.GetOccurrence(ctx, occurrence.ID, true)
	if err != nil {
		t.Fatalf("expected published occurrence, got %v", err)
	}
	if stored.MessageHandle == nil || *stored.MessageHandle != "1" {
		t.Fatalf("unexpected message handle: %v", stored.MessageHandle)
	}
}
