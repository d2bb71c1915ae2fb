package testfixtures

import (
	"testing"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

func TestOccurrenceFixturePersistenceCopiesPointers(t *testing.T) {
	fixture := NewOccurrenceFixture(WithOccurrencePublished("7"), WithOccurrenceTemplate("template-x"))
	o := fixture.Persistence()

	*o.MessageHandle = "changed"
	*o.TemplateID = "changed"
	if *fixture.MessageHandle != "7" || *fixture.TemplateID != "template-x" {
		t.Fatalf("expected fixture pointers to be independent of the persisted copy")
	}
	if !o.IsPublished || !o.IsActive {
		t.Fatalf("expected an active published occurrence, got %+v", o)
	}
}

func TestTemplateFixtureKindClearsDayOfWeek(t *testing.T) {
	weekly := NewTemplateFixture()
	if weekly.DayOfWeek == nil || *weekly.DayOfWeek != time.Wednesday {
		t.Fatalf("expected default Wednesday anchor")
	}

	daily := NewTemplateFixture(WithTemplateKind(persistence.KindDaily))
	if daily.DayOfWeek != nil {
		t.Fatalf("expected daily template without weekday")
	}
	if input := daily.Input(); input.Kind != "DAILY" || input.DayOfWeek != nil {
		t.Fatalf("unexpected input: %+v", input)
	}
}

func TestParticipantFixtureDefaults(t *testing.T) {
	first := NewParticipantFixture()
	second := NewParticipantFixture(WithParticipantIncomplete())

	if first.ID == second.ID || first.Nickname == second.Nickname {
		t.Fatalf("expected unique identities, got %q/%q and %q/%q", first.ID, first.Nickname, second.ID, second.Nickname)
	}
	if !first.RegistrationComplete || second.RegistrationComplete {
		t.Fatalf("unexpected registration flags")
	}
}
