package persistence

import "time"

// RecurrenceKind enumerates how a template spawns occurrences.
type RecurrenceKind string

const (
	KindOnce     RecurrenceKind = "ONCE"
	KindDaily    RecurrenceKind = "DAILY"
	KindWeekly   RecurrenceKind = "WEEKLY"
	KindBiweekly RecurrenceKind = "BIWEEKLY"
	KindMonthly  RecurrenceKind = "MONTHLY"
)

// RequiresDayOfWeek reports whether the kind is anchored on a weekday.
func (k RecurrenceKind) RequiresDayOfWeek() bool {
	return k == KindWeekly || k == KindBiweekly
}

// Valid reports whether k is one of the known kinds.
func (k RecurrenceKind) Valid() bool {
	switch k {
	case KindOnce, KindDaily, KindWeekly, KindBiweekly, KindMonthly:
		return true
	}
	return false
}

// Occurrence is a single scheduled game.
type Occurrence struct {
	ID            string
	Title         string
	Description   string
	StartsAt      time.Time
	Location      string
	Capacity      int
	CreatedBy     string
	TemplateID    *string
	Host          string
	TemplateKey   string
	CustomText    *string
	IsActive      bool
	PublishAt     *time.Time
	IsPublished   bool
	MessageHandle *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecurrenceTemplate is the rule an admin authors to spawn occurrences on a cadence.
// GameTime and AnnouncementTime are stored as "HH:MM".
type RecurrenceTemplate struct {
	ID                    string
	Title                 string
	Description           string
	Location              string
	Capacity              int
	Kind                  RecurrenceKind
	GameTime              string
	AnnouncementTime      string
	AnnouncementDayOffset int
	DayOfWeek             *time.Weekday
	StartsOn              time.Time
	EndsOn                *time.Time
	Host                  string
	TemplateKey           string
	CustomText            *string
	CreatedBy             string
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Registration links a participant to an occurrence.
type Registration struct {
	ID            string
	OccurrenceID  string
	ParticipantID string
	IsReserve     bool
	RegisteredAt  time.Time
}

// RosterEntry is a registration joined with the participant's nickname.
// Nickname is empty when the participant record cannot be resolved.
type RosterEntry struct {
	Registration
	Nickname string
}

// ParticipantCounts summarises the participant table.
type ParticipantCounts struct {
	Total      int
	Registered int
}

// Participant is a player known to the bot.
type Participant struct {
	ID                   string
	DisplayName          string
	Nickname             string
	Bio                  *string
	PhotoRef             *string
	RegistrationComplete bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
