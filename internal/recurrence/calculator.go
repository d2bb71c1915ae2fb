package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

// ErrInvalidTimeOfDay indicates a malformed "HH:MM" value.
var ErrInvalidTimeOfDay = errors.New("recurrence: invalid time of day")

// ErrInvalidKind indicates the recurrence kind is not supported.
var ErrInvalidKind = errors.New("recurrence: invalid kind")

// ErrMissingDayOfWeek indicates a weekly or biweekly rule without an anchor weekday.
var ErrMissingDayOfWeek = errors.New("recurrence: weekly rules require a day of week")

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in 24-hour notation.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

// String formats the value as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On combines the calendar date of day with t in loc.
func (t TimeOfDay) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, loc)
}

// Rule is the subset of a recurrence template the calculator needs.
type Rule struct {
	Kind      persistence.RecurrenceKind
	GameTime  TimeOfDay
	DayOfWeek *time.Weekday
	StartsOn  time.Time
	EndsOn    *time.Time
	// Previous is the start of the latest existing occurrence of the same template, if any.
	Previous *time.Time
}

// RuleFromTemplate builds a Rule from a stored template.
func RuleFromTemplate(t persistence.RecurrenceTemplate) (Rule, error) {
	if !t.Kind.Valid() {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidKind, t.Kind)
	}
	if t.Kind.RequiresDayOfWeek() && t.DayOfWeek == nil {
		return Rule{}, ErrMissingDayOfWeek
	}
	gameTime, err := ParseTimeOfDay(t.GameTime)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Kind:      t.Kind,
		GameTime:  gameTime,
		DayOfWeek: t.DayOfWeek,
		StartsOn:  t.StartsOn,
		EndsOn:    t.EndsOn,
	}, nil
}

// Calculator computes occurrence dates for recurrence rules.
type Calculator struct {
	location *time.Location
}

// NewCalculator constructs a Calculator working in loc. If loc is nil, UTC is used.
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{location: loc}
}

// Location returns the calculator's time zone.
func (c *Calculator) Location() *time.Location {
	return c.location
}

// Next returns the occurrence following reference. The boolean is false when the
// rule yields nothing, either because the kind is unknown or the rule has ended.
//
// Every kind except ONCE returns a time strictly after reference. BIWEEKLY never
// lands closer than seven days to rule.Previous.
func (c *Calculator) Next(rule Rule, reference time.Time) (time.Time, bool) {
	loc := c.location
	ref := reference.In(loc)

	var candidate time.Time
	switch rule.Kind {
	case persistence.KindOnce:
		candidate = rule.GameTime.On(ref, loc)
		if !rule.StartsOn.IsZero() {
			if start := rule.GameTime.On(rule.StartsOn, loc); start.After(candidate) {
				candidate = start
			}
		}
	case persistence.KindDaily:
		candidate = rule.GameTime.On(ref.AddDate(0, 0, 1), loc)
	case persistence.KindWeekly:
		if rule.DayOfWeek == nil {
			return time.Time{}, false
		}
		days := int(*rule.DayOfWeek) - int(ref.Weekday())
		if days <= 0 {
			days += 7
		}
		candidate = rule.GameTime.On(ref.AddDate(0, 0, days), loc)
	case persistence.KindBiweekly:
		if rule.DayOfWeek == nil {
			return time.Time{}, false
		}
		days := int(*rule.DayOfWeek) - int(ref.Weekday())
		if days <= 0 {
			days += 14
		}
		candidate = rule.GameTime.On(ref.AddDate(0, 0, days), loc)
		if rule.Previous != nil {
			minimum := rule.Previous.In(loc).AddDate(0, 0, 7)
			for candidate.Before(minimum) {
				candidate = candidate.AddDate(0, 0, 7)
			}
		}
	case persistence.KindMonthly:
		anchor := ref.Day()
		if !rule.StartsOn.IsZero() {
			anchor = rule.StartsOn.In(loc).Day()
		}
		candidate = rule.GameTime.On(monthDay(ref.Year(), ref.Month()+1, anchor, loc), loc)
	default:
		return time.Time{}, false
	}

	if rule.EndsOn != nil && afterDate(candidate, *rule.EndsOn, loc) {
		return time.Time{}, false
	}
	return candidate, true
}

// First returns the first occurrence of a freshly authored rule: on or after
// StartsOn and strictly after now.
func (c *Calculator) First(rule Rule, now time.Time) (time.Time, bool) {
	loc := c.location
	now = now.In(loc)

	if rule.Kind == persistence.KindOnce {
		candidate, ok := c.Next(rule, now)
		if !ok || !candidate.After(now) {
			return time.Time{}, false
		}
		return candidate, true
	}

	// Searching from the previous day lets the first day itself qualify.
	from := now
	if start := rule.StartsOn.In(loc); start.After(from) {
		from = start
	}
	reference := rule.GameTime.On(from.AddDate(0, 0, -1), loc)

	if rule.Kind == persistence.KindMonthly {
		return c.firstMonthly(rule, now)
	}
	if rule.Kind == persistence.KindBiweekly && rule.DayOfWeek != nil {
		// The first biweekly game is the nearest matching weekday; the 14-day
		// step only applies between consecutive games.
		weekly := rule
		weekly.Kind = persistence.KindWeekly
		candidate, ok := c.Next(weekly, reference)
		for ok && !candidate.After(now) {
			candidate, ok = c.Next(weekly, candidate)
		}
		if ok && rule.EndsOn != nil && afterDate(candidate, *rule.EndsOn, loc) {
			return time.Time{}, false
		}
		return candidate, ok
	}

	candidate, ok := c.Next(rule, reference)
	for ok && !candidate.After(now) {
		candidate, ok = c.Next(rule, candidate)
	}
	return candidate, ok
}

func (c *Calculator) firstMonthly(rule Rule, now time.Time) (time.Time, bool) {
	loc := c.location
	start := rule.StartsOn.In(loc)
	if rule.StartsOn.IsZero() {
		start = now
	}
	anchor := start.Day()

	candidate := rule.GameTime.On(start, loc)
	for months := 1; !candidate.After(now); months++ {
		candidate = rule.GameTime.On(monthDay(start.Year(), start.Month()+time.Month(months), anchor, loc), loc)
	}
	if rule.EndsOn != nil && afterDate(candidate, *rule.EndsOn, loc) {
		return time.Time{}, false
	}
	return candidate, true
}

// monthDay returns the given day of the month, clamped to the month's last day.
// month may overflow past December.
func monthDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}

// afterDate reports whether t falls on a calendar date later than bound's date.
func afterDate(t, bound time.Time, loc *time.Location) bool {
	ty, tm, td := t.In(loc).Date()
	by, bm, bd := bound.In(loc).Date()
	return time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).After(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}

// DayBounds returns the half-open range [start of day, start of next day) containing t.
func (c *Calculator) DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(c.location).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, c.location)
	return start, start.AddDate(0, 0, 1)
}
