package recurrence

import (
	"errors"
	"testing"
	"time"

	"github.com/example/game-announcer/internal/persistence"
)

var moscow = time.FixedZone("MSK", 3*60*60)

func weekday(d time.Weekday) *time.Weekday {
	return &d
}

func mustTime(t *testing.T, value string) TimeOfDay {
	t.Helper()
	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q) failed: %v", value, err)
	}
	return parsed
}

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()

	got, err := ParseTimeOfDay("07:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour != 7 || got.Minute != 5 || got.String() != "07:05" {
		t.Fatalf("unexpected time of day: %#v", got)
	}

	for _, input := range []string{"", "24:00", "7pm", "12:60"} {
		if _, err := ParseTimeOfDay(input); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("expected ErrInvalidTimeOfDay for %q, got %v", input, err)
		}
	}
}

func TestCalculator_Next(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(moscow)
	// Monday.
	reference := time.Date(2024, time.March, 4, 10, 0, 0, 0, moscow)

	t.Run("weekly lands on the next matching weekday", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Kind: persistence.KindWeekly, GameTime: mustTime(t, "19:00"), DayOfWeek: weekday(time.Wednesday)}
		got, ok := calc.Next(rule, reference)
		want := time.Date(2024, time.March, 6, 19, 0, 0, 0, moscow)
		if !ok || !got.Equal(want) {
			t.Fatalf("expected %v, got %v (ok=%v)", want, got, ok)
		}
	})

	t.Run("weekly on the same weekday moves a full week", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Kind: persistence.KindWeekly, GameTime: mustTime(t, "19:00"), DayOfWeek: weekday(time.Monday)}
		got, _ := calc.Next(rule, reference)
		want := time.Date(2024, time.March, 11, 19, 0, 0, 0, moscow)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("weekly and biweekly never return a time at or before the reference", func(t *testing.T) {
		t.Parallel()

		for _, kind := range []persistence.RecurrenceKind{persistence.KindWeekly, persistence.KindBiweekly} {
			for day := time.Sunday; day <= time.Saturday; day++ {
				for offset := 0; offset < 14*24; offset += 5 {
					ref := reference.Add(time.Duration(offset) * time.Hour)
					rule := Rule{Kind: kind, GameTime: mustTime(t, "23:30"), DayOfWeek: weekday(day)}
					got, ok := calc.Next(rule, ref)
					if !ok {
						t.Fatalf("%s/%s: expected a result for %v", kind, day, ref)
					}
					if !got.After(ref) {
						t.Fatalf("%s/%s: %v is not after reference %v", kind, day, got, ref)
					}
					if got.Weekday() != day {
						t.Fatalf("%s/%s: landed on %s", kind, day, got.Weekday())
					}
				}
			}
		}
	})

	t.Run("biweekly skips a full cycle from the same weekday", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Kind: persistence.KindBiweekly, GameTime: mustTime(t, "19:00"), DayOfWeek: weekday(time.Wednesday)}
		previous := time.Date(2024, time.March, 6, 19, 0, 0, 0, moscow)
		got, _ := calc.Next(rule, previous)
		want := time.Date(2024, time.March, 20, 19, 0, 0, 0, moscow)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("biweekly keeps seven days from the previous occurrence", func(t *testing.T) {
		t.Parallel()

		previous := time.Date(2024, time.March, 3, 19, 0, 0, 0, moscow)
		rule := Rule{
			Kind:      persistence.KindBiweekly,
			GameTime:  mustTime(t, "19:00"),
			DayOfWeek: weekday(time.Wednesday),
			Previous:  &previous,
		}
		got, _ := calc.Next(rule, reference)
		if got.Sub(previous) < 7*24*time.Hour {
			t.Fatalf("occurrence %v is closer than seven days to %v", got, previous)
		}
		want := time.Date(2024, time.March, 13, 19, 0, 0, 0, moscow)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("daily moves to the next day at game time", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Kind: persistence.KindDaily, GameTime: mustTime(t, "08:15")}
		got, _ := calc.Next(rule, reference)
		want := time.Date(2024, time.March, 5, 8, 15, 0, 0, moscow)
		if !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("monthly clamps to the last day of a shorter month", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name      string
			reference time.Time
			want      time.Time
		}{
			{
				name:      "leap february",
				reference: time.Date(2024, time.January, 31, 20, 0, 0, 0, moscow),
				want:      time.Date(2024, time.February, 29, 19, 0, 0, 0, moscow),
			},
			{
				name:      "common february",
				reference: time.Date(2025, time.January, 31, 20, 0, 0, 0, moscow),
				want:      time.Date(2025, time.February, 28, 19, 0, 0, 0, moscow),
			},
			{
				name:      "back to a long month",
				reference: time.Date(2024, time.February, 29, 20, 0, 0, 0, moscow),
				want:      time.Date(2024, time.March, 31, 19, 0, 0, 0, moscow),
			},
			{
				name:      "year rollover",
				reference: time.Date(2024, time.December, 31, 20, 0, 0, 0, moscow),
				want:      time.Date(2025, time.January, 31, 19, 0, 0, 0, moscow),
			},
		}

		for _, tc := range cases {
			rule := Rule{
				Kind:     persistence.KindMonthly,
				GameTime: mustTime(t, "19:00"),
				StartsOn: time.Date(2024, time.January, 31, 0, 0, 0, 0, moscow),
			}
			got, ok := calc.Next(rule, tc.reference)
			if !ok || !got.Equal(tc.want) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
			}
		}
	})

	t.Run("once never schedules before the start bound", func(t *testing.T) {
		t.Parallel()

		future := time.Date(2024, time.March, 10, 0, 0, 0, 0, moscow)
		rule := Rule{Kind: persistence.KindOnce, GameTime: mustTime(t, "18:00"), StartsOn: future}
		got, _ := calc.Next(rule, reference)
		if want := time.Date(2024, time.March, 10, 18, 0, 0, 0, moscow); !got.Equal(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}

		rule.StartsOn = time.Date(2024, time.February, 1, 0, 0, 0, 0, moscow)
		got, _ = calc.Next(rule, reference)
		if want := time.Date(2024, time.March, 4, 18, 0, 0, 0, moscow); !got.Equal(want) {
			t.Fatalf("expected anchoring to the reference day %v, got %v", want, got)
		}
	})

	t.Run("ended rules yield nothing", func(t *testing.T) {
		t.Parallel()

		ends := time.Date(2024, time.March, 5, 0, 0, 0, 0, moscow)
		rule := Rule{Kind: persistence.KindWeekly, GameTime: mustTime(t, "19:00"), DayOfWeek: weekday(time.Wednesday), EndsOn: &ends}
		if got, ok := calc.Next(rule, reference); ok {
			t.Fatalf("expected no occurrence, got %v", got)
		}

		ends = time.Date(2024, time.March, 6, 0, 0, 0, 0, moscow)
		if _, ok := calc.Next(rule, reference); !ok {
			t.Fatal("expected the end date itself to be inclusive")
		}
	})

	t.Run("unknown kinds yield nothing", func(t *testing.T) {
		t.Parallel()

		if _, ok := calc.Next(Rule{Kind: "HOURLY"}, reference); ok {
			t.Fatal("expected unknown kind to yield nothing")
		}
		if _, ok := calc.Next(Rule{Kind: persistence.KindWeekly}, reference); ok {
			t.Fatal("expected weekly rule without a weekday to yield nothing")
		}
	})
}

func TestCalculator_First(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(moscow)
	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, moscow)

	cases := []struct {
		name string
		rule Rule
		want time.Time
	}{
		{
			name: "daily later today",
			rule: Rule{Kind: persistence.KindDaily, GameTime: TimeOfDay{Hour: 19}, StartsOn: now},
			want: time.Date(2024, time.March, 4, 19, 0, 0, 0, moscow),
		},
		{
			name: "daily already passed today",
			rule: Rule{Kind: persistence.KindDaily, GameTime: TimeOfDay{Hour: 9}, StartsOn: now},
			want: time.Date(2024, time.March, 5, 9, 0, 0, 0, moscow),
		},
		{
			name: "weekly from a future start",
			rule: Rule{
				Kind:      persistence.KindWeekly,
				GameTime:  TimeOfDay{Hour: 19},
				DayOfWeek: weekday(time.Wednesday),
				StartsOn:  time.Date(2024, time.March, 13, 0, 0, 0, 0, moscow),
			},
			want: time.Date(2024, time.March, 13, 19, 0, 0, 0, moscow),
		},
		{
			name: "biweekly starts at the nearest weekday",
			rule: Rule{
				Kind:      persistence.KindBiweekly,
				GameTime:  TimeOfDay{Hour: 19},
				DayOfWeek: weekday(time.Wednesday),
				StartsOn:  now,
			},
			want: time.Date(2024, time.March, 6, 19, 0, 0, 0, moscow),
		},
		{
			name: "monthly on the start day",
			rule: Rule{
				Kind:     persistence.KindMonthly,
				GameTime: TimeOfDay{Hour: 19},
				StartsOn: time.Date(2024, time.March, 31, 0, 0, 0, 0, moscow),
			},
			want: time.Date(2024, time.March, 31, 19, 0, 0, 0, moscow),
		},
		{
			name: "monthly with a passed start day",
			rule: Rule{
				Kind:     persistence.KindMonthly,
				GameTime: TimeOfDay{Hour: 19},
				StartsOn: time.Date(2024, time.January, 31, 0, 0, 0, 0, moscow),
			},
			want: time.Date(2024, time.March, 31, 19, 0, 0, 0, moscow),
		},
		{
			name: "once in the future",
			rule: Rule{Kind: persistence.KindOnce, GameTime: TimeOfDay{Hour: 20}, StartsOn: time.Date(2024, time.March, 8, 0, 0, 0, 0, moscow)},
			want: time.Date(2024, time.March, 8, 20, 0, 0, 0, moscow),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := calc.First(tc.rule, now)
			if !ok || !got.Equal(tc.want) {
				t.Fatalf("expected %v, got %v (ok=%v)", tc.want, got, ok)
			}
		})
	}

	t.Run("once already passed yields nothing", func(t *testing.T) {
		t.Parallel()

		rule := Rule{Kind: persistence.KindOnce, GameTime: TimeOfDay{Hour: 9}, StartsOn: now}
		if got, ok := calc.First(rule, now); ok {
			t.Fatalf("expected nothing, got %v", got)
		}
	})
}

func TestRuleFromTemplate(t *testing.T) {
	t.Parallel()

	_, err := RuleFromTemplate(persistence.RecurrenceTemplate{Kind: persistence.KindWeekly, GameTime: "19:00"})
	if !errors.Is(err, ErrMissingDayOfWeek) {
		t.Fatalf("expected ErrMissingDayOfWeek, got %v", err)
	}

	_, err = RuleFromTemplate(persistence.RecurrenceTemplate{Kind: "YEARLY", GameTime: "19:00"})
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}

	rule, err := RuleFromTemplate(persistence.RecurrenceTemplate{
		Kind:      persistence.KindBiweekly,
		GameTime:  "19:30",
		DayOfWeek: weekday(time.Friday),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rule.GameTime != (TimeOfDay{Hour: 19, Minute: 30}) || *rule.DayOfWeek != time.Friday {
		t.Fatalf("unexpected rule: %#v", rule)
	}
}

func TestCalculator_DayBounds(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(moscow)
	start, end := calc.DayBounds(time.Date(2024, time.March, 4, 22, 30, 0, 0, time.UTC))
	if want := time.Date(2024, time.March, 5, 0, 0, 0, 0, moscow); !start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, start)
	}
	if !end.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("unexpected end %v", end)
	}
}
