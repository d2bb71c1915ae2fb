package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/recurrence"
)

var msk = time.FixedZone("MSK", 3*60*60)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeTimers struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (f *fakeTimers) newTimer(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: fn}
	f.timers = append(f.timers, timer)
	return timer
}

// fireAll runs every timer callback, including stopped ones, to mimic a
// timer that raced with Stop.
func (f *fakeTimers) fireAll() {
	f.mu.Lock()
	timers := slices.Clone(f.timers)
	f.mu.Unlock()
	for _, timer := range timers {
		timer.fn()
	}
}

type publishRecorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (p *publishRecorder) publish(_ context.Context, occurrenceID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, occurrenceID)
	return p.err
}

func (p *publishRecorder) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type stubLister struct {
	occurrences []persistence.Occurrence
	err         error
	after       time.Time
}

func (s *stubLister) ListScheduledUnpublished(_ context.Context, after time.Time) ([]persistence.Occurrence, error) {
	s.after = after
	return s.occurrences, s.err
}

func TestComputePublicationTime(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 6, 19, 0, 0, 0, msk)
	got := ComputePublicationTime(start, 1, recurrence.TimeOfDay{Hour: 12})
	want := time.Date(2024, time.March, 5, 12, 0, 0, 0, msk)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = ComputePublicationTime(start, 0, recurrence.TimeOfDay{Hour: 9, Minute: 30})
	if want := time.Date(2024, time.March, 6, 9, 30, 0, 0, msk); !got.Equal(want) {
		t.Fatalf("expected same-day publication %v, got %v", want, got)
	}
}

func TestWeeklyTemplateEndToEnd(t *testing.T) {
	t.Parallel()

	wednesday := time.Wednesday
	calc := recurrence.NewCalculator(msk)
	monday := time.Date(2024, time.March, 4, 10, 0, 0, 0, msk)

	rule := recurrence.Rule{
		Kind:      persistence.KindWeekly,
		GameTime:  recurrence.TimeOfDay{Hour: 19},
		DayOfWeek: &wednesday,
	}
	start, ok := calc.Next(rule, monday)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := time.Date(2024, time.March, 6, 19, 0, 0, 0, msk); !start.Equal(want) {
		t.Fatalf("expected Wednesday 19:00, got %v", start)
	}

	publishAt := ComputePublicationTime(start, 1, recurrence.TimeOfDay{Hour: 12})
	if want := time.Date(2024, time.March, 5, 12, 0, 0, 0, msk); !publishAt.Equal(want) {
		t.Fatalf("expected Tuesday 12:00, got %v", publishAt)
	}
}

func TestTimerExecutor(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, msk)
	clock := func() time.Time { return now }

	t.Run("replacing a key fires exactly once at the new time", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()

		var fired []string
		if err := executor.SubmitOnce("publish:1", now.Add(time.Hour), func(context.Context) { fired = append(fired, "first") }); err != nil {
			t.Fatalf("SubmitOnce failed: %v", err)
		}
		if err := executor.SubmitOnce("publish:1", now.Add(3*time.Hour), func(context.Context) { fired = append(fired, "second") }); err != nil {
			t.Fatalf("SubmitOnce failed: %v", err)
		}

		if len(timers.timers) != 2 || !timers.timers[0].stopped {
			t.Fatalf("expected the first timer to be stopped: %#v", timers.timers)
		}
		if timers.timers[1].delay != 3*time.Hour {
			t.Fatalf("expected new delay of 3h, got %v", timers.timers[1].delay)
		}

		timers.fireAll()
		if !slices.Equal(fired, []string{"second"}) {
			t.Fatalf("expected only the replacement to fire, got %v", fired)
		}
		if pending := executor.Pending(); len(pending) != 0 {
			t.Fatalf("expected no pending jobs, got %v", pending)
		}
	})

	t.Run("past fire times run without delay", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()

		_ = executor.SubmitOnce("publish:2", now.Add(-time.Minute), func(context.Context) {})
		if timers.timers[0].delay != 0 {
			t.Fatalf("expected zero delay, got %v", timers.timers[0].delay)
		}
	})

	t.Run("cancel and pending", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()

		_ = executor.SubmitOnce("publish:b", now.Add(time.Hour), func(context.Context) {})
		_ = executor.SubmitOnce("publish:a", now.Add(time.Hour), func(context.Context) {})
		if got := executor.Pending(); !slices.Equal(got, []string{"publish:a", "publish:b"}) {
			t.Fatalf("unexpected pending keys: %v", got)
		}
		if !executor.Cancel("publish:a") {
			t.Fatal("expected Cancel to report an existing job")
		}
		if executor.Cancel("publish:a") {
			t.Fatal("expected second Cancel to report nothing")
		}
		if got := executor.Pending(); !slices.Equal(got, []string{"publish:b"}) {
			t.Fatalf("unexpected pending keys after cancel: %v", got)
		}
	})

	t.Run("stop rejects new jobs and drops pending ones", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)

		ran := false
		_ = executor.SubmitOnce("publish:3", now.Add(time.Hour), func(context.Context) { ran = true })
		executor.Stop()
		executor.Stop()

		timers.fireAll()
		if ran {
			t.Fatal("expected stopped executor not to run jobs")
		}
		err := executor.SubmitOnce("publish:4", now.Add(time.Hour), func(context.Context) {})
		if !errors.Is(err, ErrExecutorStopped) {
			t.Fatalf("expected ErrExecutorStopped, got %v", err)
		}
	})

	t.Run("real timers fire", func(t *testing.T) {
		t.Parallel()

		executor := NewTimerExecutor()
		defer executor.Stop()

		done := make(chan struct{})
		if err := executor.SubmitOnce("publish:real", time.Now().Add(10*time.Millisecond), func(context.Context) { close(done) }); err != nil {
			t.Fatalf("SubmitOnce failed: %v", err)
		}
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not fire")
		}
	})
}

func TestScheduler_Schedule(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, msk)
	clock := func() time.Time { return now }

	t.Run("past publication time publishes synchronously", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()
		recorder := &publishRecorder{}
		s := NewScheduler(executor, &stubLister{}, recorder.publish, clock, nil)

		if !s.Schedule(context.Background(), "occ-1", now.Add(-time.Hour)) {
			t.Fatal("expected success")
		}
		if recorder.count() != 1 || len(timers.timers) != 0 {
			t.Fatalf("expected one immediate publish and no timers, got %d publishes and %d timers", recorder.count(), len(timers.timers))
		}
	})

	t.Run("immediate failure is reported as false", func(t *testing.T) {
		t.Parallel()

		executor := NewTimerExecutorWithClock(clock, (&fakeTimers{}).newTimer)
		defer executor.Stop()
		recorder := &publishRecorder{err: errors.New("channel down")}
		s := NewScheduler(executor, &stubLister{}, recorder.publish, clock, nil)

		if s.Schedule(context.Background(), "occ-1", now) {
			t.Fatal("expected failure to be reported")
		}
	})

	t.Run("rescheduling fires once at the new time", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()
		recorder := &publishRecorder{}
		s := NewScheduler(executor, &stubLister{}, recorder.publish, clock, nil)

		s.Schedule(context.Background(), "occ-1", now.Add(time.Hour))
		s.Schedule(context.Background(), "occ-1", now.Add(5*time.Hour))

		if got := executor.Pending(); !slices.Equal(got, []string{JobKey("occ-1")}) {
			t.Fatalf("expected a single pending key, got %v", got)
		}
		timers.fireAll()
		if recorder.count() != 1 {
			t.Fatalf("expected exactly one firing, got %d", recorder.count())
		}
		if timers.timers[len(timers.timers)-1].delay != 5*time.Hour {
			t.Fatal("expected the surviving job to use the new time")
		}
	})

	t.Run("executor rejection is reported as false", func(t *testing.T) {
		t.Parallel()

		executor := NewTimerExecutorWithClock(clock, (&fakeTimers{}).newTimer)
		executor.Stop()
		s := NewScheduler(executor, &stubLister{}, (&publishRecorder{}).publish, clock, nil)

		if s.Schedule(context.Background(), "occ-1", now.Add(time.Hour)) {
			t.Fatal("expected rejection to be reported")
		}
	})
}

func TestScheduler_Recover(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, msk)
	clock := func() time.Time { return now }
	later := now.Add(2 * time.Hour)

	t.Run("re-enqueues scheduled occurrences", func(t *testing.T) {
		t.Parallel()

		timers := &fakeTimers{}
		executor := NewTimerExecutorWithClock(clock, timers.newTimer)
		defer executor.Stop()
		lister := &stubLister{occurrences: []persistence.Occurrence{
			{ID: "occ-1", PublishAt: &later},
			{ID: "occ-2", PublishAt: &later},
			{ID: "occ-3"},
		}}
		s := NewScheduler(executor, lister, (&publishRecorder{}).publish, clock, nil)

		count, err := s.Recover(context.Background())
		if err != nil {
			t.Fatalf("Recover failed: %v", err)
		}
		if count != 2 {
			t.Fatalf("expected 2 scheduled, got %d", count)
		}
		if !lister.after.Equal(now) {
			t.Fatalf("expected lookup relative to now, got %v", lister.after)
		}
		if got := executor.Pending(); !slices.Equal(got, []string{"publish:occ-1", "publish:occ-2"}) {
			t.Fatalf("unexpected pending keys: %v", got)
		}
	})

	t.Run("propagates lookup failures", func(t *testing.T) {
		t.Parallel()

		executor := NewTimerExecutorWithClock(clock, (&fakeTimers{}).newTimer)
		defer executor.Stop()
		lister := &stubLister{err: errors.New("disk on fire")}
		s := NewScheduler(executor, lister, (&publishRecorder{}).publish, clock, nil)

		if _, err := s.Recover(context.Background()); err == nil {
			t.Fatal("expected an error")
		}
	})
}
