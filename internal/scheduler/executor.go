package scheduler

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrExecutorStopped is returned when a job is submitted after Stop.
var ErrExecutorStopped = errors.New("scheduler: executor stopped")

// Job is the work run when a deferred entry fires.
type Job func(ctx context.Context)

// Executor runs one-shot jobs at a point in time. Submitting under an existing
// key replaces the pending job, so at most one job per key ever fires.
type Executor interface {
	SubmitOnce(key string, fireAt time.Time, job Job) error
	Cancel(key string) bool
	Pending() []string
	Stop()
}

// Timer is the handle returned by a TimerFunc.
type Timer interface {
	Stop() bool
}

// TimerFunc arranges for f to run after d. time.AfterFunc satisfies it.
type TimerFunc func(d time.Duration, f func()) Timer

func realTimer(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerEntry struct {
	generation uint64
	timer      Timer
}

// TimerExecutor is an in-process Executor backed by timers.
type TimerExecutor struct {
	mu         sync.Mutex
	entries    map[string]timerEntry
	generation uint64
	stopped    bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now      func() time.Time
	newTimer TimerFunc
}

// NewTimerExecutor constructs an executor using wall-clock timers.
func NewTimerExecutor() *TimerExecutor {
	return NewTimerExecutorWithClock(time.Now, realTimer)
}

// NewTimerExecutorWithClock constructs an executor with an injected clock and timer source.
func NewTimerExecutorWithClock(now func() time.Time, newTimer TimerFunc) *TimerExecutor {
	if now == nil {
		now = time.Now
	}
	if newTimer == nil {
		newTimer = realTimer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerExecutor{
		entries:  make(map[string]timerEntry),
		ctx:      ctx,
		cancel:   cancel,
		now:      now,
		newTimer: newTimer,
	}
}

// SubmitOnce schedules job under key, replacing any job already pending for it.
func (e *TimerExecutor) SubmitOnce(key string, fireAt time.Time, job Job) error {
	if job == nil {
		return errors.New("scheduler: job must not be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return ErrExecutorStopped
	}
	if existing, ok := e.entries[key]; ok {
		existing.timer.Stop()
	}

	e.generation++
	generation := e.generation
	delay := fireAt.Sub(e.now())
	if delay < 0 {
		delay = 0
	}

	timer := e.newTimer(delay, func() { e.fire(key, generation, job) })
	e.entries[key] = timerEntry{generation: generation, timer: timer}
	return nil
}

func (e *TimerExecutor) fire(key string, generation uint64, job Job) {
	e.mu.Lock()
	entry, ok := e.entries[key]
	if e.stopped || !ok || entry.generation != generation {
		e.mu.Unlock()
		return
	}
	delete(e.entries, key)
	e.wg.Add(1)
	e.mu.Unlock()

	defer e.wg.Done()
	job(e.ctx)
}

// Cancel drops the job pending under key and reports whether one existed.
func (e *TimerExecutor) Cancel(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(e.entries, key)
	return true
}

// Pending lists the keys with a job waiting to fire, sorted.
func (e *TimerExecutor) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]string, 0, len(e.entries))
	for key := range e.entries {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Stop cancels all pending jobs and waits for running ones to return.
func (e *TimerExecutor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	for key, entry := range e.entries {
		entry.timer.Stop()
		delete(e.entries, key)
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}
