package audio

import (
	"context"
	"fmt"
	"time"

	"chanf/emu/log"
)

//go:generate go tool stringer -type=State

// State of the Scheduler.
type State uint8

const (
	Idle       State = iota // nothing scheduled yet
	Steady                  // previous and current buffers chained
	Recovering              // last wait timed out, resynchronizing
)

type playback struct {
	at   time.Duration
	done <-chan struct{}
}

// Scheduler chains sample buffers on a Device at absolute deadlines, one per
// refresh interval, and paces the caller on buffer completion.
type Scheduler struct {
	dev    Device
	period time.Duration

	start      time.Duration // device time of refresh 0
	count      int64         // refreshes since start
	cur, prev  *playback
	restarting bool

	underruns int
	after     func(time.Duration) <-chan time.Time
}

// NewScheduler creates a scheduler submitting refreshRate buffers per second
// to dev.
func NewScheduler(dev Device, refreshRate int) *Scheduler {
	return &Scheduler{
		dev:    dev,
		period: time.Second / time.Duration(refreshRate),
		start:  dev.Now(),
		after:  time.After,
	}
}

func (s *Scheduler) State() State {
	switch {
	case s.restarting:
		return Recovering
	case s.cur == nil && s.prev == nil:
		return Idle
	}
	return Steady
}

// Count returns the number of refreshes since the last synchronization.
func (s *Scheduler) Count() int64 { return s.count }

// Underruns returns the number of completion timeouts so far.
func (s *Scheduler) Underruns() int { return s.underruns }

// Timeout is how long Submit waits for the previous buffer to complete.
func (s *Scheduler) Timeout() time.Duration { return 2 * s.period }

// Submit schedules buf, handing its ownership to the device, then waits for
// the previous buffer to complete. If that takes more than two refresh
// periods, the scheduler gives up waiting and resynchronizes on the device
// clock. Submit only returns an error if buf can't be scheduled or ctx is
// done.
func (s *Scheduler) Submit(ctx context.Context, buf Buffer) error {
	at := s.start + time.Duration(s.count)*s.period
	done, err := s.dev.Schedule(buf, at)
	if err != nil {
		return fmt.Errorf("failed to schedule audio buffer: %w", err)
	}
	next := &playback{at: at, done: done}

	if s.restarting {
		s.count++
		s.cur = next
		s.restarting = false
		return nil
	}

	if s.prev == nil {
		// Nothing has been waited on yet.
		s.count++
		s.prev, s.cur = s.cur, next
		return nil
	}

	select {
	case <-s.prev.done:
		s.count++
		s.prev, s.cur = s.cur, next
	case <-s.after(s.Timeout()):
		s.underruns++
		log.ModSound.DebugZ("audio completion timed out, resynchronizing").
			Duration("deadline", s.prev.at).
			Duration("now", s.dev.Now()).
			Int("underruns", s.underruns).
			End()

		s.restarting = true
		s.count = 0
		s.start = s.dev.Now() + s.period
		s.prev = next
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
