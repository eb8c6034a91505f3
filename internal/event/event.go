// Package event models the lifecycle of a scheduled wave event.
package event

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Status is the lifecycle state of an event.
type Status int

const (
	StatusUndefined Status = iota
	StatusSoon
	StatusRunning
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusSoon:
		return "soon"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	default:
		return "undefined"
	}
}

// Scheduled is an event that runs from a start instant for a fixed
// duration, with status derived from the injected clock.
type Scheduled struct {
	start    time.Time
	duration time.Duration
	clock    clockwork.Clock
}

// NewScheduled creates an event running in [start, start+duration).
func NewScheduled(start time.Time, duration time.Duration, clock clockwork.Clock) *Scheduled {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduled{start: start, duration: duration, clock: clock}
}

// Status returns the current lifecycle state.
func (e *Scheduled) Status() Status {
	if e.start.IsZero() {
		return StatusUndefined
	}
	now := e.clock.Now()
	switch {
	case now.Before(e.start):
		return StatusSoon
	case now.Before(e.start.Add(e.duration)):
		return StatusRunning
	default:
		return StatusDone
	}
}

// IsRunning reports whether the event is in its running window.
func (e *Scheduled) IsRunning() bool { return e.Status() == StatusRunning }

// IsDone reports whether the event has finished.
func (e *Scheduled) IsDone() bool { return e.Status() == StatusDone }

// StartTime returns the instant the event begins.
func (e *Scheduled) StartTime() time.Time { return e.start }
