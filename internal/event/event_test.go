package event

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestScheduled_StatusTransitions(t *testing.T) {
	clock := clockwork.NewFakeClock()
	start := clock.Now().Add(time.Minute)
	e := NewScheduled(start, 10*time.Minute, clock)

	assert.Equal(t, StatusSoon, e.Status())
	assert.False(t, e.IsRunning())
	assert.False(t, e.IsDone())

	clock.Advance(time.Minute)
	assert.Equal(t, StatusRunning, e.Status())
	assert.True(t, e.IsRunning())

	clock.Advance(10*time.Minute - time.Second)
	assert.True(t, e.IsRunning())

	clock.Advance(time.Second)
	assert.Equal(t, StatusDone, e.Status())
	assert.True(t, e.IsDone())
	assert.False(t, e.IsRunning())
}

func TestScheduled_UndefinedWithoutStart(t *testing.T) {
	e := NewScheduled(time.Time{}, time.Hour, clockwork.NewFakeClock())
	assert.Equal(t, StatusUndefined, e.Status())
}

func TestScheduled_StartTime(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	e := NewScheduled(start, time.Hour, clockwork.NewFakeClock())
	assert.Equal(t, start, e.StartTime())
}
