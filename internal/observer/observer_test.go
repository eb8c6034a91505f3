package observer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

type mockSource struct {
	pos *geo.Position
	err error
}

func (m *mockSource) Current(_ context.Context) (*geo.Position, error) {
	return m.pos, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsValidPosition(t *testing.T) {
	tests := []struct {
		name string
		pos  geo.Position
		want bool
	}{
		{"typical", geo.Position{Latitude: 45, Longitude: 90}, true},
		{"extremes", geo.Position{Latitude: 90, Longitude: 180}, true},
		{"latitude out of range", geo.Position{Latitude: 91, Longitude: 0}, false},
		{"longitude out of range", geo.Position{Latitude: 0, Longitude: -180.5}, false},
		{"nan latitude", geo.Position{Latitude: math.NaN(), Longitude: 0}, false},
		{"infinite longitude", geo.Position{Latitude: 0, Longitude: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPosition(tt.pos))
		})
	}
}

func TestDistance(t *testing.T) {
	valid := geo.Position{Latitude: 48.85, Longitude: 2.35}
	other := geo.Position{Latitude: 51.5, Longitude: -0.13}
	invalid := geo.Position{Latitude: 200, Longitude: 0}

	assert.Equal(t, 0.0, Distance(valid, valid))
	assert.Greater(t, Distance(valid, other), 0.0)

	assert.True(t, math.IsInf(Distance(invalid, valid), 1))
	assert.True(t, math.IsInf(Distance(valid, invalid), 1))
	assert.True(t, math.IsInf(Distance(invalid, invalid), 1))
}

func TestObserver_Current(t *testing.T) {
	pos := &geo.Position{Latitude: 1, Longitude: 2}

	o := New(&mockSource{pos: pos}, discardLogger())
	got := o.Current(context.Background())
	assert.Equal(t, pos, got)

	o = New(&mockSource{err: errors.New("gps off")}, discardLogger())
	assert.Nil(t, o.Current(context.Background()))

	o = New(&mockSource{pos: &geo.Position{Latitude: 999, Longitude: 0}}, discardLogger())
	assert.Nil(t, o.Current(context.Background()))

	o = New(&mockSource{}, discardLogger())
	assert.Nil(t, o.Current(context.Background()))

	o = New(nil, discardLogger())
	assert.Nil(t, o.Current(context.Background()))
}

func TestObserver_Lifecycle(t *testing.T) {
	o := New(NewStatic(geo.Position{Latitude: 1, Longitude: 1}), discardLogger())

	assert.False(t, o.IsObserving())
	o.StartObservation()
	assert.True(t, o.IsObserving())
	o.StartObservation() // idempotent
	assert.True(t, o.IsObserving())
	o.StopObservation()
	assert.False(t, o.IsObserving())
}

func TestStaticSource(t *testing.T) {
	s := NewStatic(geo.Position{Latitude: 10, Longitude: 20})
	pos, err := s.Current(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, &geo.Position{Latitude: 10, Longitude: 20}, pos)

	s = NewStatic(geo.Position{Latitude: 100, Longitude: 20})
	pos, err = s.Current(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, pos)
}
