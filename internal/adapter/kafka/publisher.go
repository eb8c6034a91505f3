// Package kafka publishes wave snapshots to a Kafka topic as GeoJSON.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/worldwidewaves/wave-engine/internal/geo"
)

const (
	kindUpdate = "update"
	kindAdd    = "add"

	defaultWriteTimeout = 10 * time.Second
)

// Publisher produces wave snapshot messages to a Kafka topic.
// It implements sampler.Renderer; since that interface carries no error
// return, publish failures are logged and the snapshot is dropped.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	timeout time.Duration
}

// NewPublisher creates a Kafka producer for the snapshot topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, timeout: defaultWriteTimeout}
}

// UpdateWavePolygons publishes a full replacement of the traversed set.
func (p *Publisher) UpdateWavePolygons(polys []geo.Polygon, refresh bool) {
	p.publish(kindUpdate, polys, refresh, false)
}

// AddWavePolygons publishes appended polygons; isDone marks the terminal
// snapshot.
func (p *Publisher) AddWavePolygons(polys []geo.Polygon, isDone bool) {
	p.publish(kindAdd, polys, false, isDone)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) publish(kind string, polys []geo.Polygon, refresh, isDone bool) {
	msg, err := buildMessage(kind, polys, refresh, isDone, time.Now().UTC())
	if err != nil {
		p.logger.Error("serialize wave snapshot", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish wave snapshot", "kind", kind, "error", err)
		return
	}
	p.logger.Debug("wave snapshot published", "kind", kind, "polygons", len(polys))
}

// buildMessage marshals a snapshot into a Kafka message with a GeoJSON
// FeatureCollection payload.
func buildMessage(kind string, polys []geo.Polygon, refresh, isDone bool, emittedAt time.Time) (kafkago.Message, error) {
	doc, err := geo.MarshalFeatureCollection(polys, map[string]any{
		"emitted_at": emittedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(kind),
		Value: doc,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(kind)},
			{Key: "refresh", Value: []byte(strconv.FormatBool(refresh))},
			{Key: "is_done", Value: []byte(strconv.FormatBool(isDone))},
		},
	}, nil
}
