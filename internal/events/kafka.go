// Package events exports task lifecycle events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yukikurage/collab-api/internal/realtime"
)

// Record is the payload written for every exported event.
type Record struct {
	Channel    string      `json:"channel"`
	Event      string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurredAt"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaExporter writes events to a single topic keyed by channel, so events
// of one project stay ordered within a partition.
type KafkaExporter struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaExporter(brokers []string, topic string) (*KafkaExporter, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka exporter requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka exporter requires a topic")
	}
	return &KafkaExporter{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		topic: topic,
		now:   time.Now,
	}, nil
}

func (e *KafkaExporter) Publish(ctx context.Context, channel string, evt realtime.Event) error {
	now := e.now().UTC()
	payload, err := json.Marshal(Record{
		Channel:    channel,
		Event:      evt.Name,
		Data:       evt.Data,
		OccurredAt: now,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Name, err)
	}

	return e.writer.WriteMessages(ctx, kafka.Message{
		Topic: e.topic,
		Key:   []byte(channel),
		Value: payload,
		Time:  now,
	})
}

func (e *KafkaExporter) Close() error {
	return e.writer.Close()
}
