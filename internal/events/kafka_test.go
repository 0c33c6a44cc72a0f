package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/collab-api/internal/realtime"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewKafkaExporter_Validation(t *testing.T) {
	_, err := NewKafkaExporter(nil, "task-events")
	assert.Error(t, err)

	_, err = NewKafkaExporter([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	exp, err := NewKafkaExporter([]string{"localhost:9092"}, "task-events")
	require.NoError(t, err)
	assert.NoError(t, exp.Close())
}

func TestKafkaExporter_Publish(t *testing.T) {
	w := &recordingWriter{}
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	exp := &KafkaExporter{writer: w, topic: "task-events", now: func() time.Time { return fixed }}

	err := exp.Publish(context.Background(), "project-P1", realtime.Event{
		Name: "task-updated",
		Data: map[string]string{"id": "T1", "status": "completed"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "task-events", msg.Topic)
	assert.Equal(t, []byte("project-P1"), msg.Key)
	assert.Equal(t, fixed, msg.Time)

	var rec struct {
		Channel    string            `json:"channel"`
		Event      string            `json:"event"`
		Data       map[string]string `json:"data"`
		OccurredAt time.Time         `json:"occurredAt"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &rec))
	assert.Equal(t, "project-P1", rec.Channel)
	assert.Equal(t, "task-updated", rec.Event)
	assert.Equal(t, "completed", rec.Data["status"])
	assert.True(t, fixed.Equal(rec.OccurredAt))
}

func TestKafkaExporter_PropagatesWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	exp := &KafkaExporter{writer: w, topic: "task-events", now: time.Now}

	err := exp.Publish(context.Background(), "project-P1", realtime.Event{Name: "task-created"})
	assert.EqualError(t, err, "broker down")

	require.NoError(t, exp.Close())
	assert.True(t, w.closed)
}
