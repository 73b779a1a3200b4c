package producer_test

import (
	"context"
	"errors"
	"testing"

	"go-institute/internal/events"
	"go-institute/internal/messaging/kafka"
	"go-institute/internal/messaging/kafka/mock"
	"go-institute/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type recordingWriter struct {
	messages []kafkago.Message
	failFor  map[string]bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if w.failFor[string(m.Key)] {
			return errors.New("broker unavailable")
		}
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func outboxEvent(id, aggregateID string) kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            id,
		RequestID:     "rid-" + id,
		AggregateType: "request",
		AggregateID:   aggregateID,
		EventType:     events.RequestSubmitted,
		Topic:         events.RequestLifecycleTopic,
		Payload:       []byte(`{"event_id":"` + id + `"}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("success publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &recordingWriter{}

		repo.EXPECT().ListPending(ctx, 25).Return([]kafka.OutboxEvent{outboxEvent("e-1", "r-1"), outboxEvent("e-2", "r-2")}, nil)
		repo.EXPECT().MarkSent(ctx, "e-1").Return(nil)
		repo.EXPECT().MarkSent(ctx, "e-2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, logger, 25)

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		require.Len(t, writer.messages, 2)
		msg := writer.messages[0]
		assert.Equal(t, events.RequestLifecycleTopic, msg.Topic)
		assert.Equal(t, "r-1", string(msg.Key))
		assert.Contains(t, msg.Headers, kafkago.Header{Key: "event_type", Value: []byte(events.RequestSubmitted)})
		assert.Contains(t, msg.Headers, kafkago.Header{Key: "request_id", Value: []byte("rid-e-1")})
	})

	t.Run("negative publish failure marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &recordingWriter{failFor: map[string]bool{"r-1": true}}

		repo.EXPECT().ListPending(ctx, 50).Return([]kafka.OutboxEvent{outboxEvent("e-1", "r-1"), outboxEvent("e-2", "r-2")}, nil)
		repo.EXPECT().MarkFailed(ctx, "e-1", "broker unavailable").Return(nil)
		repo.EXPECT().MarkSent(ctx, "e-2").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, logger, 50)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("negative invalid event is not published", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &recordingWriter{}
		bad := outboxEvent("e-1", "r-1")
		bad.Payload = nil

		repo.EXPECT().ListPending(ctx, 50).Return([]kafka.OutboxEvent{bad}, nil)
		repo.EXPECT().MarkFailed(ctx, "e-1", "outbox payload is required").Return(nil)

		sent, err := producer.ProcessPendingEvents(ctx, repo, writer, logger, 50)

		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, writer.messages)
	})

	t.Run("negative list failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListPending(ctx, 50).Return(nil, errors.New("db down"))

		_, err := producer.ProcessPendingEvents(ctx, repo, &recordingWriter{}, logger, 50)

		assert.EqualError(t, err, "db down")
	})
}

func TestProcessOutboxEvents_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockOutboxRepository(ctrl)
	repo.EXPECT().ListPending(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		producer.ProcessOutboxEvents(ctx, repo, &recordingWriter{}, zap.NewNop(), producer.WorkerConfig{})
		close(done)
	}()
	<-done
}
