package consumer

import (
	"context"
	"encoding/json"

	"go-institute/internal/events"
	"go-institute/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Recorder persists one lifecycle event. It reports false for an event it
// has already stored.
type Recorder interface {
	Record(ctx context.Context, event events.RequestLifecycleEvent) (bool, error)
}

// ConsumeRequestLifecycle writes request workflow events into the audit
// trail. Undecodable or invalid events are committed and skipped; store
// failures leave the message uncommitted.
func ConsumeRequestLifecycle(
	ctx context.Context,
	reader MessageReader,
	recorder Recorder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_lifecycle")
	log.Info("request lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request lifecycle consumer stopped")
				return
			}
			log.Error("fetch request lifecycle message failed", zap.Error(err))
			continue
		}

		handleMessage(ctx, reader, recorder, log, msg)
	}
}

func handleMessage(ctx context.Context, reader MessageReader, recorder Recorder, log *zap.Logger, msg kafkago.Message) {
	var event events.RequestLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode request lifecycle event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	written, err := recorder.Record(ctx, event)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeValidation) {
			log.Warn("request lifecycle event rejected, skipping",
				zap.String("event_id", event.EventID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			return
		}

		log.Error("record request lifecycle event failed",
			zap.String("event_id", event.EventID),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit request lifecycle message failed", zap.Error(err))
		return
	}

	if !written {
		log.Warn("request lifecycle event already recorded, skipping",
			zap.String("event_id", event.EventID),
		)
		return
	}

	log.Info("request lifecycle event recorded",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.String("request_id", event.RequestID),
		zap.String("correlation_id", event.CorrelationID),
	)
}
