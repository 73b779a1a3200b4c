package audit

import (
	"context"
	"time"

	"go-institute/internal/events"
	"go-institute/internal/shared/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=audit_service.go -destination=mock/audit_service_mock.go -package=mock
type Service interface {
	// Record persists a lifecycle event once. Redelivered events report
	// false and no error.
	Record(ctx context.Context, event events.RequestLifecycleEvent) (bool, error)
	History(ctx context.Context, requestID string) ([]EntryResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Record(ctx context.Context, event events.RequestLifecycleEvent) (bool, error) {
	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return false, apperror.InvalidField("event_id")
	}
	requestID, err := uuid.Parse(event.RequestID)
	if err != nil {
		return false, apperror.InvalidField("request_id")
	}
	actorID, err := uuid.Parse(event.ActorID)
	if err != nil {
		return false, apperror.InvalidField("actor_id")
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	written, err := s.repo.Insert(ctx, &Entry{
		ID:         uuid.New(),
		EventID:    eventID,
		RequestID:  requestID,
		BranchID:   event.BranchID,
		Action:     event.EventType,
		ActorID:    actorID,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Reason:     event.Reason,
		OccurredAt: occurredAt,
	})
	if err != nil {
		s.logger.Error("record audit entry failed",
			zap.String("event_id", event.EventID),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return false, err
	}
	if !written {
		s.logger.Debug("audit entry already recorded", zap.String("event_id", event.EventID))
	}
	return written, nil
}

func (s *service) History(ctx context.Context, requestID string) ([]EntryResponse, error) {
	entries, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("list audit entries failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, err
	}

	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = EntryResponse{
			EventID:    e.EventID.String(),
			RequestID:  e.RequestID.String(),
			Action:     e.Action,
			ActorID:    e.ActorID.String(),
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Reason:     e.Reason,
			OccurredAt: e.OccurredAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}
