package notification

import (
	"context"
	"errors"
	"time"

	"go-institute/internal/access"
	"go-institute/internal/audit"
	"go-institute/internal/domain"
	notificationerrors "go-institute/internal/notification/errors"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	Send(ctx context.Context, actor domain.Actor, req SendRequest) (NotificationResponse, error)
	ListForAccount(ctx context.Context, actor domain.Actor) ([]NotificationResponse, error)
	IsFor(ctx context.Context, actor domain.Actor, id string) (bool, error)
	MarkRead(ctx context.Context, actor domain.Actor, id string) error
	UnreadCount(ctx context.Context, actor domain.Actor) (int64, error)
}

type service struct {
	repo   Repository
	guard  access.Authorizer
	audit  audit.Logger
	logger *zap.Logger
}

func NewService(repo Repository, guard access.Authorizer, auditLogger audit.Logger, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &service{repo: repo, guard: guard, audit: auditLogger, logger: l}
}

// Send stores the notification with its declarative target. The guard sees
// the target branch as the resource branch, so branch-scoped senders can
// only reach their own branch.
func (s *service) Send(ctx context.Context, actor domain.Actor, req SendRequest) (NotificationResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("send notification requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.AccountID),
		zap.String("target_type", req.TargetType),
	)

	target, err := ParseTarget(req)
	if err != nil {
		s.logger.Warn("send notification invalid target", zap.String("target_type", req.TargetType))
		return NotificationResponse{}, err
	}
	senderID, err := uuid.Parse(actor.AccountID)
	if err != nil {
		return NotificationResponse{}, apperror.InvalidField("actor_id")
	}

	if err := s.guard.Authorize(ctx, actor, domain.ActionSend, domain.Resource{
		Kind:     domain.ResourceNotification,
		BranchID: target.BranchID,
	}); err != nil {
		s.logger.Warn("send notification denied",
			zap.String("actor_id", actor.AccountID),
			zap.String("target_type", target.Type),
			zap.String("target_branch_id", target.BranchID),
		)
		return NotificationResponse{}, err
	}

	n := &Notification{
		ID:         uuid.New(),
		Title:      req.Title,
		Message:    req.Message,
		TargetType: target.Type,
		SenderID:   senderID,
	}
	switch target.Type {
	case TargetBranch:
		b := uuid.MustParse(target.BranchID)
		n.TargetBranchID = &b
	case TargetDepartment:
		d := target.Department
		n.TargetDepartment = &d
	case TargetRole:
		r := string(target.Role)
		n.TargetRole = &r
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("send notification persist failed", zap.String("request_id", rid), zap.Error(err))
		return NotificationResponse{}, err
	}

	s.audit.Log(ctx, audit.Log{
		Action:  "NOTIFICATION_SENT",
		Message: "notification sent",
		ActorID: actor.AccountID,
		Meta: map[string]any{
			"notification_id":   n.ID.String(),
			"target_type":       target.Type,
			"target_branch_id":  target.BranchID,
			"target_department": target.Department,
			"target_role":       string(target.Role),
		},
	})
	s.logger.Info("send notification success",
		zap.String("request_id", rid),
		zap.String("notification_id", n.ID.String()),
	)

	return mapToResponse(*n, nil), nil
}

func (s *service) ListForAccount(ctx context.Context, actor domain.Actor) ([]NotificationResponse, error) {
	rcpt := RecipientFromActor(actor)
	if rcpt.Roles.IsEmpty() {
		return []NotificationResponse{}, nil
	}

	items, err := s.repo.ListForAudience(ctx, rcpt)
	if err != nil {
		s.logger.Error("list notifications failed", zap.String("account_id", actor.AccountID), zap.Error(err))
		return nil, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, n := range items {
		ids[i] = n.ID
	}
	reads, err := s.repo.ReadTimes(ctx, actor.AccountID, ids)
	if err != nil {
		s.logger.Error("list notification reads failed", zap.String("account_id", actor.AccountID), zap.Error(err))
		return nil, err
	}

	resp := make([]NotificationResponse, len(items))
	for i, n := range items {
		var readAt *time.Time
		if t, ok := reads[n.ID]; ok {
			readAt = &t
		}
		resp[i] = mapToResponse(n, readAt)
	}
	return resp, nil
}

func (s *service) IsFor(ctx context.Context, actor domain.Actor, id string) (bool, error) {
	n, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}
	return RecipientsOf(n.Target())(RecipientFromActor(actor)), nil
}

// MarkRead records the first view. Later views and notifications outside the
// actor's audience are reported the same way as a missing notification.
func (s *service) MarkRead(ctx context.Context, actor domain.Actor, id string) error {
	n, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !RecipientsOf(n.Target())(RecipientFromActor(actor)) {
		s.logger.Warn("mark read outside audience",
			zap.String("notification_id", id),
			zap.String("account_id", actor.AccountID),
		)
		return notificationerrors.ErrNotificationNotFound
	}

	accountID, err := uuid.Parse(actor.AccountID)
	if err != nil {
		return apperror.InvalidField("actor_id")
	}

	first, err := s.repo.InsertRead(ctx, &Read{
		NotificationID: n.ID,
		AccountID:      accountID,
		ReadAt:         time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("mark read persist failed", zap.String("notification_id", id), zap.Error(err))
		return err
	}
	if first {
		s.logger.Debug("notification read", zap.String("notification_id", id), zap.String("account_id", actor.AccountID))
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, actor domain.Actor) (int64, error) {
	rcpt := RecipientFromActor(actor)
	if rcpt.Roles.IsEmpty() {
		return 0, nil
	}
	count, err := s.repo.CountUnread(ctx, rcpt)
	if err != nil {
		s.logger.Error("count unread failed", zap.String("account_id", actor.AccountID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (s *service) find(ctx context.Context, id string) (*Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notificationerrors.ErrNotificationNotFound
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notificationerrors.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func mapToResponse(n Notification, readAt *time.Time) NotificationResponse {
	resp := NotificationResponse{
		ID:               n.ID.String(),
		Title:            n.Title,
		Message:          n.Message,
		TargetType:       n.TargetType,
		TargetDepartment: n.TargetDepartment,
		TargetRole:       n.TargetRole,
		SenderID:         n.SenderID.String(),
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
	}
	if n.TargetBranchID != nil {
		v := n.TargetBranchID.String()
		resp.TargetBranchID = &v
	}
	if readAt != nil {
		v := readAt.Format(time.RFC3339)
		resp.Read = true
		resp.ReadAt = &v
	}
	return resp
}
