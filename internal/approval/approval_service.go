package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go-institute/internal/access"
	approvalerrors "go-institute/internal/approval/errors"
	"go-institute/internal/audit"
	"go-institute/internal/domain"
	"go-institute/internal/events"
	"go-institute/internal/messaging/kafka"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/contextutil"
	"go-institute/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Placement reports the branch a requester is employed at.
type Placement interface {
	BranchOf(ctx context.Context, accountID string) (branchID string, found bool, err error)
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actor domain.Actor, req SubmitRequest) (RequestResponse, error)
	BranchApprove(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error)
	AdminApprove(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error)
	// Reject closes a pending or branch_approved request with a non-blank
	// reason. A pending request may be rejected by anyone allowed to
	// approve it; a branch_approved one only by an institute admin.
	Reject(ctx context.Context, actor domain.Actor, id, reason string) (RequestResponse, error)
	Get(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error)
	List(ctx context.Context, actor domain.Actor, filter ListFilter) ([]RequestResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	placement Placement
	counter   counter.Repository
	outbox    kafka.OutboxRepository
	guard     access.Authorizer
	audit     audit.Logger
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	placement Placement,
	counter counter.Repository,
	guard access.Authorizer,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOutbox(db, repo, placement, counter, nil, guard, auditLogger, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	placement Placement,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	guard access.Authorizer,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &service{
		db:        db,
		repo:      repo,
		placement: placement,
		counter:   counter,
		outbox:    outboxRepo,
		guard:     guard,
		audit:     auditLogger,
		logger:    l,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Submit(ctx context.Context, actor domain.Actor, req SubmitRequest) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("submit request requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.AccountID),
		zap.String("request_type", req.RequestType),
	)

	if !actor.Roles().HasEmployeeClass() {
		s.logger.Warn("submit request denied, not staff", zap.String("actor_id", actor.AccountID))
		return RequestResponse{}, approvalerrors.ErrRequesterNotEmployee
	}
	if !validRequestType(req.RequestType) {
		return RequestResponse{}, approvalerrors.ErrInvalidRequestType
	}
	if strings.TrimSpace(req.Subject) == "" {
		return RequestResponse{}, apperror.RequiredField("subject")
	}
	requesterID, err := uuid.Parse(actor.AccountID)
	if err != nil {
		return RequestResponse{}, apperror.InvalidField("actor_id")
	}

	branchID, found, err := s.placement.BranchOf(ctx, actor.AccountID)
	if err != nil {
		s.logger.Error("submit request placement lookup failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}
	branchUUID, parseErr := uuid.Parse(branchID)
	if !found || parseErr != nil {
		s.logger.Warn("submit request requester without branch", zap.String("actor_id", actor.AccountID))
		return RequestResponse{}, approvalerrors.ErrRequesterBranchMissing
	}

	if err := s.guard.Authorize(ctx, actor, domain.ActionWrite, domain.Resource{
		Kind:     domain.ResourceRequest,
		BranchID: branchID,
		OwnerID:  actor.AccountID,
	}); err != nil {
		s.logger.Warn("submit request denied", zap.String("actor_id", actor.AccountID), zap.String("branch_id", branchID))
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, branchID, counter.TypeRequestReference)
	if err != nil {
		s.logger.Error("submit request generate reference failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}

	r := &Request{
		ID:          uuid.New(),
		ReferenceNo: fmt.Sprintf("REQ-%06d", nextVal),
		BranchID:    branchUUID,
		RequesterID: requesterID,
		RequestType: req.RequestType,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      StatusPending,
	}

	if err := s.repo.WithTx(tx).Create(ctx, r); err != nil {
		s.logger.Error("submit request persist failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, mapRepositoryError(err)
	}

	if err := s.enqueue(ctx, tx, r, events.RequestSubmitted, actor.AccountID, "", ""); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit request commit failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}

	s.audit.Log(ctx, audit.Log{
		Action:  "REQUEST_SUBMITTED",
		Message: "request submitted",
		ActorID: actor.AccountID,
		Meta: map[string]any{
			"request_id":   r.ID.String(),
			"reference_no": r.ReferenceNo,
			"branch_id":    branchID,
		},
	})
	s.logger.Info("submit request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", r.ID.String()),
		zap.String("reference_no", r.ReferenceNo),
	)

	return mapToResponse(*r), nil
}

func (s *service) BranchApprove(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error) {
	return s.transition(ctx, actor, id, StatusBranchApproved, "")
}

func (s *service) AdminApprove(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error) {
	return s.transition(ctx, actor, id, StatusAdminApproved, "")
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id, reason string) (RequestResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return RequestResponse{}, approvalerrors.ErrRejectionReasonRequired
	}
	return s.transition(ctx, actor, id, StatusRejected, reason)
}

func (s *service) transition(ctx context.Context, actor domain.Actor, id, target, reason string) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("transition request requested",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("actor_id", actor.AccountID),
		zap.String("target_status", target),
	)

	actorUUID, err := uuid.Parse(actor.AccountID)
	if err != nil {
		return RequestResponse{}, apperror.InvalidField("actor_id")
	}

	r, err := s.find(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}

	if err := s.authorizeTransition(ctx, actor, r, target); err != nil {
		s.logger.Warn("transition request denied",
			zap.String("approval_request_id", id),
			zap.String("actor_id", actor.AccountID),
			zap.String("from_status", r.Status),
			zap.String("to_status", target),
		)
		return RequestResponse{}, err
	}

	if done, err := checkTransition(r.Status, target); done || err != nil {
		if err != nil {
			s.logger.Warn("transition request invalid",
				zap.String("approval_request_id", id),
				zap.String("from_status", r.Status),
				zap.String("to_status", target),
				zap.Error(err),
			)
			return RequestResponse{}, err
		}
		s.logger.Info("transition request already applied",
			zap.String("approval_request_id", id),
			zap.String("status", r.Status),
		)
		return mapToResponse(*r), nil
	}

	from := r.Status
	now := s.now()
	fields := map[string]any{"updated_at": now}
	switch target {
	case StatusBranchApproved:
		fields["branch_approved_by"] = actorUUID
		fields["branch_approved_at"] = now
		r.BranchApprovedBy = &actorUUID
		r.BranchApprovedAt = &now
	case StatusAdminApproved:
		fields["admin_approved_by"] = actorUUID
		fields["admin_approved_at"] = now
		r.AdminApprovedBy = &actorUUID
		r.AdminApprovedAt = &now
	case StatusRejected:
		fields["rejected_by"] = actorUUID
		fields["rejected_at"] = now
		fields["rejection_reason"] = reason
		r.RejectedBy = &actorUUID
		r.RejectedAt = &now
		r.RejectionReason = &reason
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("transition request begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	applied, err := s.repo.WithTx(tx).UpdateStatus(ctx, id, from, target, fields)
	if err != nil {
		s.logger.Error("transition request persist failed",
			zap.String("approval_request_id", id),
			zap.String("target_status", target),
			zap.Error(err),
		)
		return RequestResponse{}, err
	}
	if !applied {
		_ = tx.Rollback()
		return s.resolveLostRace(ctx, id, target)
	}

	r.Status = target
	r.UpdatedAt = now

	if err := s.enqueue(ctx, tx, r, eventTypeFor(target), actor.AccountID, from, reason); err != nil {
		return RequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("transition request commit failed", zap.String("request_id", rid), zap.Error(err))
		return RequestResponse{}, err
	}

	meta := map[string]any{
		"request_id":   id,
		"reference_no": r.ReferenceNo,
		"branch_id":    r.BranchID.String(),
		"from":         from,
		"to":           target,
	}
	if reason != "" {
		meta["reason"] = reason
	}
	s.audit.Log(ctx, audit.Log{
		Action:  "REQUEST_" + strings.ToUpper(target),
		Message: "request status changed",
		ActorID: actor.AccountID,
		Meta:    meta,
	})
	s.logger.Info("transition request success",
		zap.String("request_id", rid),
		zap.String("approval_request_id", id),
		zap.String("from_status", from),
		zap.String("status", target),
	)

	return mapToResponse(*r), nil
}

// authorizeTransition applies the tier rules: branch approval needs approve
// authority over the request's branch, admin approval needs the
// institute-admin role, and rejecting a branch-approved request is reserved
// for the institute tier.
func (s *service) authorizeTransition(ctx context.Context, actor domain.Actor, r *Request, target string) error {
	res := resourceOf(r)
	switch target {
	case StatusAdminApproved:
		if !actor.HasRole(domain.RoleInstituteAdmin) {
			return apperror.ErrUnauthorized
		}
		return nil
	case StatusRejected:
		if r.Status == StatusBranchApproved && !actor.HasRole(domain.RoleInstituteAdmin) {
			return apperror.ErrUnauthorized
		}
	}
	return s.guard.Authorize(ctx, actor, domain.ActionApprove, res)
}

// checkTransition reports done when the request is already in the state the
// call would produce, so the call is a no-op.
func checkTransition(current, target string) (bool, error) {
	if current == target && target != StatusRejected {
		return true, nil
	}
	if IsTerminal(current) {
		return false, approvalerrors.ErrAlreadyFinalized
	}
	if !CanTransition(current, target) {
		return false, approvalerrors.ErrInvalidTransition
	}
	return false, nil
}

// resolveLostRace re-reads a request whose status changed under us. If the
// winner produced the state this call wanted, the call succeeds unchanged.
func (s *service) resolveLostRace(ctx context.Context, id, target string) (RequestResponse, error) {
	current, err := s.find(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if current.Status == target && target != StatusRejected {
		s.logger.Info("transition request lost race to identical transition",
			zap.String("approval_request_id", id),
			zap.String("status", current.Status),
		)
		return mapToResponse(*current), nil
	}
	s.logger.Warn("transition request lost race",
		zap.String("approval_request_id", id),
		zap.String("status", current.Status),
		zap.String("target_status", target),
	)
	return RequestResponse{}, apperror.ErrConflict
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, r *Request, eventType, actorID, from, reason string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.RequestLifecycleEvent{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		CorrelationID: rid,
		RequestID:     r.ID.String(),
		ReferenceNo:   r.ReferenceNo,
		BranchID:      r.BranchID.String(),
		ActorID:       actorID,
		FromStatus:    from,
		ToStatus:      r.Status,
		Reason:        reason,
		OccurredAt:    s.now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            event.EventID,
		RequestID:     rid,
		AggregateType: "request",
		AggregateID:   r.ID.String(),
		EventType:     eventType,
		Topic:         events.RequestLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("request outbox persist failed",
			zap.String("approval_request_id", r.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id string) (RequestResponse, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if err := s.guard.Authorize(ctx, actor, domain.ActionRead, resourceOf(r)); err != nil {
		s.logger.Warn("get request denied",
			zap.String("approval_request_id", id),
			zap.String("actor_id", actor.AccountID),
		)
		return RequestResponse{}, err
	}
	return mapToResponse(*r), nil
}

// List returns everything for institute admins, the branch for accounts that
// may read any request in their branch, and otherwise the actor's own
// requests.
func (s *service) List(ctx context.Context, actor domain.Actor, filter ListFilter) ([]RequestResponse, error) {
	s.logger.Debug("list requests requested",
		zap.String("actor_id", actor.AccountID),
		zap.String("status", filter.Status),
	)
	if actor.IsBlocked() {
		return nil, apperror.ErrUnauthorized
	}

	q := ListQuery{Status: filter.Status}
	switch {
	case actor.HasRole(domain.RoleInstituteAdmin):
		q.Scope = domain.GlobalScope()
	case actor.Scope.BranchID != "" && s.guard.Can(actor, domain.ActionRead, domain.Resource{
		Kind:     domain.ResourceRequest,
		BranchID: actor.Scope.BranchID,
	}):
		q.Scope = actor.Scope
	default:
		q.RequesterID = actor.AccountID
	}

	requests, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("list requests failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) find(ctx context.Context, id string) (*Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, approvalerrors.ErrRequestNotFound
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return r, nil
}

func resourceOf(r *Request) domain.Resource {
	return domain.Resource{
		Kind:     domain.ResourceRequest,
		ID:       r.ID.String(),
		BranchID: r.BranchID.String(),
		OwnerID:  r.RequesterID.String(),
	}
}

func eventTypeFor(status string) string {
	switch status {
	case StatusBranchApproved:
		return events.RequestBranchApproved
	case StatusAdminApproved:
		return events.RequestAdminApproved
	case StatusRejected:
		return events.RequestRejected
	default:
		return events.RequestSubmitted
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func formatUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func mapToResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:               r.ID.String(),
		ReferenceNo:      r.ReferenceNo,
		BranchID:         r.BranchID.String(),
		RequesterID:      r.RequesterID.String(),
		RequestType:      r.RequestType,
		Subject:          r.Subject,
		Description:      r.Description,
		Status:           r.Status,
		BranchApprovedBy: formatUUID(r.BranchApprovedBy),
		BranchApprovedAt: formatTime(r.BranchApprovedAt),
		AdminApprovedBy:  formatUUID(r.AdminApprovedBy),
		AdminApprovedAt:  formatTime(r.AdminApprovedAt),
		RejectedBy:       formatUUID(r.RejectedBy),
		RejectedAt:       formatTime(r.RejectedAt),
		RejectionReason:  r.RejectionReason,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(requests []Request) []RequestResponse {
	resp := make([]RequestResponse, len(requests))
	for i, r := range requests {
		resp[i] = mapToResponse(r)
	}
	return resp
}
