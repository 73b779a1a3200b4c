package employment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-institute/internal/access"
	"go-institute/internal/domain"
	employmenterrors "go-institute/internal/employment/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RoleReader interface {
	GetRoles(ctx context.Context, accountID string) (domain.RoleSet, error)
}

//go:generate mockgen -source=employment_service.go -destination=mock/employment_service_mock.go -package=mock
type Service interface {
	Get(ctx context.Context, accountID string) (*Employment, error)
	View(ctx context.Context, actor domain.Actor, accountID string) (EmploymentResponse, error)
	// Assign creates or moves the account's placement. Moving between
	// branches needs write access in both.
	Assign(ctx context.Context, actor domain.Actor, accountID string, req AssignEmploymentRequest) (EmploymentResponse, error)
	ListByBranch(ctx context.Context, actor domain.Actor, branchID string) ([]EmploymentResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	roles  RoleReader
	guard  access.Authorizer
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, roles RoleReader, guard access.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("employment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employment.service")
	}
	return &service{db: db, repo: repo, roles: roles, guard: guard, logger: l}
}

func (s *service) Get(ctx context.Context, accountID string) (*Employment, error) {
	e, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employmenterrors.ErrEmploymentNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *service) View(ctx context.Context, actor domain.Actor, accountID string) (EmploymentResponse, error) {
	e, err := s.Get(ctx, accountID)
	if err != nil {
		return EmploymentResponse{}, err
	}
	if actor.AccountID != accountID || actor.IsBlocked() {
		roles, err := s.roles.GetRoles(ctx, accountID)
		if err != nil {
			return EmploymentResponse{}, err
		}
		if err := s.guard.Authorize(ctx, actor, domain.ActionRead, domain.Resource{
			Kind:     recordKind(roles),
			ID:       accountID,
			BranchID: e.Branch(),
		}); err != nil {
			return EmploymentResponse{}, err
		}
	}
	return mapToResponse(*e), nil
}

func (s *service) Assign(ctx context.Context, actor domain.Actor, accountID string, req AssignEmploymentRequest) (EmploymentResponse, error) {
	s.logger.Debug("assign employment requested",
		zap.String("actor_id", actor.AccountID),
		zap.String("account_id", accountID),
		zap.String("branch_id", req.BranchID),
	)

	accountUUID, err := uuid.Parse(accountID)
	if err != nil {
		return EmploymentResponse{}, employmenterrors.ErrEmploymentNotFound
	}

	roles, err := s.roles.GetRoles(ctx, accountID)
	if err != nil {
		return EmploymentResponse{}, err
	}
	if roles.HasEmployeeClass() && req.BranchID == "" {
		s.logger.Warn("assign employment without branch for employee",
			zap.String("account_id", accountID),
			zap.Strings("roles", roles.Strings()),
		)
		return EmploymentResponse{}, employmenterrors.ErrBranchRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("assign employment begin tx failed", zap.Error(err))
		return EmploymentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	previousBranch := ""
	existing, err := qtx.FindByAccount(ctx, accountID)
	switch {
	case err == nil:
		previousBranch = existing.Branch()
	case errors.Is(err, gorm.ErrRecordNotFound):
		existing = nil
	default:
		s.logger.Error("assign employment lookup failed", zap.Error(err))
		return EmploymentResponse{}, err
	}

	kind := recordKind(roles)
	targets := []string{req.BranchID}
	if existing != nil && previousBranch != req.BranchID {
		targets = append(targets, previousBranch)
	}
	for _, branchID := range targets {
		if err := s.guard.Authorize(ctx, actor, domain.ActionWrite, domain.Resource{
			Kind:     kind,
			ID:       accountID,
			BranchID: branchID,
		}); err != nil {
			s.logger.Warn("assign employment denied",
				zap.String("actor_id", actor.AccountID),
				zap.String("account_id", accountID),
				zap.String("branch_id", branchID),
			)
			return EmploymentResponse{}, err
		}
	}

	if req.BranchID != "" {
		active, err := qtx.BranchIsActive(ctx, req.BranchID)
		if err != nil {
			s.logger.Error("assign employment branch check failed", zap.Error(err))
			return EmploymentResponse{}, err
		}
		if !active {
			return EmploymentResponse{}, employmenterrors.ErrBranchNotFound
		}
	}

	e := &Employment{
		ID:          uuid.New(),
		AccountID:   accountUUID,
		Department:  req.Department,
		Designation: req.Designation,
		Salary:      req.Salary,
		UpdatedAt:   time.Now().UTC(),
	}
	if existing != nil {
		e.ID = existing.ID
		e.CreatedAt = existing.CreatedAt
	}
	if req.BranchID != "" {
		branchID := req.BranchID
		e.BranchID = &branchID
	}

	if err := qtx.Upsert(ctx, e); err != nil {
		s.logger.Error("assign employment persist failed", zap.String("account_id", accountID), zap.Error(err))
		return EmploymentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("assign employment commit failed", zap.Error(err))
		return EmploymentResponse{}, err
	}

	s.logger.Info("assign employment success",
		zap.String("account_id", accountID),
		zap.String("branch_id", req.BranchID),
		zap.String("previous_branch_id", previousBranch),
	)
	return mapToResponse(*e), nil
}

func (s *service) ListByBranch(ctx context.Context, actor domain.Actor, branchID string) ([]EmploymentResponse, error) {
	if err := s.guard.Authorize(ctx, actor, domain.ActionRead, domain.Resource{
		Kind:     domain.ResourceEmployee,
		BranchID: branchID,
	}); err != nil {
		return nil, err
	}

	rows, err := s.repo.FindAllByBranch(ctx, branchID)
	if err != nil {
		s.logger.Error("list employments failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}

	resp := make([]EmploymentResponse, len(rows))
	for i, e := range rows {
		resp[i] = mapToResponse(e)
	}
	return resp, nil
}

func recordKind(roles domain.RoleSet) domain.ResourceKind {
	if roles.HasEmployeeClass() || roles.Has(domain.RoleInstituteAdmin) {
		return domain.ResourceEmployee
	}
	return domain.ResourceStudent
}

func mapToResponse(e Employment) EmploymentResponse {
	return EmploymentResponse{
		AccountID:   e.AccountID.String(),
		BranchID:    e.Branch(),
		Department:  e.Department,
		Designation: e.Designation,
		Salary:      e.Salary,
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}
