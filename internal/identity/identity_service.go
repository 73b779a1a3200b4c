package identity

import (
	"context"
	"database/sql"

	"go-institute/internal/access"
	"go-institute/internal/audit"
	"go-institute/internal/domain"
	identityerrors "go-institute/internal/identity/errors"
	"go-institute/internal/shared/apperror"
	"go-institute/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Placement reports the branch an account is employed or enrolled at.
type Placement interface {
	BranchOf(ctx context.Context, accountID string) (branchID string, found bool, err error)
}

//go:generate mockgen -source=identity_service.go -destination=mock/identity_service_mock.go -package=mock
type Service interface {
	GetRoles(ctx context.Context, accountID string) (domain.RoleSet, error)
	Status(ctx context.Context, accountID string) (domain.AccountStatus, error)
	GetProfile(ctx context.Context, accountID string) (Profile, error)

	// SetRoles atomically replaces the account's role set. An empty set
	// blocks the account.
	SetRoles(ctx context.Context, actor domain.Actor, accountID string, roles []string) (RolesResponse, error)
	Block(ctx context.Context, actor domain.Actor, accountID string) error
	ViewRoles(ctx context.Context, actor domain.Actor, accountID string) (RolesResponse, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, accountID string, req UpdateProfileRequest) (ProfileResponse, error)
	AuthorizeView(ctx context.Context, actor domain.Actor, accountID string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	placement Placement
	guard     access.Authorizer
	audit     audit.Logger
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	placement Placement,
	guard access.Authorizer,
	auditLogger audit.Logger,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("identity.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.service")
	}
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &service{
		db:        db,
		repo:      repo,
		placement: placement,
		guard:     guard,
		audit:     auditLogger,
		logger:    l,
	}
}

func (s *service) GetRoles(ctx context.Context, accountID string) (domain.RoleSet, error) {
	acc, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return acc.RoleSet(), nil
}

func (s *service) Status(ctx context.Context, accountID string) (domain.AccountStatus, error) {
	roles, err := s.GetRoles(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return domain.StatusFromRoles(roles), nil
}

func (s *service) GetProfile(ctx context.Context, accountID string) (Profile, error) {
	acc, err := s.findAccount(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Account: *acc, Status: domain.StatusFromRoles(acc.RoleSet())}, nil
}

func (s *service) SetRoles(ctx context.Context, actor domain.Actor, accountID string, roles []string) (RolesResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("set roles requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actor.AccountID),
		zap.String("account_id", accountID),
		zap.Strings("roles", roles),
	)

	next, err := parseRoles(roles)
	if err != nil {
		s.logger.Warn("set roles validation failed", zap.Strings("roles", roles), zap.Error(err))
		return RolesResponse{}, err
	}
	if _, err := uuid.Parse(accountID); err != nil {
		return RolesResponse{}, identityerrors.ErrAccountNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("set roles begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RolesResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	acc, err := qtx.LockByID(ctx, accountID)
	if err != nil {
		s.logger.Warn("set roles account lookup failed", zap.String("account_id", accountID), zap.Error(err))
		return RolesResponse{}, mapRepositoryError(err)
	}
	current := acc.RoleSet()

	branchID, placed, err := s.placement.BranchOf(ctx, accountID)
	if err != nil {
		s.logger.Error("set roles placement lookup failed", zap.String("account_id", accountID), zap.Error(err))
		return RolesResponse{}, err
	}

	if err := s.authorizeRoleChange(ctx, actor, accountID, branchID, current, next); err != nil {
		return RolesResponse{}, err
	}

	if next.HasEmployeeClass() && (!placed || branchID == "") {
		s.logger.Warn("set roles employee role without branch",
			zap.String("account_id", accountID),
			zap.Strings("roles", next.Strings()),
		)
		return RolesResponse{}, identityerrors.ErrEmploymentBranchRequired
	}

	if err := qtx.ReplaceRoles(ctx, acc.ID, next.Slice()); err != nil {
		s.logger.Error("set roles persist failed", zap.String("account_id", accountID), zap.Error(err))
		return RolesResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("set roles commit failed", zap.String("request_id", rid), zap.Error(err))
		return RolesResponse{}, err
	}

	status := domain.StatusFromRoles(next)
	s.audit.Log(ctx, audit.Log{
		Action:  "ACCOUNT_ROLES_CHANGED",
		Message: "account roles replaced",
		ActorID: actor.AccountID,
		Meta: map[string]any{
			"account_id": accountID,
			"from":       current.Strings(),
			"to":         next.Strings(),
			"status":     status.String(),
		},
	})
	s.logger.Info("set roles success",
		zap.String("request_id", rid),
		zap.String("account_id", accountID),
		zap.String("status", status.String()),
	)

	return RolesResponse{
		AccountID: accountID,
		Roles:     next.Strings(),
		Status:    status.String(),
	}, nil
}

func (s *service) Block(ctx context.Context, actor domain.Actor, accountID string) error {
	_, err := s.SetRoles(ctx, actor, accountID, nil)
	return err
}

func (s *service) ViewRoles(ctx context.Context, actor domain.Actor, accountID string) (RolesResponse, error) {
	if err := s.AuthorizeView(ctx, actor, accountID); err != nil {
		return RolesResponse{}, err
	}
	roles, err := s.GetRoles(ctx, accountID)
	if err != nil {
		return RolesResponse{}, err
	}
	return RolesResponse{
		AccountID: accountID,
		Roles:     roles.Strings(),
		Status:    domain.StatusFromRoles(roles).String(),
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, actor domain.Actor, accountID string, req UpdateProfileRequest) (ProfileResponse, error) {
	s.logger.Debug("update profile requested",
		zap.String("actor_id", actor.AccountID),
		zap.String("account_id", accountID),
	)

	acc, err := s.findAccount(ctx, accountID)
	if err != nil {
		return ProfileResponse{}, err
	}
	branchID, _, err := s.placement.BranchOf(ctx, accountID)
	if err != nil {
		return ProfileResponse{}, err
	}

	if err := s.guard.Authorize(ctx, actor, domain.ActionWrite, domain.Resource{
		Kind:     domain.ResourceProfile,
		ID:       accountID,
		BranchID: branchID,
		OwnerID:  accountID,
	}); err != nil {
		s.logger.Warn("update profile denied",
			zap.String("actor_id", actor.AccountID),
			zap.String("account_id", accountID),
		)
		return ProfileResponse{}, err
	}

	acc.DisplayName = req.DisplayName
	acc.Phone = req.Phone
	acc.City = req.City

	if err := s.repo.UpdateProfile(ctx, acc); err != nil {
		s.logger.Error("update profile persist failed", zap.String("account_id", accountID), zap.Error(err))
		return ProfileResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("update profile success", zap.String("account_id", accountID))
	return mapToProfileResponse(Profile{Account: *acc, Status: domain.StatusFromRoles(acc.RoleSet())}), nil
}

// AuthorizeView lets an account see itself, and otherwise requires read
// access to the account as an employee or student record of its branch.
func (s *service) AuthorizeView(ctx context.Context, actor domain.Actor, accountID string) error {
	if actor.AccountID == accountID && !actor.IsBlocked() {
		return nil
	}

	acc, err := s.findAccount(ctx, accountID)
	if err != nil {
		return err
	}
	branchID, _, err := s.placement.BranchOf(ctx, accountID)
	if err != nil {
		return err
	}

	return s.guard.Authorize(ctx, actor, domain.ActionRead, domain.Resource{
		Kind:     recordKind(acc.RoleSet()),
		ID:       accountID,
		BranchID: branchID,
	})
}

func (s *service) authorizeRoleChange(
	ctx context.Context,
	actor domain.Actor,
	accountID, branchID string,
	current, next domain.RoleSet,
) error {
	kind := recordKind(current)
	if k := recordKind(next); k == domain.ResourceEmployee {
		kind = k
	}

	if err := s.guard.Authorize(ctx, actor, domain.ActionWrite, domain.Resource{
		Kind:     kind,
		ID:       accountID,
		BranchID: branchID,
	}); err != nil {
		s.logger.Warn("set roles denied",
			zap.String("actor_id", actor.AccountID),
			zap.String("account_id", accountID),
		)
		return err
	}

	if actor.HasRole(domain.RoleInstituteAdmin) {
		return nil
	}
	for _, r := range []domain.Role{domain.RoleInstituteAdmin, domain.RoleBranchAdmin} {
		if current.Has(r) || next.Has(r) {
			s.logger.Warn("set roles admin role change denied",
				zap.String("actor_id", actor.AccountID),
				zap.String("account_id", accountID),
				zap.String("role", string(r)),
			)
			return apperror.ErrUnauthorized
		}
	}
	return nil
}

func (s *service) findAccount(ctx context.Context, accountID string) (*Account, error) {
	// A malformed id cannot name an account.
	if _, err := uuid.Parse(accountID); err != nil {
		return nil, identityerrors.ErrAccountNotFound
	}
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return acc, nil
}

func parseRoles(values []string) (domain.RoleSet, error) {
	set := domain.NewRoleSet()
	for _, v := range values {
		r, ok := domain.ParseRole(v)
		if !ok {
			return nil, identityerrors.ErrUnknownRole
		}
		set[r] = struct{}{}
	}
	return set, nil
}

func recordKind(roles domain.RoleSet) domain.ResourceKind {
	if roles.HasEmployeeClass() || roles.Has(domain.RoleInstituteAdmin) {
		return domain.ResourceEmployee
	}
	return domain.ResourceStudent
}

func mapToProfileResponse(p Profile) ProfileResponse {
	roles := []string{}
	status := "blocked"
	if p.Status != nil {
		roles = p.Status.Roles().Strings()
		status = p.Status.String()
	}
	return ProfileResponse{
		ID:          p.Account.ID.String(),
		DisplayName: p.Account.DisplayName,
		Email:       p.Account.Email,
		Phone:       p.Account.Phone,
		City:        p.Account.City,
		Roles:       roles,
		Status:      status,
	}
}
