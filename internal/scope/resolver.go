package scope

import (
	"context"

	"go-institute/internal/domain"
	"go-institute/internal/employment"
	scopeerrors "go-institute/internal/scope/errors"
	"go-institute/internal/shared/apperror"

	"go.uber.org/zap"
)

type RoleReader interface {
	GetRoles(ctx context.Context, accountID string) (domain.RoleSet, error)
}

type EmploymentReader interface {
	Get(ctx context.Context, accountID string) (*employment.Employment, error)
}

// Resolver derives an account's scope from its roles and employment record.
// Nothing is cached: every call reads the store, so a role or branch change
// applies to the next request.
type Resolver struct {
	roles       RoleReader
	employments EmploymentReader
	logger      *zap.Logger
}

func NewResolver(roles RoleReader, employments EmploymentReader, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("scope.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("scope.resolver")
	}
	return &Resolver{roles: roles, employments: employments, logger: l}
}

func (r *Resolver) ScopeOf(ctx context.Context, accountID string) (domain.Scope, error) {
	roles, err := r.roles.GetRoles(ctx, accountID)
	if err != nil {
		return domain.Scope{}, err
	}
	placement, found, err := r.placementOf(ctx, accountID, roles)
	if err != nil {
		return domain.Scope{}, err
	}
	return r.scopeFor(accountID, roles, placement, found)
}

// ActorOf resolves roles, scope and placement together for one request.
// The placement is read for every active account, institute admins
// included.
func (r *Resolver) ActorOf(ctx context.Context, accountID string) (domain.Actor, error) {
	roles, err := r.roles.GetRoles(ctx, accountID)
	if err != nil {
		return domain.Actor{}, err
	}
	placement, found, err := r.placementOf(ctx, accountID, roles)
	if err != nil {
		return domain.Actor{}, err
	}
	scope, err := r.scopeFor(accountID, roles, placement, found)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.NewActor(accountID, roles, scope).WithPlacement(placement), nil
}

// placementOf reads the employment or enrollment record. Blocked accounts
// are never placed.
func (r *Resolver) placementOf(ctx context.Context, accountID string, roles domain.RoleSet) (domain.Placement, bool, error) {
	if roles.IsEmpty() {
		return domain.Placement{}, false, nil
	}

	e, err := r.employments.Get(ctx, accountID)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeNotFound) {
			return domain.Placement{}, false, nil
		}
		r.logger.Error("scope employment lookup failed", zap.String("account_id", accountID), zap.Error(err))
		return domain.Placement{}, false, err
	}
	return domain.Placement{BranchID: e.Branch(), Department: e.Department}, true, nil
}

func (r *Resolver) scopeFor(accountID string, roles domain.RoleSet, placement domain.Placement, found bool) (domain.Scope, error) {
	if roles.IsEmpty() {
		return domain.Scope{}, nil
	}
	if roles.Has(domain.RoleInstituteAdmin) {
		return domain.GlobalScope(), nil
	}

	if !found {
		if roles.HasEmployeeClass() {
			r.logger.Warn("employee account without employment record", zap.String("account_id", accountID))
			return domain.Scope{}, scopeerrors.ErrPlacementMissing
		}
		// Students not yet enrolled at a branch see nothing branch-scoped.
		return domain.Scope{}, nil
	}

	if placement.BranchID == "" && roles.HasEmployeeClass() {
		r.logger.Warn("employee account without branch", zap.String("account_id", accountID))
		return domain.Scope{}, scopeerrors.ErrPlacementMissing
	}
	return domain.BranchScope(placement.BranchID, placement.Department), nil
}
