package access

import (
	"context"

	"go-institute/internal/access/infra"
	"go-institute/internal/domain"
	"go-institute/internal/shared/apperror"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

const (
	ReasonBlocked        = "blocked"
	ReasonInstituteAdmin = "institute_admin"
	ReasonBranchMismatch = "branch_mismatch"
	ReasonMatrix         = "role_matrix"
	ReasonDefaultDeny    = "default_deny"
)

type Decision struct {
	Allowed bool
	Reason  string
}

type Authorizer interface {
	Can(actor domain.Actor, action domain.Action, resource domain.Resource) bool
	Decide(actor domain.Actor, action domain.Action, resource domain.Resource) Decision
	Authorize(ctx context.Context, actor domain.Actor, action domain.Action, resource domain.Resource) error
}

// Guard is the single access decision point. The policy is loaded once and
// never mutated, so decisions are deterministic and safe for concurrent use.
type Guard struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewGuard(logger ...*zap.Logger) (*Guard, error) {
	l := zap.L().Named("access.guard")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("access.guard")
	}

	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(policyRows()); err != nil {
		return nil, err
	}

	return &Guard{enforcer: enforcer, logger: l}, nil
}

func (g *Guard) Can(actor domain.Actor, action domain.Action, resource domain.Resource) bool {
	return g.Decide(actor, action, resource).Allowed
}

func (g *Guard) Decide(actor domain.Actor, action domain.Action, resource domain.Resource) Decision {
	roles := actor.Roles()
	if roles.IsEmpty() {
		return Decision{Allowed: false, Reason: ReasonBlocked}
	}

	if roles.Has(domain.RoleInstituteAdmin) {
		return Decision{Allowed: true, Reason: ReasonInstituteAdmin}
	}

	if actor.Scope.Global || actor.Scope.BranchID != resource.BranchID {
		// A global scope without the institute-admin role is treated as no scope.
		return Decision{Allowed: false, Reason: ReasonBranchMismatch}
	}

	own := ownNo
	if resource.OwnedBy(actor.AccountID) {
		own = ownYes
	}

	for _, role := range roles.Slice() {
		ok, err := g.enforcer.Enforce(string(role), string(resource.Kind), string(action), own)
		if err != nil {
			g.logger.Error("policy evaluation failed, denying",
				zap.String("role", string(role)),
				zap.String("resource", string(resource.Kind)),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			continue
		}
		if ok {
			return Decision{Allowed: true, Reason: ReasonMatrix}
		}
	}

	return Decision{Allowed: false, Reason: ReasonDefaultDeny}
}

// Authorize is Decide for service code paths: a denial becomes
// apperror.ErrUnauthorized.
func (g *Guard) Authorize(ctx context.Context, actor domain.Actor, action domain.Action, resource domain.Resource) error {
	d := g.Decide(actor, action, resource)
	if d.Allowed {
		return nil
	}
	g.logger.Debug("access denied",
		zap.String("account_id", actor.AccountID),
		zap.String("action", string(action)),
		zap.String("resource", string(resource.Kind)),
		zap.String("resource_id", resource.ID),
		zap.String("resource_branch_id", resource.BranchID),
		zap.String("reason", d.Reason),
	)
	return apperror.ErrUnauthorized
}
