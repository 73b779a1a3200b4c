package scope_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-institute/internal/domain"
	"go-institute/internal/employment"
	employmenterrors "go-institute/internal/employment/errors"
	"go-institute/internal/middleware"
	"go-institute/internal/scope"
	scopeerrors "go-institute/internal/scope/errors"
	"go-institute/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoles struct {
	byAccount map[string]domain.RoleSet
}

func (f *fakeRoles) GetRoles(ctx context.Context, accountID string) (domain.RoleSet, error) {
	roles, ok := f.byAccount[accountID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return roles, nil
}

type fakeEmployments struct {
	byAccount map[string]*employment.Employment
	err       error
}

func (f *fakeEmployments) Get(ctx context.Context, accountID string) (*employment.Employment, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byAccount[accountID]
	if !ok {
		return nil, employmenterrors.ErrEmploymentNotFound
	}
	return e, nil
}

func placed(branchID, department string) *employment.Employment {
	e := &employment.Employment{Department: department}
	if branchID != "" {
		e.BranchID = &branchID
	}
	return e
}

func TestResolver_ScopeOf(t *testing.T) {
	ctx := context.Background()
	roles := &fakeRoles{byAccount: map[string]domain.RoleSet{
		"admin":    domain.NewRoleSet(domain.RoleInstituteAdmin),
		"teacher":  domain.NewRoleSet(domain.RoleTeacher),
		"student":  domain.NewRoleSet(domain.RoleStudent),
		"orphan":   domain.NewRoleSet(domain.RoleSales),
		"blocked":  domain.NewRoleSet(),
		"newcomer": domain.NewRoleSet(domain.RoleStudent),
		"nobranch": domain.NewRoleSet(domain.RoleSupport),
	}}
	employments := &fakeEmployments{byAccount: map[string]*employment.Employment{
		"teacher":  placed("b-1", "science"),
		"student":  placed("b-2", ""),
		"nobranch": placed("", "helpdesk"),
	}}
	r := scope.NewResolver(roles, employments)

	cases := []struct {
		name    string
		account string
		want    domain.Scope
		wantErr error
	}{
		{name: "institute admin is global", account: "admin", want: domain.GlobalScope()},
		{name: "employee gets branch and department", account: "teacher", want: domain.BranchScope("b-1", "science")},
		{name: "student gets enrollment branch", account: "student", want: domain.BranchScope("b-2", "")},
		{name: "student without enrollment gets empty scope", account: "newcomer", want: domain.Scope{}},
		{name: "blocked gets empty scope", account: "blocked", want: domain.Scope{}},
		{name: "employee without record fails closed", account: "orphan", wantErr: scopeerrors.ErrPlacementMissing},
		{name: "employee without branch fails closed", account: "nobranch", wantErr: scopeerrors.ErrPlacementMissing},
		{name: "unknown account", account: "ghost", wantErr: apperror.ErrNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ScopeOf(ctx, tc.account)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolver_ActorOf(t *testing.T) {
	ctx := context.Background()

	t.Run("reflects edits on the next call", func(t *testing.T) {
		roles := &fakeRoles{byAccount: map[string]domain.RoleSet{"acc": domain.NewRoleSet(domain.RoleTeacher)}}
		employments := &fakeEmployments{byAccount: map[string]*employment.Employment{"acc": placed("b-1", "")}}
		r := scope.NewResolver(roles, employments)

		actor, err := r.ActorOf(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "b-1", actor.Scope.BranchID)
		assert.Equal(t, "b-1", actor.Placement.BranchID)
		assert.True(t, actor.HasRole(domain.RoleTeacher))

		employments.byAccount["acc"] = placed("b-7", "")
		roles.byAccount["acc"] = domain.NewRoleSet()

		actor, err = r.ActorOf(ctx, "acc")
		require.NoError(t, err)
		assert.True(t, actor.IsBlocked())
		assert.Equal(t, domain.Scope{}, actor.Scope)

		roles.byAccount["acc"] = domain.NewRoleSet(domain.RoleTeacher)
		actor, err = r.ActorOf(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "b-7", actor.Scope.BranchID)
	})

	t.Run("institute admin keeps global scope and its placement", func(t *testing.T) {
		roles := &fakeRoles{byAccount: map[string]domain.RoleSet{
			"both":  domain.NewRoleSet(domain.RoleInstituteAdmin, domain.RoleTeacher),
			"admin": domain.NewRoleSet(domain.RoleInstituteAdmin),
		}}
		employments := &fakeEmployments{byAccount: map[string]*employment.Employment{"both": placed("branch-x", "science")}}
		r := scope.NewResolver(roles, employments)

		actor, err := r.ActorOf(ctx, "both")
		require.NoError(t, err)
		assert.Equal(t, domain.GlobalScope(), actor.Scope)
		assert.Equal(t, domain.Placement{BranchID: "branch-x", Department: "science"}, actor.Placement)

		actor, err = r.ActorOf(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, domain.GlobalScope(), actor.Scope)
		assert.Equal(t, domain.Placement{}, actor.Placement)
	})

	t.Run("blocked account is not placed", func(t *testing.T) {
		roles := &fakeRoles{byAccount: map[string]domain.RoleSet{"acc": domain.NewRoleSet()}}
		employments := &fakeEmployments{byAccount: map[string]*employment.Employment{"acc": placed("b-1", "science")}}
		r := scope.NewResolver(roles, employments)

		actor, err := r.ActorOf(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, domain.Placement{}, actor.Placement)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		roles := &fakeRoles{byAccount: map[string]domain.RoleSet{"acc": domain.NewRoleSet(domain.RoleTeacher)}}
		r := scope.NewResolver(roles, &fakeEmployments{err: errors.New("db down")})

		_, err := r.ActorOf(ctx, "acc")

		assert.EqualError(t, err, "db down")
	})
}

type fakeViewer struct {
	err error
}

func (f *fakeViewer) AuthorizeView(ctx context.Context, actor domain.Actor, accountID string) error {
	return f.err
}

func TestScopeHandler_GetScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	target := uuid.NewString()
	roles := &fakeRoles{byAccount: map[string]domain.RoleSet{target: domain.NewRoleSet(domain.RoleTeacher)}}
	employments := &fakeEmployments{byAccount: map[string]*employment.Employment{target: placed("b-1", "")}}
	r := scope.NewResolver(roles, employments)
	actor := domain.NewActor(uuid.NewString(), domain.NewRoleSet(domain.RoleBranchAdmin), domain.BranchScope("b-1", ""))

	t.Run("success", func(t *testing.T) {
		h := scope.NewHandler(r, &fakeViewer{})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/accounts/"+target+"/scope", nil)
		c.Params = gin.Params{{Key: "id", Value: target}}
		c.Set(middleware.ContextActor, actor)

		h.GetScope(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"branch_id":"b-1"`)
	})

	t.Run("negative denied", func(t *testing.T) {
		h := scope.NewHandler(r, &fakeViewer{err: apperror.ErrUnauthorized})
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/accounts/"+target+"/scope", nil)
		c.Params = gin.Params{{Key: "id", Value: target}}
		c.Set(middleware.ContextActor, actor)

		h.GetScope(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
