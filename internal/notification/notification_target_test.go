package notification_test

import (
	"testing"

	"go-institute/internal/domain"
	"go-institute/internal/notification"
	notificationerrors "go-institute/internal/notification/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestRecipientsOf(t *testing.T) {
	branchX := uuid.NewString()
	branchY := uuid.NewString()

	a := notification.Recipient{AccountID: "A", BranchID: branchX, Roles: domain.NewRoleSet(domain.RoleStudent)}
	b := notification.Recipient{AccountID: "B", BranchID: branchX, Department: "science", Roles: domain.NewRoleSet(domain.RoleTeacher)}
	c := notification.Recipient{AccountID: "C", BranchID: branchY, Department: "science", Roles: domain.NewRoleSet(domain.RoleTeacher)}
	blocked := notification.Recipient{AccountID: "D", BranchID: branchX, Roles: domain.NewRoleSet()}

	cases := []struct {
		name   string
		target notification.Target
		want   map[string]bool
	}{
		{
			name:   "branch X",
			target: notification.Target{Type: notification.TargetBranch, BranchID: branchX},
			want:   map[string]bool{"A": true, "B": true, "C": false, "D": false},
		},
		{
			name:   "role teacher",
			target: notification.Target{Type: notification.TargetRole, Role: domain.RoleTeacher},
			want:   map[string]bool{"A": false, "B": true, "C": true, "D": false},
		},
		{
			name:   "department science",
			target: notification.Target{Type: notification.TargetDepartment, Department: "science"},
			want:   map[string]bool{"A": false, "B": true, "C": true, "D": false},
		},
		{
			name:   "all",
			target: notification.Target{Type: notification.TargetAll},
			want:   map[string]bool{"A": true, "B": true, "C": true, "D": false},
		},
		{
			name:   "unknown type",
			target: notification.Target{Type: "everyone"},
			want:   map[string]bool{"A": false, "B": false, "C": false, "D": false},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			match := notification.RecipientsOf(tc.target)
			for _, r := range []notification.Recipient{a, b, c, blocked} {
				assert.Equal(t, tc.want[r.AccountID], match(r), "recipient %s", r.AccountID)
			}
		})
	}
}

func TestRecipientFromActor(t *testing.T) {
	branchX := uuid.NewString()

	t.Run("placed institute admin matches branch and department", func(t *testing.T) {
		actor := domain.NewActor(
			uuid.NewString(),
			domain.NewRoleSet(domain.RoleInstituteAdmin, domain.RoleTeacher),
			domain.GlobalScope(),
		).WithPlacement(domain.Placement{BranchID: branchX, Department: "science"})

		r := notification.RecipientFromActor(actor)

		assert.Equal(t, branchX, r.BranchID)
		assert.Equal(t, "science", r.Department)
		assert.True(t, notification.RecipientsOf(notification.Target{Type: notification.TargetBranch, BranchID: branchX})(r))
		assert.True(t, notification.RecipientsOf(notification.Target{Type: notification.TargetDepartment, Department: "science"})(r))
		assert.True(t, notification.RecipientsOf(notification.Target{Type: notification.TargetRole, Role: domain.RoleTeacher})(r))
		assert.False(t, notification.RecipientsOf(notification.Target{Type: notification.TargetDepartment, Department: "Science"})(r))
	})

	t.Run("authority scope alone does not place the reader", func(t *testing.T) {
		actor := domain.NewActor(uuid.NewString(), domain.NewRoleSet(domain.RoleBranchAdmin), domain.BranchScope(branchX, ""))

		r := notification.RecipientFromActor(actor)

		assert.Empty(t, r.BranchID)
		assert.False(t, notification.RecipientsOf(notification.Target{Type: notification.TargetBranch, BranchID: branchX})(r))
	})
}

func TestParseTarget(t *testing.T) {
	branchID := uuid.NewString()

	valid := []struct {
		name string
		req  notification.SendRequest
		want notification.Target
	}{
		{"all", notification.SendRequest{TargetType: "all"}, notification.Target{Type: "all"}},
		{"branch", notification.SendRequest{TargetType: "branch", TargetBranchID: branchID}, notification.Target{Type: "branch", BranchID: branchID}},
		{"department kept as given", notification.SendRequest{TargetType: "department", TargetDepartment: "Math"}, notification.Target{Type: "department", Department: "Math"}},
		{"role", notification.SendRequest{TargetType: "role", TargetRole: "sales"}, notification.Target{Type: "role", Role: domain.RoleSales}},
	}
	for _, tc := range valid {
		t.Run("success "+tc.name, func(t *testing.T) {
			got, err := notification.ParseTarget(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	invalid := []struct {
		name string
		req  notification.SendRequest
	}{
		{"all with qualifier", notification.SendRequest{TargetType: "all", TargetRole: "teacher"}},
		{"branch missing id", notification.SendRequest{TargetType: "branch"}},
		{"branch malformed id", notification.SendRequest{TargetType: "branch", TargetBranchID: "x"}},
		{"branch with role", notification.SendRequest{TargetType: "branch", TargetBranchID: branchID, TargetRole: "teacher"}},
		{"department blank", notification.SendRequest{TargetType: "department", TargetDepartment: "  "}},
		{"department padded", notification.SendRequest{TargetType: "department", TargetDepartment: " math "}},
		{"role unknown", notification.SendRequest{TargetType: "role", TargetRole: "janitor"}},
		{"role with department", notification.SendRequest{TargetType: "role", TargetRole: "teacher", TargetDepartment: "math"}},
		{"unknown type", notification.SendRequest{TargetType: "everyone"}},
	}
	for _, tc := range invalid {
		t.Run("negative "+tc.name, func(t *testing.T) {
			_, err := notification.ParseTarget(tc.req)
			assert.ErrorIs(t, err, notificationerrors.ErrInvalidTarget)
		})
	}
}

func TestAudienceScope(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	t.Run("branch department and roles", func(t *testing.T) {
		var rows []notification.Notification
		stmt := db.Scopes(notification.AudienceScope(notification.Recipient{
			BranchID:   "b-1",
			Department: "science",
			Roles:      domain.NewRoleSet(domain.RoleTeacher),
		})).Find(&rows).Statement

		sql := stmt.SQL.String()
		assert.Contains(t, sql, "target_type = $1")
		assert.Contains(t, sql, "target_branch_id = $3")
		assert.Contains(t, sql, "target_department = $5")
		assert.Contains(t, sql, "target_role IN ($7)")
		assert.Equal(t, []any{"all", "branch", "b-1", "department", "science", "role", "teacher"}, stmt.Vars)
	})

	t.Run("placed institute admin keeps branch targets", func(t *testing.T) {
		var rows []notification.Notification
		actor := domain.NewActor("acc-1", domain.NewRoleSet(domain.RoleInstituteAdmin, domain.RoleTeacher), domain.GlobalScope()).
			WithPlacement(domain.Placement{BranchID: "b-1", Department: "science"})
		stmt := db.Scopes(notification.AudienceScope(notification.RecipientFromActor(actor))).Find(&rows).Statement

		assert.Contains(t, stmt.SQL.String(), "target_branch_id = $3")
		assert.Contains(t, stmt.SQL.String(), "target_department = $5")
	})

	t.Run("no branch skips branch targets", func(t *testing.T) {
		var rows []notification.Notification
		stmt := db.Scopes(notification.AudienceScope(notification.Recipient{
			Roles: domain.NewRoleSet(domain.RoleInstituteAdmin),
		})).Find(&rows).Statement

		assert.NotContains(t, stmt.SQL.String(), "target_branch_id")
		assert.NotContains(t, stmt.SQL.String(), "target_department")
	})

	t.Run("blocked matches nothing", func(t *testing.T) {
		var rows []notification.Notification
		stmt := db.Scopes(notification.AudienceScope(notification.Recipient{})).Find(&rows).Statement

		assert.Contains(t, stmt.SQL.String(), "1 = 0")
	})
}
