package notification

import (
	"strings"

	"go-institute/internal/domain"
	notificationerrors "go-institute/internal/notification/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TargetAll        = "all"
	TargetBranch     = "branch"
	TargetDepartment = "department"
	TargetRole       = "role"
)

// Target is the declarative audience of a notification. Exactly one
// qualifier is set, matching Type; "all" carries none.
type Target struct {
	Type       string
	BranchID   string
	Department string
	Role       domain.Role
}

// Recipient is what targeting knows about a reader at read time.
type Recipient struct {
	AccountID  string
	BranchID   string
	Department string
	Roles      domain.RoleSet
}

// RecipientFromActor matches on the account's placement, not its authority
// scope, so a placed institute admin still receives branch notifications.
func RecipientFromActor(actor domain.Actor) Recipient {
	return Recipient{
		AccountID:  actor.AccountID,
		BranchID:   actor.Placement.BranchID,
		Department: actor.Placement.Department,
		Roles:      actor.Roles(),
	}
}

// RecipientsOf returns the audience predicate of a target. Blocked accounts
// match nothing.
func RecipientsOf(t Target) func(Recipient) bool {
	return func(r Recipient) bool {
		if r.Roles.IsEmpty() {
			return false
		}
		switch t.Type {
		case TargetAll:
			return true
		case TargetBranch:
			return r.BranchID != "" && r.BranchID == t.BranchID
		case TargetDepartment:
			return r.Department != "" && r.Department == t.Department
		case TargetRole:
			return r.Roles.Has(t.Role)
		default:
			return false
		}
	}
}

// AudienceScope is RecipientsOf as a query filter on notifications.
func AudienceScope(r Recipient) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.Roles.IsEmpty() {
			return db.Where("1 = 0")
		}

		clauses := []string{"target_type = ?"}
		args := []any{TargetAll}
		if r.BranchID != "" {
			clauses = append(clauses, "(target_type = ? AND target_branch_id = ?)")
			args = append(args, TargetBranch, r.BranchID)
		}
		if r.Department != "" {
			clauses = append(clauses, "(target_type = ? AND target_department = ?)")
			args = append(args, TargetDepartment, r.Department)
		}
		clauses = append(clauses, "(target_type = ? AND target_role IN ?)")
		args = append(args, TargetRole, r.Roles.Strings())

		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// ParseTarget validates a send request's target. Departments match
// case-sensitively on the stored string, so a padded department is
// rejected rather than rewritten.
func ParseTarget(req SendRequest) (Target, error) {
	branchID := strings.TrimSpace(req.TargetBranchID)
	department := req.TargetDepartment
	role := strings.TrimSpace(req.TargetRole)

	t := Target{Type: req.TargetType}
	switch req.TargetType {
	case TargetAll:
		if branchID != "" || strings.TrimSpace(department) != "" || role != "" {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
	case TargetBranch:
		if strings.TrimSpace(department) != "" || role != "" {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		if _, err := uuid.Parse(branchID); err != nil {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		t.BranchID = branchID
	case TargetDepartment:
		if strings.TrimSpace(department) == "" || department != strings.TrimSpace(department) {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		if branchID != "" || role != "" {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		t.Department = department
	case TargetRole:
		if branchID != "" || strings.TrimSpace(department) != "" {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		r, ok := domain.ParseRole(role)
		if !ok {
			return Target{}, notificationerrors.ErrInvalidTarget
		}
		t.Role = r
	default:
		return Target{}, notificationerrors.ErrInvalidTarget
	}
	return t, nil
}
