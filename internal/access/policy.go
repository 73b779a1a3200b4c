package access

import "go-institute/internal/domain"

const (
	ownAny = "any"
	ownYes = "own"
	ownNo  = "other"
)

type rule struct {
	role     domain.Role
	resource domain.ResourceKind
	actions  []domain.Action
	own      string
}

var readWrite = []domain.Action{domain.ActionRead, domain.ActionWrite}

// matrix is the within-branch role-action policy. Branch isolation and the
// institute-admin bypass are decided before it is consulted.
var matrix = []rule{
	{domain.RoleBranchAdmin, domain.ResourceEmployee, readWrite, ownAny},
	{domain.RoleBranchAdmin, domain.ResourceStudent, readWrite, ownAny},
	{domain.RoleBranchAdmin, domain.ResourceRequest, []domain.Action{domain.ActionRead, domain.ActionWrite, domain.ActionApprove}, ownAny},
	{domain.RoleBranchAdmin, domain.ResourceReport, readWrite, ownAny},
	{domain.RoleBranchAdmin, domain.ResourceNotification, []domain.Action{domain.ActionSend}, ownAny},
	{domain.RoleBranchAdmin, domain.ResourceProfile, readWrite, ownYes},

	{domain.RoleTeacher, domain.ResourceMaterial, readWrite, ownAny},
	{domain.RoleTeacher, domain.ResourceStudent, []domain.Action{domain.ActionRead}, ownYes},
	{domain.RoleTeacher, domain.ResourceRequest, readWrite, ownYes},
	{domain.RoleTeacher, domain.ResourceProfile, readWrite, ownYes},

	{domain.RoleSales, domain.ResourceLead, readWrite, ownAny},
	{domain.RoleSales, domain.ResourceEnrollment, readWrite, ownAny},
	{domain.RoleSales, domain.ResourceRequest, readWrite, ownYes},
	{domain.RoleSales, domain.ResourceProfile, readWrite, ownYes},

	{domain.RoleSupport, domain.ResourceTicket, readWrite, ownAny},
	{domain.RoleSupport, domain.ResourceRequest, readWrite, ownYes},
	{domain.RoleSupport, domain.ResourceProfile, readWrite, ownYes},

	{domain.RoleStudent, domain.ResourceProfile, readWrite, ownYes},
	{domain.RoleStudent, domain.ResourceEnrollment, readWrite, ownYes},
	{domain.RoleStudent, domain.ResourcePayment, readWrite, ownYes},
}

func policyRows() [][]string {
	rows := make([][]string, 0, len(matrix)*3)
	for _, r := range matrix {
		for _, act := range r.actions {
			rows = append(rows, []string{string(r.role), string(r.resource), string(act), r.own})
		}
	}
	return rows
}
