package approval

const (
	StatusPending        = "pending"
	StatusBranchApproved = "branch_approved"
	StatusAdminApproved  = "admin_approved"
	StatusRejected       = "rejected"
)

const (
	TypeLeave    = "leave"
	TypeProblem  = "problem"
	TypeResource = "resource"
	TypeOther    = "other"
)

var AllStatuses = []string{StatusPending, StatusBranchApproved, StatusAdminApproved, StatusRejected}

// transitions is the complete edge set of the workflow.
var transitions = map[string][]string{
	StatusPending:        {StatusBranchApproved, StatusRejected},
	StatusBranchApproved: {StatusAdminApproved, StatusRejected},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return status == StatusAdminApproved || status == StatusRejected
}

func validRequestType(t string) bool {
	switch t {
	case TypeLeave, TypeProblem, TypeResource, TypeOther:
		return true
	default:
		return false
	}
}
