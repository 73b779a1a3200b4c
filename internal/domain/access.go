package domain

type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionApprove Action = "approve"
	ActionSend    Action = "send"
)

type ResourceKind string

const (
	ResourceEmployee     ResourceKind = "employee"
	ResourceStudent      ResourceKind = "student"
	ResourceRequest      ResourceKind = "request"
	ResourceReport       ResourceKind = "report"
	ResourceMaterial     ResourceKind = "material"
	ResourceLead         ResourceKind = "lead"
	ResourceEnrollment   ResourceKind = "enrollment"
	ResourceTicket       ResourceKind = "ticket"
	ResourceProfile      ResourceKind = "profile"
	ResourcePayment      ResourceKind = "payment"
	ResourceNotification ResourceKind = "notification"
)

// Resource describes the record an action targets. BranchID is the owning
// branch; OwnerID is the account the record belongs to or is assigned to
// (the student for a profile, the assigned teacher for a student record).
type Resource struct {
	Kind     ResourceKind
	ID       string
	BranchID string
	OwnerID  string
}

func (r Resource) OwnedBy(accountID string) bool {
	return accountID != "" && r.OwnerID == accountID
}

type AccessCheckRequest struct {
	Action   string `json:"action" binding:"required,oneof=read write approve send"`
	Resource string `json:"resource" binding:"required"`
	BranchID string `json:"branch_id"`
	OwnerID  string `json:"owner_id"`
}

type AccessCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}
