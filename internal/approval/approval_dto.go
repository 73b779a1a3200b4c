package approval

type SubmitRequest struct {
	RequestType string `json:"request_type" binding:"required,oneof=leave problem resource other"`
	Subject     string `json:"subject" binding:"required,max=255"`
	Description string `json:"description"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ListFilter struct {
	Status string `form:"status" binding:"omitempty,oneof=pending branch_approved admin_approved rejected"`
}

type RequestResponse struct {
	ID               string  `json:"id"`
	ReferenceNo      string  `json:"reference_no"`
	BranchID         string  `json:"branch_id"`
	RequesterID      string  `json:"requester_id"`
	RequestType      string  `json:"request_type"`
	Subject          string  `json:"subject"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	BranchApprovedBy *string `json:"branch_approved_by,omitempty"`
	BranchApprovedAt *string `json:"branch_approved_at,omitempty"`
	AdminApprovedBy  *string `json:"admin_approved_by,omitempty"`
	AdminApprovedAt  *string `json:"admin_approved_at,omitempty"`
	RejectedBy       *string `json:"rejected_by,omitempty"`
	RejectedAt       *string `json:"rejected_at,omitempty"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`
	CreatedAt        string  `json:"created_at"`
}
