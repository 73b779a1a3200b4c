package employment

type AssignEmploymentRequest struct {
	BranchID    string `json:"branch_id" binding:"omitempty,uuid"`
	Department  string `json:"department" binding:"omitempty,max=100"`
	Designation string `json:"designation" binding:"omitempty,max=100"`
	Salary      int64  `json:"salary" binding:"gte=0"`
}

type EmploymentResponse struct {
	AccountID   string `json:"account_id"`
	BranchID    string `json:"branch_id,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
	Salary      int64  `json:"salary"`
	UpdatedAt   string `json:"updated_at"`
}
