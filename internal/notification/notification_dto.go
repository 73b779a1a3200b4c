package notification

type SendRequest struct {
	Title            string `json:"title" binding:"required,max=255"`
	Message          string `json:"message" binding:"required"`
	TargetType       string `json:"target_type" binding:"required,oneof=all branch department role"`
	TargetBranchID   string `json:"target_branch_id"`
	TargetDepartment string `json:"target_department"`
	TargetRole       string `json:"target_role"`
}

type NotificationResponse struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Message          string  `json:"message"`
	TargetType       string  `json:"target_type"`
	TargetBranchID   *string `json:"target_branch_id,omitempty"`
	TargetDepartment *string `json:"target_department,omitempty"`
	TargetRole       *string `json:"target_role,omitempty"`
	SenderID         string  `json:"sender_id"`
	CreatedAt        string  `json:"created_at"`
	Read             bool    `json:"read"`
	ReadAt           *string `json:"read_at,omitempty"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}
