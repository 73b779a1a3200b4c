package events

import "time"

const RequestLifecycleTopic = "institute.request.lifecycle.v1"

const (
	RequestSubmitted      = "request_submitted"
	RequestBranchApproved = "request_branch_approved"
	RequestAdminApproved  = "request_admin_approved"
	RequestRejected       = "request_rejected"
)

// RequestLifecycleEvent is published once per committed workflow transition.
// CorrelationID carries the HTTP request id that caused it.
type RequestLifecycleEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	RequestID     string    `json:"request_id"`
	ReferenceNo   string    `json:"reference_no"`
	BranchID      string    `json:"branch_id"`
	ActorID       string    `json:"actor_id"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
