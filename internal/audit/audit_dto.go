package audit

type EntryResponse struct {
	EventID    string `json:"event_id"`
	RequestID  string `json:"request_id"`
	Action     string `json:"action"`
	ActorID    string `json:"actor_id"`
	FromStatus string `json:"from_status,omitempty"`
	ToStatus   string `json:"to_status"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
