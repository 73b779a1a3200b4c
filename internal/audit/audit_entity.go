package audit

import (
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_request_audit_event"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index:idx_request_audit_request"`
	BranchID   string    `gorm:"type:varchar(64);not null"`
	Action     string    `gorm:"type:varchar(40);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	FromStatus string    `gorm:"type:varchar(20)"`
	ToStatus   string    `gorm:"type:varchar(20);not null"`
	Reason     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null;index:idx_request_audit_request"`
	CreatedAt  time.Time
}

func (Entry) TableName() string {
	return "request_audit_entries"
}
