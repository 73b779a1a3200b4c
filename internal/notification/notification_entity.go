package notification

import (
	"time"

	"go-institute/internal/domain"

	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title   string    `gorm:"type:varchar(255);not null"`
	Message string    `gorm:"type:text;not null"`

	TargetType       string     `gorm:"type:varchar(20);not null;index:idx_notifications_target"`
	TargetBranchID   *uuid.UUID `gorm:"type:uuid;index:idx_notifications_target"`
	TargetDepartment *string    `gorm:"type:varchar(100)"`
	TargetRole       *string    `gorm:"type:varchar(30)"`

	SenderID  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"index:idx_notifications_created_at"`
}

// Read records the first time an account opened a notification.
type Read struct {
	NotificationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID      uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_notification_reads_account"`
	ReadAt         time.Time `gorm:"not null"`
}

func (Read) TableName() string {
	return "notification_reads"
}

func (n Notification) Target() Target {
	t := Target{Type: n.TargetType}
	if n.TargetBranchID != nil {
		t.BranchID = n.TargetBranchID.String()
	}
	if n.TargetDepartment != nil {
		t.Department = *n.TargetDepartment
	}
	if n.TargetRole != nil {
		t.Role = domain.Role(*n.TargetRole)
	}
	return t
}
