package approval

import (
	"time"

	"github.com/google/uuid"
)

type Request struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferenceNo string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_requests_branch_reference"`
	BranchID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_requests_branch_reference;index:idx_requests_branch_status"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index:idx_requests_requester"`

	RequestType string `gorm:"type:varchar(20);not null"`
	Subject     string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	Status           string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_requests_branch_status"`
	BranchApprovedBy *uuid.UUID `gorm:"type:uuid"`
	BranchApprovedAt *time.Time
	AdminApprovedBy  *uuid.UUID `gorm:"type:uuid"`
	AdminApprovedAt  *time.Time
	RejectedBy       *uuid.UUID `gorm:"type:uuid"`
	RejectedAt       *time.Time
	RejectionReason  *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
