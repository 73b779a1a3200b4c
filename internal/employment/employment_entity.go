package employment

import (
	"time"

	"github.com/google/uuid"
)

// Employment places an account at a branch. Student-only accounts may have a
// record without a branch; employee-class accounts never do.
type Employment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_employment_account"`
	BranchID    *string   `gorm:"type:uuid;index:idx_employments_branch"`
	Department  string    `gorm:"type:varchar(100)"`
	Designation string    `gorm:"type:varchar(100)"`
	Salary      int64     `gorm:"type:bigint;not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e Employment) Branch() string {
	if e.BranchID == nil {
		return ""
	}
	return *e.BranchID
}
