package branch

import (
	"time"

	"github.com/google/uuid"
)

type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_branch_code"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Location  string    `gorm:"type:text"`
	Phone     string    `gorm:"type:varchar(30)"`
	Email     string    `gorm:"type:varchar(255)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
