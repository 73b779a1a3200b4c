package identity

import (
	"time"

	"go-institute/internal/domain"

	"github.com/google/uuid"
)

type Account struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	DisplayName string    `gorm:"column:display_name;type:varchar(255);not null"`
	Email       string    `gorm:"column:email;type:text;uniqueIndex"`
	Phone       string    `gorm:"column:phone;type:varchar(30)"`
	City        string    `gorm:"column:city;type:varchar(100)"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Roles []AccountRole `gorm:"foreignKey:AccountID;references:ID"`
}

type AccountRole struct {
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;primaryKey"`
	Role      string    `gorm:"column:role;type:varchar(30);primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AccountRole) TableName() string {
	return "account_roles"
}

// RoleSet drops stored values outside the closed role set rather than
// granting anything for them.
func (a Account) RoleSet() domain.RoleSet {
	set := domain.NewRoleSet()
	for _, ar := range a.Roles {
		if r, ok := domain.ParseRole(ar.Role); ok {
			set[r] = struct{}{}
		}
	}
	return set
}

// Profile is an account together with its current status.
type Profile struct {
	Account Account
	Status  domain.AccountStatus
}
