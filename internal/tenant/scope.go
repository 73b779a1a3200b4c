package tenant

import (
	"go-institute/internal/domain"

	"gorm.io/gorm"
)

// Branch restricts a query to rows owned by branchID.
func Branch(branchID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_id = ?", branchID)
	}
}

// ForScope restricts a query to what the scope covers. A global scope is
// unrestricted; a scope without a branch matches nothing.
func ForScope(scope domain.Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if scope.Global {
			return db
		}
		if scope.BranchID == "" {
			return db.Where("1 = 0")
		}
		return db.Where("branch_id = ?", scope.BranchID)
	}
}
