package branch

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=branch_repo.go -destination=mock/branch_repo_mock.go -package=mock
type Repository interface {
	FindAllActive(ctx context.Context) ([]Branch, error)
	FindByID(ctx context.Context, id string) (*Branch, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAllActive(ctx context.Context) ([]Branch, error) {
	var branches []Branch
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&branches).Error
	return branches, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Branch, error) {
	var b Branch
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return &b, err
}
