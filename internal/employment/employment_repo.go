package employment

import (
	"context"
	"database/sql"

	"go-institute/internal/shared/connection"
	"go-institute/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employment_repo.go -destination=mock/employment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByAccount(ctx context.Context, accountID string) (*Employment, error)
	FindAllByBranch(ctx context.Context, branchID string) ([]Employment, error)
	Upsert(ctx context.Context, e *Employment) error
	BranchIsActive(ctx context.Context, branchID string) (bool, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) FindByAccount(ctx context.Context, accountID string) (*Employment, error) {
	var e Employment
	err := connection.Session(ctx, r.db, r.tx).
		First(&e, "account_id = ?", accountID).Error
	return &e, err
}

func (r *repository) FindAllByBranch(ctx context.Context, branchID string) ([]Employment, error) {
	var rows []Employment
	err := connection.Session(ctx, r.db, r.tx).
		Scopes(tenant.Branch(branchID)).
		Order("department, designation").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Upsert(ctx context.Context, e *Employment) error {
	return connection.Session(ctx, r.db, r.tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"branch_id", "department", "designation", "salary", "updated_at"}),
		}).
		Create(e).Error
}

func (r *repository) BranchIsActive(ctx context.Context, branchID string) (bool, error) {
	var count int64
	err := connection.Session(ctx, r.db, r.tx).
		Table("branches").
		Where("id = ?", branchID).
		Where("is_active = ?", true).
		Count(&count).Error
	return count > 0, err
}
