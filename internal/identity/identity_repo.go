package identity

import (
	"context"
	"database/sql"

	"go-institute/internal/domain"
	"go-institute/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=identity_repo.go -destination=mock/identity_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByID(ctx context.Context, id string) (*Account, error)
	// LockByID loads the account row FOR UPDATE so concurrent role
	// replacements on one account serialize.
	LockByID(ctx context.Context, id string) (*Account, error)
	ReplaceRoles(ctx context.Context, accountID uuid.UUID, roles []domain.Role) error
	UpdateProfile(ctx context.Context, a *Account) error
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

func (r *repository) FindByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := connection.Session(ctx, r.db, r.tx).
		Preload("Roles").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) LockByID(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := connection.Session(ctx, r.db, r.tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Roles").
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) ReplaceRoles(ctx context.Context, accountID uuid.UUID, roles []domain.Role) error {
	db := connection.Session(ctx, r.db, r.tx)

	if err := db.Where("account_id = ?", accountID).Delete(&AccountRole{}).Error; err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}

	rows := make([]AccountRole, len(roles))
	for i, role := range roles {
		rows[i] = AccountRole{AccountID: accountID, Role: string(role)}
	}
	return db.Create(&rows).Error
}

func (r *repository) UpdateProfile(ctx context.Context, a *Account) error {
	return connection.Session(ctx, r.db, r.tx).
		Model(&Account{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"display_name": a.DisplayName,
			"phone":        a.Phone,
			"city":         a.City,
		}).Error
}
