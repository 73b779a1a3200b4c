package counter

import (
	"context"
	"database/sql"

	"go-institute/internal/shared/connection"

	"gorm.io/gorm"
)

const TypeRequestReference = "request_reference"

//go:generate mockgen -source=counter_repo.go -destination=mock/counter_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, branchID string, counterType string) (int64, error)
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

func (r *repository) GetNextValue(ctx context.Context, branchID string, counterType string) (int64, error) {
	var nextValue int64

	// Atomic upsert-and-increment per branch/type.
	err := connection.Session(ctx, r.db, r.tx).Raw(`
		INSERT INTO branch_counters (branch_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (branch_id, counter_type) DO UPDATE
		SET last_value = branch_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, branchID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
