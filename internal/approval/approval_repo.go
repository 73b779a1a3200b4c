package approval

import (
	"context"
	"database/sql"

	"go-institute/internal/domain"
	"go-institute/internal/shared/connection"
	"go-institute/internal/tenant"

	"gorm.io/gorm"
)

// ListQuery selects requests either by requester or by scope. RequesterID
// wins when both are set.
type ListQuery struct {
	Scope       domain.Scope
	RequesterID string
	Status      string
}

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *Request) error
	FindByID(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, q ListQuery) ([]Request, error)
	// UpdateStatus moves a request from one status to another only if it is
	// still in from. It reports false when another writer got there first.
	UpdateStatus(ctx context.Context, id, from, to string, fields map[string]any) (bool, error)
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

func (r *repository) Create(ctx context.Context, req *Request) error {
	return connection.Session(ctx, r.db, r.tx).Create(req).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Request, error) {
	var req Request
	err := connection.Session(ctx, r.db, r.tx).First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) List(ctx context.Context, q ListQuery) ([]Request, error) {
	db := connection.Session(ctx, r.db, r.tx).Model(&Request{})
	if q.RequesterID != "" {
		db = db.Where("requester_id = ?", q.RequesterID)
	} else {
		db = db.Scopes(tenant.ForScope(q.Scope))
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var requests []Request
	err := db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) UpdateStatus(ctx context.Context, id, from, to string, fields map[string]any) (bool, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = to

	res := connection.Session(ctx, r.db, r.tx).
		Model(&Request{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
