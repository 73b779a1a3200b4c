package audit

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	// Insert stores e unless an entry with the same event id exists and
	// reports whether a row was written.
	Insert(ctx context.Context, e *Entry) (bool, error)
	ListByRequest(ctx context.Context, requestID string) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, e *Entry) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByRequest(ctx context.Context, requestID string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("occurred_at ASC").
		Find(&entries).Error
	return entries, err
}
