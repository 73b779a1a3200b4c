package notification

import (
	"context"
	"database/sql"
	"time"

	"go-institute/internal/shared/connection"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	ListForAudience(ctx context.Context, r Recipient) ([]Notification, error)
	ReadTimes(ctx context.Context, accountID string, ids []uuid.UUID) (map[uuid.UUID]time.Time, error)
	// InsertRead reports false when the account had already read it.
	InsertRead(ctx context.Context, read *Read) (bool, error)
	CountUnread(ctx context.Context, r Recipient) (int64, error)
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

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return connection.Session(ctx, r.db, r.tx).Create(n).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := connection.Session(ctx, r.db, r.tx).First(&n, "id = ?", id).Error
	return &n, err
}

func (r *repository) ListForAudience(ctx context.Context, rcpt Recipient) ([]Notification, error) {
	var items []Notification
	err := connection.Session(ctx, r.db, r.tx).
		Scopes(AudienceScope(rcpt)).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) ReadTimes(ctx context.Context, accountID string, ids []uuid.UUID) (map[uuid.UUID]time.Time, error) {
	out := make(map[uuid.UUID]time.Time, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var reads []Read
	err := connection.Session(ctx, r.db, r.tx).
		Where("account_id = ? AND notification_id IN ?", accountID, ids).
		Find(&reads).Error
	if err != nil {
		return nil, err
	}
	for _, rd := range reads {
		out[rd.NotificationID] = rd.ReadAt
	}
	return out, nil
}

func (r *repository) InsertRead(ctx context.Context, read *Read) (bool, error) {
	res := connection.Session(ctx, r.db, r.tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "notification_id"}, {Name: "account_id"}},
			DoNothing: true,
		}).
		Create(read)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CountUnread(ctx context.Context, rcpt Recipient) (int64, error) {
	var count int64
	err := connection.Session(ctx, r.db, r.tx).
		Model(&Notification{}).
		Scopes(AudienceScope(rcpt)).
		Where("NOT EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = notifications.id AND nr.account_id = ?)", rcpt.AccountID).
		Count(&count).Error
	return count, err
}
