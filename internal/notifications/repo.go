package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/pagination"
)

// ListFilters narrows a recipient's notification feed.
type ListFilters struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

// NotificationList is one page of a recipient's feed.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"nextCursor,omitempty"`
}

// Repository stores durable notification records.
type Repository interface {
	// Upsert inserts the notification unless its deterministic identity
	// (user, type, subject) already exists. Reports whether a row was written.
	Upsert(ctx context.Context, notification *models.Notification) (bool, error)
	List(ctx context.Context, userID uuid.UUID, filters ListFilters) (*NotificationList, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, notification *models.Notification) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}, {Name: "subject_id"}},
			DoNothing: true,
		}).
		Create(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID, filters ListFilters) (*NotificationList, error) {
	limit := pagination.NormalizeLimit(filters.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)
	if filters.UnreadOnly {
		q = q.Where("read_at IS NULL")
	}
	if cursor, err := pagination.ParseCursor(filters.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Notification
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &NotificationList{}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	list.Notifications = rows
	return list, nil
}

// MarkRead stamps read_at once; re-marking an already-read row keeps the
// original timestamp.
func (r *repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		UpdateColumn("read_at", gorm.Expr("COALESCE(read_at, ?)", at))
	return result.RowsAffected, result.Error
}

func (r *repository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		UpdateColumn("read_at", at)
	return result.RowsAffected, result.Error
}
