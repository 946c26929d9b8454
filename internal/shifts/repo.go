package shifts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	dbtypes "github.com/careswap-app/careswap-backend/pkg/db/types"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a shifts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, shift *models.Shift) (*models.Shift, error) {
	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Shift, error) {
	var shift models.Shift
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, filters ListFilters) (*ShiftList, error) {
	limit := pagination.NormalizeLimit(filters.Limit)

	q := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("participant_ids @> ?", dbtypes.UUIDArray{userID})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if cursor, err := pagination.ParseCursor(filters.Cursor); err != nil {
		return nil, err
	} else if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Shift
	err := q.Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ShiftList{}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:limit]
	}
	list.Shifts = rows
	return list, nil
}

func (r *repository) FindReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	var rows []models.Shift
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ShiftStatusAccepted).
		Where("start_reminder_sent_at IS NULL").
		Where("(starts_at >= ? AND starts_at <= ?) OR (starts_at IS NULL AND legacy_date IS NOT NULL)", from, to).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindCompletionCandidates(ctx context.Context, before time.Time) ([]models.Shift, error) {
	var rows []models.Shift
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ShiftStatusAccepted).
		Where("(ends_at IS NOT NULL AND ends_at <= ?) OR (ends_at IS NULL AND legacy_date IS NOT NULL)", before).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
