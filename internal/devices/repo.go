package devices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
)

// Repository stores and loads per-user push tokens.
type Repository interface {
	Upsert(ctx context.Context, token *models.DeviceToken) error
	ListTokensForUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error)
	TokensForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a device token repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Upsert refreshes last_seen_at when the (user, token) pair already exists.
func (r *repository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "token"}},
			DoUpdates: clause.Assignments(map[string]any{
				"platform":     token.Platform,
				"last_seen_at": time.Now().UTC(),
			}),
		}).
		Create(token).Error
}

func (r *repository) ListTokensForUser(ctx context.Context, userID uuid.UUID) ([]models.DeviceToken, error) {
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_seen_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) TokensForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID][]string{}, nil
	}
	var rows []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]string, len(userIDs))
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.Token)
	}
	return out, nil
}
