package shifts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
)

// Repository defines persistence operations for the shifts table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shift *models.Shift) (*models.Shift, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	// FindByIDForUpdate takes a row lock; callable only inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Shift, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListForUser(ctx context.Context, userID uuid.UUID, filters ListFilters) (*ShiftList, error)
	FindReminderCandidates(ctx context.Context, from, to time.Time) ([]models.Shift, error)
	FindCompletionCandidates(ctx context.Context, before time.Time) ([]models.Shift, error)
}
