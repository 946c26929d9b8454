package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
)

// Repository covers the review insert plus the reviewee aggregate rows it
// touches in the same transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertReview(ctx context.Context, review *models.Review) (*models.Review, error)
	FindShiftByID(ctx context.Context, shiftID uuid.UUID) (*models.Shift, error)
	LockUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateUserRating(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	ListForReviewee(ctx context.Context, revieweeID uuid.UUID, limit int) ([]models.Review, error)
}
