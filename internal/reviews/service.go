package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/pkg/db"
	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records reviews and maintains the reviewee's rating aggregate.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	ListForReviewee(ctx context.Context, revieweeID uuid.UUID, limit int) ([]models.Review, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a review service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Submit inserts the review and folds the rating into the reviewee's running
// average, count, and histogram in one transaction. The unique index on
// (shift_id, reviewer_id) makes concurrent duplicates lose cleanly.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if input.ShiftID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shift id required")
	}
	if input.ReviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.RevieweeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewee id required")
	}
	if input.RevieweeID == input.ReviewerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot review yourself")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	var result *SubmitResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shift, err := repo.FindShiftByID(ctx, input.ShiftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shift")
		}
		if !shift.ParticipantIDs.Contains(input.ReviewerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only shift participants can leave a review")
		}
		other, ok := shift.ParticipantIDs.Other(input.ReviewerID)
		if !ok || other != input.RevieweeID {
			return pkgerrors.New(pkgerrors.CodeValidation, "reviewee must be the other shift participant")
		}
		if shift.Status != enums.ShiftStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeValidation, "reviews open once the shift is completed")
		}

		review := &models.Review{
			ShiftID:       shift.ID,
			ReviewerID:    input.ReviewerID,
			RevieweeID:    input.RevieweeID,
			Rating:        input.Rating,
			Comment:       input.Comment,
			ShiftStartsAt: shift.StartsAt,
			ShiftEndsAt:   shift.EndsAt,
		}
		stored, err := repo.InsertReview(ctx, review)
		if err != nil {
			if db.IsUniqueViolation(err, "ux_reviews_shift_reviewer") {
				return pkgerrors.New(pkgerrors.CodeConflict, "review already submitted for this shift")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert review")
		}

		reviewee, err := repo.LockUserForUpdate(ctx, input.RevieweeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reviewee not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock reviewee")
		}

		count := reviewee.RatingCount
		newAvg := reviewee.RatingAvg.
			Mul(decimal.NewFromInt(int64(count))).
			Add(decimal.NewFromInt(int64(input.Rating))).
			Div(decimal.NewFromInt(int64(count + 1))).
			Round(2)
		histogram := reviewee.RatingHistogram
		if err := histogram.Bucket(input.Rating); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bucket rating")
		}

		updates := map[string]any{
			"rating_avg":       newAvg,
			"rating_count":     count + 1,
			"rating_histogram": histogram,
		}
		if err := repo.UpdateUserRating(ctx, reviewee.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rating aggregate")
		}

		result = &SubmitResult{
			ReviewID:    stored.ID,
			AvgRating:   newAvg,
			ReviewCount: count + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListForReviewee(ctx context.Context, revieweeID uuid.UUID, limit int) ([]models.Review, error) {
	if revieweeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewee id required")
	}
	rows, err := s.repo.ListForReviewee(ctx, revieweeID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return rows, nil
}
