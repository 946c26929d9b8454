package reviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	dbtypes "github.com/careswap-app/careswap-backend/pkg/db/types"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

type stubReviewsRepo struct {
	shift     *models.Shift
	user      *models.User
	insertErr error

	inserted    *models.Review
	userUpdates map[string]any
}

func (s *stubReviewsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubReviewsRepo) InsertReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	review.ID = uuid.New()
	s.inserted = review
	return review, nil
}

func (s *stubReviewsRepo) FindShiftByID(ctx context.Context, shiftID uuid.UUID) (*models.Shift, error) {
	if s.shift == nil || s.shift.ID != shiftID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.shift
	return &copied, nil
}

func (s *stubReviewsRepo) LockUserForUpdate(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.user
	return &copied, nil
}

func (s *stubReviewsRepo) UpdateUserRating(ctx context.Context, userID uuid.UUID, updates map[string]any) error {
	s.userUpdates = updates
	return nil
}

func (s *stubReviewsRepo) ListForReviewee(ctx context.Context, revieweeID uuid.UUID, limit int) ([]models.Review, error) {
	return nil, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func completedShift(reviewerID, revieweeID uuid.UUID) *models.Shift {
	start := time.Date(2026, 9, 5, 18, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	return &models.Shift{
		ID:             uuid.New(),
		ProposerID:     reviewerID,
		AccepterID:     revieweeID,
		ParticipantIDs: dbtypes.UUIDArray{reviewerID, revieweeID},
		StartsAt:       &start,
		EndsAt:         &end,
		Timezone:       "UTC",
		Status:         enums.ShiftStatusCompleted,
	}
}

func TestSubmitFoldsRatingIntoAggregate(t *testing.T) {
	reviewerID := uuid.New()
	revieweeID := uuid.New()
	repo := &stubReviewsRepo{
		shift: completedShift(reviewerID, revieweeID),
		user: &models.User{
			ID:              revieweeID,
			RatingAvg:       decimal.RequireFromString("4.5"),
			RatingCount:     2,
			RatingHistogram: dbtypes.RatingHistogram{0, 0, 0, 1, 1},
		},
	}
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    repo.shift.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     4,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// (4.5*2 + 4) / 3 = 4.33 after rounding.
	if want := decimal.RequireFromString("4.33"); !result.AvgRating.Equal(want) {
		t.Fatalf("avg mismatch: got %s want %s", result.AvgRating, want)
	}
	if result.ReviewCount != 3 {
		t.Fatalf("count mismatch: got %d", result.ReviewCount)
	}
	histogram := repo.userUpdates["rating_histogram"].(dbtypes.RatingHistogram)
	if histogram != (dbtypes.RatingHistogram{0, 0, 0, 2, 1}) {
		t.Fatalf("histogram mismatch: %v", histogram)
	}
	if repo.inserted == nil || repo.inserted.ShiftStartsAt == nil {
		t.Fatalf("review should carry denormalized shift window")
	}
}

func TestSubmitRejectsIncompleteShift(t *testing.T) {
	reviewerID := uuid.New()
	revieweeID := uuid.New()
	repo := &stubReviewsRepo{shift: completedShift(reviewerID, revieweeID)}
	repo.shift.Status = enums.ShiftStatusAccepted
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    repo.shift.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     5,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.inserted != nil {
		t.Fatalf("no review should be stored")
	}
}

func TestSubmitDuplicateIsConflict(t *testing.T) {
	reviewerID := uuid.New()
	revieweeID := uuid.New()
	repo := &stubReviewsRepo{
		shift:     completedShift(reviewerID, revieweeID),
		insertErr: errors.New(`duplicate key value violates unique constraint "ux_reviews_shift_reviewer"`),
	}
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    repo.shift.ID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     3,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.userUpdates != nil {
		t.Fatalf("aggregate must not move on duplicate")
	}
}

func TestSubmitByOutsiderForbidden(t *testing.T) {
	repo := &stubReviewsRepo{shift: completedShift(uuid.New(), uuid.New())}
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    repo.shift.ID,
		ReviewerID: uuid.New(),
		RevieweeID: repo.shift.AccepterID,
		Rating:     5,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSubmitRevieweeMustBeOtherParticipant(t *testing.T) {
	reviewerID := uuid.New()
	repo := &stubReviewsRepo{shift: completedShift(reviewerID, uuid.New())}
	svc, _ := NewService(repo, stubTxRunner{})

	_, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    repo.shift.ID,
		ReviewerID: reviewerID,
		RevieweeID: uuid.New(),
		Rating:     5,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitValidatesRatingRange(t *testing.T) {
	svc, _ := NewService(&stubReviewsRepo{}, stubTxRunner{})
	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Submit(context.Background(), SubmitInput{
			ShiftID:    uuid.New(),
			ReviewerID: uuid.New(),
			RevieweeID: uuid.New(),
			Rating:     rating,
		})
		if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("rating %d: expected validation error, got %v", rating, err)
		}
	}
}

func TestSubmitUnknownShiftNotFound(t *testing.T) {
	svc, _ := NewService(&stubReviewsRepo{}, stubTxRunner{})
	_, err := svc.Submit(context.Background(), SubmitInput{
		ShiftID:    uuid.New(),
		ReviewerID: uuid.New(),
		RevieweeID: uuid.New(),
		Rating:     4,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
