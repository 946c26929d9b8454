package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/api/responses"
	"github.com/careswap-app/careswap-backend/api/validators"
	"github.com/careswap-app/careswap-backend/internal/reviews"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

type submitReviewRequest struct {
	RevieweeUID uuid.UUID `json:"revieweeUid" validate:"required"`
	Rating      int       `json:"rating" validate:"required,min=1,max=5"`
	Comment     *string   `json:"comment" validate:"omitempty,max=2000"`
}

// SubmitReview records a post-completion review and returns the reviewee's
// refreshed rating aggregate.
func SubmitReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req submitReviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), reviews.SubmitInput{
			ShiftID:    shiftID,
			ReviewerID: actor,
			RevieweeID: req.RevieweeUID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"ok":          true,
			"reviewId":    result.ReviewID,
			"avgRating":   result.AvgRating,
			"reviewCount": result.ReviewCount,
		})
	}
}
