package reviews

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitInput carries one participant's rating of the other for a shift.
type SubmitInput struct {
	ShiftID    uuid.UUID
	ReviewerID uuid.UUID
	RevieweeID uuid.UUID
	Rating     int
	Comment    *string
}

// SubmitResult reports the stored review plus the reviewee's updated aggregate.
type SubmitResult struct {
	ReviewID    uuid.UUID       `json:"reviewId"`
	AvgRating   decimal.Decimal `json:"avgRating"`
	ReviewCount int             `json:"reviewCount"`
}
