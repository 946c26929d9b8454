package shifts

import (
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
)

// ProposeInput carries everything needed to create a shift in proposed state.
type ProposeInput struct {
	ProposerID  uuid.UUID
	RecipientID uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
	Timezone    string
	// CancellationWindowHours overrides the default cutoff; zero keeps it.
	CancellationWindowHours int
}

// DecideInput resolves a proposed shift one way or the other.
type DecideInput struct {
	ShiftID     uuid.UUID
	ActorUserID uuid.UUID
	Accept      bool
}

// SwapInput counter-offers a new window on an accepted shift.
type SwapInput struct {
	ShiftID     uuid.UUID
	ActorUserID uuid.UUID
	StartsAt    time.Time
	EndsAt      time.Time
}

// SwapResponseInput resolves a pending swap offer.
type SwapResponseInput struct {
	ShiftID     uuid.UUID
	ActorUserID uuid.UUID
	Accept      bool
}

// CancelInput carries the cancellation request.
type CancelInput struct {
	ShiftID     uuid.UUID
	ActorUserID uuid.UUID
	ReasonCode  enums.CancelReason
	ReasonText  *string
}

// CancelResult reports the committed cancellation back to the caller.
type CancelResult struct {
	ShiftID     uuid.UUID `json:"shiftId"`
	OtherUserID uuid.UUID `json:"otherUserUid"`
	CutoffHours int       `json:"cutoffHours"`
}

// ListFilters describe the inputs supported by the shift list.
type ListFilters struct {
	Status *enums.ShiftStatus
	Limit  int
	Cursor string
}

// ShiftList wraps the paginated shifts plus the next page cursor.
type ShiftList struct {
	Shifts     []models.Shift `json:"shifts"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
