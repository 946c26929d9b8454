package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/enums"
)

// ShiftProposedEvent signals a caregiver asked another family to cover a shift.
type ShiftProposedEvent struct {
	ShiftID     uuid.UUID `json:"shiftId"`
	ProposerID  uuid.UUID `json:"proposerId"`
	RecipientID uuid.UUID `json:"recipientId"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
}

// ShiftDecisionEvent is emitted when the recipient accepts or rejects.
type ShiftDecisionEvent struct {
	ShiftID    uuid.UUID         `json:"shiftId"`
	ProposerID uuid.UUID         `json:"proposerId"`
	DeciderID  uuid.UUID         `json:"deciderId"`
	Status     enums.ShiftStatus `json:"status"`
	StartsAt   time.Time         `json:"startsAt"`
	EndsAt     time.Time         `json:"endsAt"`
}

// ShiftSwapOfferedEvent carries the counter-offered window.
type ShiftSwapOfferedEvent struct {
	ShiftID          uuid.UUID `json:"shiftId"`
	ProposerID       uuid.UUID `json:"proposerId"`
	RecipientID      uuid.UUID `json:"recipientId"`
	ProposedStartsAt time.Time `json:"proposedStartsAt"`
	ProposedEndsAt   time.Time `json:"proposedEndsAt"`
}

// ShiftSwapClosedEvent reports the outcome of a swap offer.
type ShiftSwapClosedEvent struct {
	ShiftID     uuid.UUID         `json:"shiftId"`
	OffererID   uuid.UUID         `json:"offererId"`
	ResponderID uuid.UUID         `json:"responderId"`
	Accepted    bool              `json:"accepted"`
	Status      enums.ShiftStatus `json:"status"`
	StartsAt    time.Time         `json:"startsAt"`
	EndsAt      time.Time         `json:"endsAt"`
}

// ShiftCancelledEvent is emitted whenever either participant cancels.
type ShiftCancelledEvent struct {
	ShiftID      uuid.UUID          `json:"shiftId"`
	CancellerID  uuid.UUID          `json:"cancellerId"`
	Reason       enums.CancelReason `json:"reason"`
	Note         string             `json:"note,omitempty"`
	CancelledAt  time.Time          `json:"cancelledAt"`
	StartsAt     time.Time          `json:"startsAt"`
	Participants []uuid.UUID        `json:"participants"`
}

// ShiftReminderEvent tells downstream systems a shift starts within the hour.
type ShiftReminderEvent struct {
	ShiftID      uuid.UUID   `json:"shiftId"`
	StartsAt     time.Time   `json:"startsAt"`
	Participants []uuid.UUID `json:"participants"`
}

// ShiftCompletedEvent is emitted when the sweep marks a finished shift done.
type ShiftCompletedEvent struct {
	ShiftID      uuid.UUID   `json:"shiftId"`
	CompletedAt  time.Time   `json:"completedAt"`
	EndsAt       time.Time   `json:"endsAt"`
	Participants []uuid.UUID `json:"participants"`
}
