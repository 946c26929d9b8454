package types

import (
	"time"

	"github.com/google/uuid"
)

// SwapDetails holds the proposed replacement window while a shift sits in
// swap_proposed. Present on a shift iff its status is swap_proposed.
type SwapDetails struct {
	ProposerID uuid.UUID `json:"proposerId"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	ProposedAt time.Time `json:"proposedAt"`
}
