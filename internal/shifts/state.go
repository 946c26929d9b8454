package shifts

import (
	"fmt"

	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/enums"
)

// transitions is the authoritative edge set. Every trigger surface (HTTP
// handlers, event consumers, the sweep) funnels through CheckTransition so
// the guard logic exists exactly once.
var transitions = map[enums.ShiftStatus][]enums.ShiftStatus{
	enums.ShiftStatusProposed: {
		enums.ShiftStatusAccepted,
		enums.ShiftStatusRejected,
		enums.ShiftStatusCancelled,
	},
	enums.ShiftStatusAccepted: {
		enums.ShiftStatusSwapProposed,
		enums.ShiftStatusCancelled,
		enums.ShiftStatusCompleted,
	},
	// A pending swap offer must be answered before the shift can be
	// cancelled, so swap_proposed only ever resolves back to accepted.
	enums.ShiftStatusSwapProposed: {
		enums.ShiftStatusAccepted,
	},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to enums.ShiftStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a typed error for illegal edges. Transitions out of
// a terminal status surface as state conflicts so callers can render
// "already handled" instead of a generic failure.
func CheckTransition(from, to enums.ShiftStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("shift cannot move from %s to %s", from, to))
}
