package enums

import "fmt"

// CancelReason codes the participant-supplied reason for a cancellation.
type CancelReason string

const (
	CancelReasonIllness   CancelReason = "illness"
	CancelReasonEmergency CancelReason = "emergency"
	CancelReasonSchedule  CancelReason = "schedule_conflict"
	CancelReasonChildcare CancelReason = "childcare_fallthrough"
	CancelReasonOther     CancelReason = "other"
)

var validCancelReasons = []CancelReason{
	CancelReasonIllness,
	CancelReasonEmergency,
	CancelReasonSchedule,
	CancelReasonChildcare,
	CancelReasonOther,
}

// IsValid checks whether the given reason matches the canonical enum.
func (r CancelReason) IsValid() bool {
	for _, candidate := range validCancelReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseCancelReason converts raw strings into CancelReason.
func ParseCancelReason(value string) (CancelReason, error) {
	for _, candidate := range validCancelReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel reason %q", value)
}

// Label returns the human-readable reason used in notification bodies.
func (r CancelReason) Label() string {
	switch r {
	case CancelReasonIllness:
		return "illness"
	case CancelReasonEmergency:
		return "a family emergency"
	case CancelReasonSchedule:
		return "a schedule conflict"
	case CancelReasonChildcare:
		return "childcare falling through"
	default:
		return "personal reasons"
	}
}
