package enums

import "fmt"

// ShiftStatus maps to the shift_status enum in Postgres.
type ShiftStatus string

const (
	ShiftStatusProposed     ShiftStatus = "proposed"
	ShiftStatusAccepted     ShiftStatus = "accepted"
	ShiftStatusRejected     ShiftStatus = "rejected"
	ShiftStatusSwapProposed ShiftStatus = "swap_proposed"
	ShiftStatusCancelled    ShiftStatus = "cancelled"
	ShiftStatusCompleted    ShiftStatus = "completed"
)

var validShiftStatuses = []ShiftStatus{
	ShiftStatusProposed,
	ShiftStatusAccepted,
	ShiftStatusRejected,
	ShiftStatusSwapProposed,
	ShiftStatusCancelled,
	ShiftStatusCompleted,
}

// IsValid checks whether the given status matches the canonical enum.
func (s ShiftStatus) IsValid() bool {
	for _, candidate := range validShiftStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s ShiftStatus) IsTerminal() bool {
	switch s {
	case ShiftStatusRejected, ShiftStatusCancelled, ShiftStatusCompleted:
		return true
	}
	return false
}

// ParseShiftStatus converts raw strings into ShiftStatus.
func ParseShiftStatus(value string) (ShiftStatus, error) {
	for _, candidate := range validShiftStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shift status %q", value)
}
