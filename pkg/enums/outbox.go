package enums

import "fmt"

// OutboxEventType enumerates the domain events emitted through the outbox.
type OutboxEventType string

const (
	EventShiftProposed    OutboxEventType = "shift_proposed"
	EventShiftAccepted    OutboxEventType = "shift_accepted"
	EventShiftRejected    OutboxEventType = "shift_rejected"
	EventShiftSwapOffered OutboxEventType = "shift_swap_offered"
	EventShiftSwapClosed  OutboxEventType = "shift_swap_closed"
	EventShiftCancelled   OutboxEventType = "shift_cancelled"
	EventShiftReminder    OutboxEventType = "shift_reminder"
	EventShiftCompleted   OutboxEventType = "shift_completed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventShiftProposed,
	EventShiftAccepted,
	EventShiftRejected,
	EventShiftSwapOffered,
	EventShiftSwapClosed,
	EventShiftCancelled,
	EventShiftReminder,
	EventShiftCompleted,
}

// IsValid checks whether the event type is one of the supported values.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw strings into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateShift OutboxAggregateType = "shift"
)

// IsValid checks whether the aggregate type is supported.
func (t OutboxAggregateType) IsValid() bool {
	return t == AggregateShift
}
