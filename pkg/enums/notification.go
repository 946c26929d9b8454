package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeShiftProposed  NotificationType = "shift_proposed"
	NotificationTypeShiftAccepted  NotificationType = "shift_accepted"
	NotificationTypeShiftRejected  NotificationType = "shift_rejected"
	NotificationTypeSwapProposed   NotificationType = "swap_proposed"
	NotificationTypeSwapResolved   NotificationType = "swap_resolved"
	NotificationTypeShiftCancelled NotificationType = "shift_cancelled"
	NotificationTypeShiftReminder  NotificationType = "shift_reminder"
	NotificationTypeShiftCompleted NotificationType = "shift_completed"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeShiftProposed,
	NotificationTypeShiftAccepted,
	NotificationTypeShiftRejected,
	NotificationTypeSwapProposed,
	NotificationTypeSwapResolved,
	NotificationTypeShiftCancelled,
	NotificationTypeShiftReminder,
	NotificationTypeShiftCompleted,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
