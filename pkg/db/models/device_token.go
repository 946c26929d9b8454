package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/enums"
)

// DeviceToken registers a push token for a user's device. Tokens form a
// per-user set: re-registration refreshes last_seen_at instead of duplicating.
type DeviceToken struct {
	ID         uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_device_tokens_user_token"`
	Token      string               `gorm:"column:token;type:text;not null;uniqueIndex:ux_device_tokens_user_token"`
	Platform   enums.DevicePlatform `gorm:"column:platform;type:text;not null"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	LastSeenAt time.Time            `gorm:"column:last_seen_at;not null;default:now()"`
}
