package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/types"
)

// Notification stores in-app notification payloads scoped to a recipient.
// The (UserID, Type, SubjectID) triple is the deterministic identity for a
// logical event: re-processing the same event upserts instead of inserting.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_notifications_user_type_subject"`
	Type      enums.NotificationType `gorm:"type:notification_type;not null;uniqueIndex:ux_notifications_user_type_subject"`
	SubjectID uuid.UUID              `gorm:"column:subject_id;type:uuid;not null;uniqueIndex:ux_notifications_user_type_subject"`
	Title     string                 `gorm:"type:text;not null"`
	Message   string                 `gorm:"type:text;not null"`
	Link      *string                `gorm:"type:text"`
	Data      types.JSONMap          `gorm:"column:data;type:jsonb;serializer:json"`
	ReadAt    *time.Time             `gorm:"type:timestamptz"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}
