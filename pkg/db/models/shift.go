package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/careswap-app/careswap-backend/pkg/db/types"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	"github.com/careswap-app/careswap-backend/pkg/types"
)

// Shift is one two-party care-exchange appointment. Rows are never deleted;
// terminal statuses are retained for history and reviews.
//
// StartsAt/EndsAt are the authoritative instants. The legacy date/local-time
// columns may still be populated on rows imported from the old scheduler and
// are reconciled into canonical instants at the aggregate boundary.
type Shift struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProposerID     uuid.UUID          `gorm:"column:proposer_id;type:uuid;not null"`
	AccepterID     uuid.UUID          `gorm:"column:accepter_id;type:uuid;not null"`
	ParticipantIDs dbtypes.UUIDArray  `gorm:"column:participant_ids;type:uuid[];not null"`
	StartsAt       *time.Time         `gorm:"column:starts_at;type:timestamptz"`
	EndsAt         *time.Time         `gorm:"column:ends_at;type:timestamptz"`
	LegacyDate     *string            `gorm:"column:legacy_date;type:text"`
	LegacyStart    *string            `gorm:"column:legacy_start_time;type:text"`
	LegacyEnd      *string            `gorm:"column:legacy_end_time;type:text"`
	Timezone       string             `gorm:"column:timezone;not null;default:'UTC'"`
	Status         enums.ShiftStatus  `gorm:"column:status;type:shift_status;not null;default:'proposed'"`
	SwapDetails    *types.SwapDetails `gorm:"column:swap_details;type:jsonb;serializer:json"`

	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	CancelledBy      *uuid.UUID          `gorm:"column:cancelled_by;type:uuid"`
	CancelReasonCode *enums.CancelReason `gorm:"column:cancel_reason_code;type:text"`
	CancelReasonText *string             `gorm:"column:cancel_reason_text;type:text"`
	// CancellationWindowHours overrides the default cutoff for this shift.
	CancellationWindowHours int `gorm:"column:cancellation_window_hours;not null;default:4"`

	StartReminderSentAt *time.Time `gorm:"column:start_reminder_sent_at"`
	CompletedAt         *time.Time `gorm:"column:completed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
