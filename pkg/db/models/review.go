package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is one participant's rating of the other for a completed shift.
// Created exactly once per (shift, reviewer) pair, never updated.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShiftID    uuid.UUID `gorm:"column:shift_id;type:uuid;not null;uniqueIndex:ux_reviews_shift_reviewer"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;uniqueIndex:ux_reviews_shift_reviewer"`
	RevieweeID uuid.UUID `gorm:"column:reviewee_id;type:uuid;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment;type:text"`

	// Window metadata denormalized from the shift at review time.
	ShiftStartsAt *time.Time `gorm:"column:shift_starts_at;type:timestamptz"`
	ShiftEndsAt   *time.Time `gorm:"column:shift_ends_at;type:timestamptz"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
