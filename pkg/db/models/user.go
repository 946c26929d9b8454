package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/careswap-app/careswap-backend/pkg/db/types"
)

// User represents the canonical identity entity. The rating fields form the
// running aggregate owned exclusively by the reviews service; no other path
// writes them.
type User struct {
	ID              uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string                   `gorm:"type:text;not null;uniqueIndex"`
	FirstName       string                   `gorm:"column:first_name;not null"`
	LastName        string                   `gorm:"column:last_name;not null"`
	Timezone        string                   `gorm:"column:timezone;not null;default:'UTC'"`
	RatingAvg       decimal.Decimal          `gorm:"column:rating_avg;type:numeric(4,2);not null;default:0"`
	RatingCount     int                      `gorm:"column:rating_count;not null;default:0"`
	RatingHistogram dbtypes.RatingHistogram  `gorm:"column:rating_histogram;type:jsonb;not null;default:'[0,0,0,0,0]'"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
