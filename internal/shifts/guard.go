package shifts

import (
	"fmt"
	"time"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

// DefaultCancellationWindowHours applies when a shift carries no override.
const DefaultCancellationWindowHours = 4

// EffectiveCutoffHours returns the cancellation lead time for the shift.
func EffectiveCutoffHours(shift *models.Shift) int {
	if shift == nil || shift.CancellationWindowHours <= 0 {
		return DefaultCancellationWindowHours
	}
	return shift.CancellationWindowHours
}

// CheckCancellationCutoff enforces the lead-time rule: cancellation is allowed
// only while now <= start - cutoff. The rule is actor-independent.
func CheckCancellationCutoff(shift *models.Shift, now time.Time) error {
	start, err := ResolveStart(shift)
	if err != nil {
		return err
	}
	cutoff := EffectiveCutoffHours(shift)
	deadline := start.Add(-time.Duration(cutoff) * time.Hour)
	if now.After(deadline) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cancellation window closed: shifts lock %d hours before start", cutoff)).
			WithDetails(map[string]any{
				"cutoffHours": cutoff,
				"startsAt":    start,
			})
	}
	return nil
}
