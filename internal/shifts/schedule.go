package shifts

import (
	"fmt"
	"time"

	"github.com/careswap-app/careswap-backend/pkg/db/models"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
)

// legacy rows carry "2006-01-02" dates and "15:04" local wall-clock times.
const (
	legacyDateLayout = "2006-01-02"
	legacyTimeLayout = "15:04"
)

// Window is the canonical resolved time window for a shift.
type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// ResolveWindow returns the shift's canonical window. Absolute instants win;
// rows imported from the old scheduler fall back to the legacy date +
// local-time pair interpreted in the shift's timezone. Unresolvable schedules
// are a validation error — time-guarded operations must never fail open.
func ResolveWindow(shift *models.Shift) (Window, error) {
	if shift == nil {
		return Window{}, pkgerrors.New(pkgerrors.CodeValidation, "shift required")
	}
	if shift.StartsAt != nil && shift.EndsAt != nil {
		return Window{StartsAt: *shift.StartsAt, EndsAt: *shift.EndsAt}, nil
	}

	start, err := resolveLegacyInstant(shift, shift.LegacyStart)
	if err != nil {
		return Window{}, err
	}
	end, err := resolveLegacyInstant(shift, shift.LegacyEnd)
	if err != nil {
		return Window{}, err
	}
	// Overnight shifts list an end wall-clock earlier than the start.
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return Window{StartsAt: start, EndsAt: end}, nil
}

// eventWindow resolves the window for outbox payloads. Unlike the
// time-guarded paths, event emission tolerates an unresolvable legacy
// schedule: a decision on a mangled row must still commit, so the payload
// carries zero instants instead.
func eventWindow(shift *models.Shift) Window {
	window, err := ResolveWindow(shift)
	if err != nil {
		return Window{}
	}
	return window
}

// ResolveStart is ResolveWindow for callers that only need the start instant
// (the cancellation guard tolerates rows missing an end time).
func ResolveStart(shift *models.Shift) (time.Time, error) {
	if shift == nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "shift required")
	}
	if shift.StartsAt != nil {
		return *shift.StartsAt, nil
	}
	return resolveLegacyInstant(shift, shift.LegacyStart)
}

func resolveLegacyInstant(shift *models.Shift, wallClock *string) (time.Time, error) {
	if shift.LegacyDate == nil || wallClock == nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "shift schedule is unresolvable")
	}
	loc, err := time.LoadLocation(shift.Timezone)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err,
			fmt.Sprintf("invalid shift timezone %q", shift.Timezone))
	}
	parsed, err := time.ParseInLocation(legacyDateLayout+" "+legacyTimeLayout,
		*shift.LegacyDate+" "+*wallClock, loc)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unparseable shift schedule")
	}
	return parsed, nil
}
