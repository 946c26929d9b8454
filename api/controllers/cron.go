package controllers

import (
	"context"
	"net/http"

	"github.com/careswap-app/careswap-backend/api/responses"
	"github.com/careswap-app/careswap-backend/internal/cron"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

// ShiftSweeper runs one reminder + completion pass over the shifts table.
type ShiftSweeper interface {
	Sweep(ctx context.Context) (*cron.SweepSummary, error)
}

// CronShiftSweep triggers the shift sweep on demand. External schedulers hit
// this route with the shared secret; the cron worker runs the same job on its
// own cadence, and both paths converge on the sweep's idempotency guards.
func CronShiftSweep(sweeper ShiftSweeper, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sweeper == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sweep unavailable"))
			return
		}

		summary, err := sweeper.Sweep(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "shift sweep failed"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"ok":      true,
			"summary": summary,
		})
	}
}
