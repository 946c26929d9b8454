package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/api/responses"
	"github.com/careswap-app/careswap-backend/api/validators"
	"github.com/careswap-app/careswap-backend/internal/shifts"
	"github.com/careswap-app/careswap-backend/pkg/db/models"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

type proposeShiftRequest struct {
	AccepterUID             uuid.UUID  `json:"accepterUid" validate:"required"`
	StartsAt                *time.Time `json:"startsAt"`
	EndsAt                  *time.Time `json:"endsAt"`
	Date                    *string    `json:"date"`
	StartTime               *string    `json:"startTime"`
	EndTime                 *string    `json:"endTime"`
	Timezone                string     `json:"timezone"`
	CancellationWindowHours int        `json:"cancellationWindowHours" validate:"omitempty,min=1,max=168"`
}

// window returns the proposed instants, resolving legacy date + wall-clock
// bodies the same way stored legacy rows resolve.
func (req proposeShiftRequest) window() (time.Time, time.Time, error) {
	if req.StartsAt != nil && req.EndsAt != nil {
		return *req.StartsAt, *req.EndsAt, nil
	}
	if req.Date == nil || req.StartTime == nil || req.EndTime == nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation,
			"either startsAt/endsAt or date/startTime/endTime is required")
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	resolved, err := shifts.ResolveWindow(&models.Shift{
		LegacyDate:  req.Date,
		LegacyStart: req.StartTime,
		LegacyEnd:   req.EndTime,
		Timezone:    tz,
	})
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return resolved.StartsAt, resolved.EndsAt, nil
}

// ProposeShift creates a shift in proposed state addressed to one caregiver.
func ProposeShift(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req proposeShiftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, end, err := req.window()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.Propose(r.Context(), shifts.ProposeInput{
			ProposerID:              actor,
			RecipientID:             req.AccepterUID,
			StartsAt:                start,
			EndsAt:                  end,
			Timezone:                req.Timezone,
			CancellationWindowHours: req.CancellationWindowHours,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shift)
	}
}

// AcceptShift lets the addressed caregiver accept a proposed shift.
func AcceptShift(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return decideShift(svc, logg, true)
}

// RejectShift lets the addressed caregiver decline a proposed shift.
func RejectShift(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return decideShift(svc, logg, false)
}

func decideShift(svc shifts.Service, logg *logger.Logger, accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.Decide(r.Context(), shifts.DecideInput{
			ShiftID:     shiftID,
			ActorUserID: actor,
			Accept:      accept,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

type swapShiftRequest struct {
	StartsAt time.Time `json:"startsAt" validate:"required"`
	EndsAt   time.Time `json:"endsAt" validate:"required"`
}

// ProposeShiftSwap counter-offers a new window on an accepted shift.
func ProposeShiftSwap(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req swapShiftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.ProposeSwap(r.Context(), shifts.SwapInput{
			ShiftID:     shiftID,
			ActorUserID: actor,
			StartsAt:    req.StartsAt,
			EndsAt:      req.EndsAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

type swapResponseRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

// RespondShiftSwap resolves a pending swap offer one way or the other.
func RespondShiftSwap(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req swapResponseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.RespondSwap(r.Context(), shifts.SwapResponseInput{
			ShiftID:     shiftID,
			ActorUserID: actor,
			Accept:      *req.Accept,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

type cancelShiftRequest struct {
	ReasonCode string  `json:"reasonCode" validate:"required"`
	ReasonText *string `json:"reasonText" validate:"omitempty,max=500"`
}

// CancelShift cancels an accepted shift inside the cancellation window.
func CancelShift(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cancelShiftRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseCancelReason(req.ReasonCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reasonCode"))
			return
		}

		result, err := svc.Cancel(r.Context(), shifts.CancelInput{
			ShiftID:     shiftID,
			ActorUserID: actor,
			ReasonCode:  reason,
			ReasonText:  req.ReasonText,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"ok":           true,
			"shiftId":      result.ShiftID,
			"otherUserUid": result.OtherUserID,
			"cutoffHours":  result.CutoffHours,
		})
	}
}

// GetShift returns a single shift to one of its participants.
func GetShift(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shiftID, err := pathUUID(r, "shiftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shift, err := svc.Get(r.Context(), shiftID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shift)
	}
}

// ListShifts pages through the caller's shifts, newest first.
func ListShifts(svc shifts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := shifts.ListFilters{
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseShiftStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		limit, err := queryLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Limit = limit

		list, err := svc.ListForUser(r.Context(), actor, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
