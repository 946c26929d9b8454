package controllers

import (
	"net/http"

	"github.com/careswap-app/careswap-backend/api/responses"
	"github.com/careswap-app/careswap-backend/api/validators"
	"github.com/careswap-app/careswap-backend/internal/devices"
	"github.com/careswap-app/careswap-backend/pkg/enums"
	pkgerrors "github.com/careswap-app/careswap-backend/pkg/errors"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

type registerDeviceRequest struct {
	Token    string `json:"token" validate:"required"`
	Platform string `json:"platform" validate:"required"`
}

// RegisterDevice stores or refreshes a push token for the caller.
func RegisterDevice(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req registerDeviceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		platform, err := enums.ParseDevicePlatform(req.Platform)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform"))
			return
		}

		if err := svc.Register(r.Context(), devices.RegisterInput{
			UserID:   actor,
			Token:    req.Token,
			Platform: platform,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"registered": true})
	}
}
