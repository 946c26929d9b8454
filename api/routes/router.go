package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careswap-app/careswap-backend/api/controllers"
	"github.com/careswap-app/careswap-backend/api/middleware"
	"github.com/careswap-app/careswap-backend/internal/devices"
	"github.com/careswap-app/careswap-backend/internal/notifications"
	"github.com/careswap-app/careswap-backend/internal/reviews"
	"github.com/careswap-app/careswap-backend/internal/shifts"
	"github.com/careswap-app/careswap-backend/pkg/config"
	"github.com/careswap-app/careswap-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	DB            pinger
	Redis         pinger
	Shifts        shifts.Service
	Reviews       reviews.Service
	Notifications notifications.Service
	Devices       devices.Service
	Sweeper       controllers.ShiftSweeper
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/cron", func(r chi.Router) {
		r.Use(middleware.CronSecret(cfg.Cron.SharedSecret, logg))
		r.Get("/shifts", controllers.CronShiftSweep(deps.Sweeper, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", controllers.ListShifts(deps.Shifts, logg))
			r.Post("/", controllers.ProposeShift(deps.Shifts, logg))
			r.Route("/{shiftId}", func(r chi.Router) {
				r.Get("/", controllers.GetShift(deps.Shifts, logg))
				r.Post("/accept", controllers.AcceptShift(deps.Shifts, logg))
				r.Post("/reject", controllers.RejectShift(deps.Shifts, logg))
				r.Post("/swap", controllers.ProposeShiftSwap(deps.Shifts, logg))
				r.Post("/swap/respond", controllers.RespondShiftSwap(deps.Shifts, logg))
				r.Post("/cancel", controllers.CancelShift(deps.Shifts, logg))
				r.Post("/review", controllers.SubmitReview(deps.Reviews, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Post("/devices", controllers.RegisterDevice(deps.Devices, logg))
	})

	return r
}
