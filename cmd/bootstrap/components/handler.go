package components

import (
	"shuttlecourt/internal/handler"
	"shuttlecourt/internal/handler/api"
	"shuttlecourt/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewBookingHandler,
		api.NewCheckoutHandler,
		api.NewAdminHandler,
		api.NewSweepHandler,
		middleware.NewAuthMiddleware,
		func(
			auth *api.AuthHandler,
			booking *api.BookingHandler,
			checkout *api.CheckoutHandler,
			admin *api.AdminHandler,
			sweep *api.SweepHandler,
		) handler.Handlers {
			return handler.Handlers{
				Auth:     auth,
				Booking:  booking,
				Checkout: checkout,
				Admin:    admin,
				Sweep:    sweep,
			}
		},
	),
	fx.Invoke(handler.NewRouter),
)
