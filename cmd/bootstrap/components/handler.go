package components

import (
	"table-reservation/internal/handler"
	"table-reservation/internal/handler/api"
	"table-reservation/internal/handler/middleware"
	"table-reservation/internal/usecase/shared"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		func(store shared.UnitOfWork) *api.HealthHandler {
			return api.NewHealthHandler(store)
		},
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
