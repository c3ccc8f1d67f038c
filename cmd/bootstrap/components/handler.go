package components

import (
	"fieldservice/internal/handler"
	"fieldservice/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewBookingHandler,
		api.NewAvailabilityHandler,
		api.NewTechnicianHandler,
	),
	fx.Invoke(handler.NewRouter),
)
