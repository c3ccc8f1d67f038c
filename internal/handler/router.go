package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fieldservice/internal/handler/api"
	"fieldservice/internal/handler/middleware"
	"fieldservice/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	technicianHandler *api.TechnicianHandler,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, bookingHandler, availabilityHandler, technicianHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	availabilityHandler *api.AvailabilityHandler,
	technicianHandler *api.TechnicianHandler,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		bookings := apiGroup.Group("/bookings")
		bookings.Use(middleware.RequireUser())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMine},
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetByID},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: bookingHandler.Complete},
				{Method: http.MethodPost, Path: "/:id/reschedule", Handler: bookingHandler.Reschedule},
				{Method: http.MethodPost, Path: "/:id/advance", Handler: bookingHandler.Advance},
				{Method: http.MethodPatch, Path: "/:id/notes", Handler: bookingHandler.UpdateNotes},
			})
		}

		availability := apiGroup.Group("/availability")
		{
			addRoutes(availability, []route{
				{Method: http.MethodGet, Path: "/search", Handler: availabilityHandler.Search},
			})
		}

		technicians := apiGroup.Group("/technicians")
		{
			addRoutes(technicians, []route{
				{Method: http.MethodGet, Path: "/:id/availability", Handler: availabilityHandler.GetAvailability},
				{Method: http.MethodGet, Path: "/:id/agenda", Handler: availabilityHandler.GetAgenda},
				{Method: http.MethodPost, Path: "/:id/slots", Handler: technicianHandler.CreateSlot},
				{Method: http.MethodGet, Path: "/:id/slots", Handler: technicianHandler.ListSlots},
				{Method: http.MethodDelete, Path: "/:id/slots/:slotId", Handler: technicianHandler.DeleteSlot},
				{Method: http.MethodPost, Path: "/:id/unavailability", Handler: technicianHandler.CreateUnavailability},
				{Method: http.MethodGet, Path: "/:id/unavailability", Handler: technicianHandler.ListUnavailability},
				{Method: http.MethodDelete, Path: "/:id/unavailability/:blockId", Handler: technicianHandler.DeleteUnavailability},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
