package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"table-reservation/internal/handler/api"
	"table-reservation/internal/handler/middleware"
	"table-reservation/internal/pkg/config"
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
	reservationHandler *api.ReservationHandler,
	healthHandler *api.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	limiter *middleware.RateLimiter,
) {
	setupMiddleware(engine, cfg, logger, limiter)
	setupRoutes(engine, reservationHandler, healthHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, limiter *middleware.RateLimiter) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	engine.Use(limiter.Handler())
	logger.GetSlogLogger().Info("router middleware configured",
		"request_timeout", cfg.Server.RequestTimeout, "rate_limit", limiter != nil)
}

func setupRoutes(engine *gin.Engine, reservationHandler *api.ReservationHandler, healthHandler *api.HealthHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthHandler.Check)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	requireStaff := []gin.HandlerFunc{authMiddleware.RequireStaff()}

	v1 := engine.Group("/api/v1")
	{
		addRoutes(v1, []route{
			{Method: http.MethodGet, Path: "/availability", Handler: reservationHandler.Availability},
		})

		reservations := v1.Group("/reservations")
		addRoutes(reservations, []route{
			{Method: http.MethodGet, Path: "", Handler: reservationHandler.List},
			{Method: http.MethodGet, Path: "/range", Handler: reservationHandler.Range},
			{Method: http.MethodGet, Path: "/:id", Handler: reservationHandler.Get},
			{Method: http.MethodPost, Path: "", Handler: reservationHandler.Create, Mw: requireStaff},
			{Method: http.MethodPatch, Path: "/:id", Handler: reservationHandler.Update, Mw: requireStaff},
			{Method: http.MethodPut, Path: "/:id", Handler: reservationHandler.Update, Mw: requireStaff},
			{Method: http.MethodDelete, Path: "/:id", Handler: reservationHandler.Delete, Mw: requireStaff},
		})
	}
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
