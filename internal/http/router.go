package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/quayline/terminal-backend/internal/config"
	"github.com/quayline/terminal-backend/internal/db"
	"github.com/quayline/terminal-backend/internal/http/handlers"
	"github.com/quayline/terminal-backend/internal/http/middleware"
	"github.com/quayline/terminal-backend/internal/service"

	_ "github.com/quayline/terminal-backend/docs"
)

type Services struct {
	Vessels    *service.VesselService
	Operations *service.OperationService
	Berths     *service.BerthService
	Teams      *service.TeamService
	Ledger     *service.LedgerService
}

func Router(cfg config.Config, store *db.Store, svcs Services, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		DB:         store,
		Vessels:    svcs.Vessels,
		Operations: svcs.Operations,
		Berths:     svcs.Berths,
		Teams:      svcs.Teams,
		Ledger:     svcs.Ledger,
		Validator:  validator.New(),
		Logger:     logger,
		AdminKey:   cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/vessels", h.VesselsList)
		api.GET("/vessels/:id", h.VesselDetails)
		api.GET("/vessels/:id/progress", h.VesselProgress)
		api.GET("/vessels/:id/zones/:zone", h.ZoneProgress)
		api.GET("/operations", h.OperationsList)
		api.GET("/operations/:id", h.OperationDetails)
		api.GET("/berths", h.BerthsStatus)
		api.GET("/teams", h.TeamsList)
		api.GET("/teams/:id", h.TeamDetails)
		api.GET("/assignments", h.AssignmentsList)
		api.GET("/assignments/:id", h.AssignmentDetails)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/vessels", h.VesselCreate)
		admin.POST("/vessels/:id/arrive", h.VesselArrive)
		admin.POST("/vessels/:id/depart", h.VesselDepart)
		admin.POST("/vessels/:id/discharge", h.VesselDischarge)
		admin.POST("/operations", h.OperationCreate)
		admin.POST("/operations/:id/steps/:step", h.OperationCompleteStep)
		admin.POST("/operations/:id/cargo", h.OperationCargoProgress)
		admin.POST("/operations/:id/cancel", h.OperationCancel)
		admin.POST("/operations/:id/berth", h.BerthAssign)
		admin.POST("/operations/:id/berth/release", h.BerthRelease)
		admin.POST("/teams", h.TeamCreate)
		admin.POST("/teams/match", h.TeamMatch)
		admin.POST("/teams/:id/assign", h.TeamAssign)
		admin.POST("/teams/:id/complete", h.TeamCompleteAssignment)
		admin.POST("/assignments", h.AssignmentCreate)
		admin.POST("/assignments/:id/start", h.AssignmentStart)
		admin.POST("/assignments/:id/complete", h.AssignmentComplete)
		admin.POST("/assignments/:id/cancel", h.AssignmentCancel)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
