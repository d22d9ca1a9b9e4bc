// Package http assembles the gin router: middleware chain, public routes and
// the bearer-protected session routes.
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	appservice "github.com/embedpro/pids-licensing/internal/application/service"
	"github.com/embedpro/pids-licensing/internal/config"
	"github.com/embedpro/pids-licensing/internal/infrastructure/monitoring"
	"github.com/embedpro/pids-licensing/internal/interfaces/http/handlers"
	"github.com/embedpro/pids-licensing/internal/interfaces/http/middleware"
	"github.com/embedpro/pids-licensing/pkg/constants"
	"github.com/embedpro/pids-licensing/pkg/logger"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config   *config.Config
	Log      logger.Logger
	Metrics  *monitoring.Metrics
	Licenses *appservice.LicenseAppService
	Auth     *appservice.AuthAppService
	Redis    *goredis.Client
}

// NewRouter builds the HTTP engine.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(deps.Metrics),
		cors.New(cors.Config{
			AllowOrigins: deps.Config.Server.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		}),
	)

	healthHandler := handlers.NewHealthHandler(deps.Redis)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		deps.Metrics.Registry, promhttp.HandlerOpts{})))

	authHandler := handlers.NewAuthHandler(deps.Auth)
	licenseHandler := handlers.NewLicenseHandler(deps.Licenses)

	api := engine.Group(constants.APIBasePath)
	{
		api.POST("/signin", authHandler.SignIn)
		api.POST("/renewToken", authHandler.Renew)

		api.POST("/createLicence", licenseHandler.Create)
		api.PUT("/updateLicence", licenseHandler.Update)
		api.DELETE("/deleteLicence", licenseHandler.Delete)
		api.POST("/activateLicence", licenseHandler.Activate)
		api.GET("/getLicenceInfo", licenseHandler.Info)
		api.GET("/getAllLicenses", licenseHandler.ListAll)

		protected := api.Group("", middleware.JWTAuth(deps.Auth))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.PUT("/changePassword", authHandler.ChangePassword)
		}
	}

	return engine
}
