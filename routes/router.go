package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/wellbeing/config"
	"github.com/cppla/wellbeing/controllers"
	"github.com/cppla/wellbeing/middleware"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Auth      *services.AuthService
	CheckIns  *services.CheckInService
	Dashboard *services.DashboardService
	Demo      *services.DemoService
	Issuer    *utils.TokenIssuer
	Blacklist *utils.TokenBlacklist
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, deps Deps) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	accessLog := accessLogger(cfg)
	r.Use(ginzap.Ginzap(accessLog, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(deps.Auth, deps.Issuer, deps.Blacklist)
	checkInController := controllers.NewCheckInController(deps.CheckIns)
	analyticsController := controllers.NewAnalyticsController(deps.Dashboard)
	demoController := controllers.NewDemoController(deps.Demo, authController)
	configController := controllers.NewConfigController(cfg)

	requireAuth := middleware.AuthRequired(deps.Issuer, deps.Blacklist)
	limit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	api := r.Group("/api/v1")
	api.GET("/config", configController.GetSettings)

	authGroup := api.Group("/auth")
	authGroup.Use(limit)
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", requireAuth, authController.Logout)
	authGroup.GET("/me", requireAuth, authController.Me)

	demoGroup := api.Group("/demo")
	demoGroup.Use(limit)
	demoGroup.POST("/start", middleware.OptionalAuth(deps.Issuer, deps.Blacklist), demoController.Start)
	demoGroup.POST("/reset", requireAuth, demoController.Reset)
	demoGroup.POST("/end", requireAuth, demoController.End)

	protected := api.Group("")
	protected.Use(requireAuth, limit)

	protected.GET("/checkins", checkInController.List)
	protected.POST("/checkins", checkInController.Create)
	protected.GET("/checkins/today", checkInController.Today)
	protected.GET("/checkins/:id", checkInController.Show)
	protected.PUT("/checkins/:id", checkInController.Update)
	protected.DELETE("/checkins/:id", checkInController.Delete)

	protected.GET("/dashboard", analyticsController.Dashboard)
	protected.GET("/analytics/summary", analyticsController.Summary)
	protected.GET("/analytics/weekdays", analyticsController.Weekdays)
	protected.GET("/analytics/overview", analyticsController.Overview)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "not found")
	})

	return r
}

// accessLogger writes gin access logs to their own rolling file when GinPath
// is set and to the application logger otherwise.
func accessLogger(cfg config.AppConfig) *zap.Logger {
	if cfg.GinPath == "" {
		return utils.Logger
	}
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		utils.Sugar.Warnf("gin access log %s unavailable, using app logger: %v", cfg.GinPath, err)
		return utils.Logger
	}
	return gl
}
