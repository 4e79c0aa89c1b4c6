package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trademind/internal/core"
	"github.com/example/trademind/internal/middleware"
	"github.com/example/trademind/internal/session"
	"github.com/example/trademind/internal/staticserver"
)

// Dependencies are the services and settings the routes are built from.
type Dependencies struct {
	Auth          core.AuthService
	Profiles      core.ProfileService
	Verifier      middleware.TokenVerifier
	Cookies       *session.CookieCodec
	Static        *staticserver.Server
	RedirectDelay time.Duration
	TickInterval  time.Duration

	// GoogleSignIn is one of the GoogleSignIn* modes; empty means disabled.
	GoogleSignIn   string
	GoogleClientID string
}

// SetupRoutes configures all the application routes. Global middleware (logging, recovery, CORS)
// is expected to be applied to router before this function is called.
func SetupRoutes(router *gin.Engine, deps Dependencies, logger *zap.Logger) {
	authMW := middleware.NewAuthMiddleware(deps.Verifier, deps.Cookies, deps.Auth, logger)

	authHandler := NewAuthHandler(deps.Auth, deps.Cookies, deps.RedirectDelay, logger)
	userHandler := NewUserHandler(deps.Profiles, logger)
	recordHandler := NewRecordHandler(deps.Profiles, logger)
	dashboardHandler := NewDashboardHandler(
		session.NewBootstrap(deps.Auth, deps.Profiles, logger),
		deps.Profiles, deps.Cookies, deps.Auth, deps.TickInterval, logger,
	)

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.SignUp)
			authGroup.POST("/signin", authHandler.SignIn)
			authGroup.POST("/google", authHandler.GoogleSignIn)
			authGroup.POST("/reset-password", authHandler.ResetPassword)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/signout", authMW.VerifyToken(), authHandler.SignOut)
			authGroup.GET("/state", authHandler.AuthState)
		}

		apiV1.POST("/validate/password", authHandler.PasswordStrength)
		apiV1.GET("/config", clientConfig(deps))

		usersGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			usersGroup.GET("/me", userHandler.GetCurrentUserProfile)
			usersGroup.PATCH("/me", userHandler.UpdateCurrentUserProfile)
		}

		recordsGroup := apiV1.Group("", authMW.VerifyToken())
		{
			recordsGroup.POST("/signals", recordHandler.CreateSignal)
			recordsGroup.GET("/signals", recordHandler.ListSignals)
			recordsGroup.POST("/trades", recordHandler.CreateTrade)
			recordsGroup.GET("/trades", recordHandler.ListTrades)
			recordsGroup.POST("/alerts", recordHandler.CreateAlert)
			recordsGroup.GET("/alerts", recordHandler.ListAlerts)
			recordsGroup.DELETE("/alerts/:alertId", recordHandler.DeleteAlert)
			recordsGroup.GET("/ticks", dashboardHandler.Ticks)
		}
	}

	router.GET("/index.html", dashboardHandler.Dashboard)
	router.GET("/dashboard", dashboardHandler.Dashboard)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "TradeMind server is healthy."})
	})
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	if deps.Static != nil {
		router.NoRoute(deps.Static.Serve)
	}

	logger.Info("API routes configured successfully under /api/v1, dashboard and static files.")
}

// clientConfig handles GET /api/v1/config.
func clientConfig(deps Dependencies) gin.HandlerFunc {
	resp := ClientConfigResponse{GoogleSignIn: GoogleSignInDisabled}
	switch deps.GoogleSignIn {
	case GoogleSignInEmail:
		resp.GoogleSignIn = GoogleSignInEmail
	case GoogleSignInIdentityServices:
		if deps.GoogleClientID != "" {
			resp.GoogleSignIn = GoogleSignInIdentityServices
			resp.GoogleClientID = deps.GoogleClientID
		}
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, resp)
	}
}
