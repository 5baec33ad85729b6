package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/siwe-auth/service"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures the HTTP surface
type RouterOptions struct {
	Cookies   CookieOptions
	RateLimit float64 // requests per second per client on /auth, 0 disables
	Log       logrus.FieldLogger
}

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(opts.Log))

	handlers := NewAuthHandlers(authService, opts.Cookies, opts.Log)

	// Auth routes
	auth := router.Group("/auth")
	if opts.RateLimit > 0 {
		auth.Use(RateLimit(NewRateLimiter(opts.RateLimit)))
	}
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/authorize", handlers.Authorize)
		auth.GET("/session", handlers.Session)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/signout", handlers.SignOut)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
