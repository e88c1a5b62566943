package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmoj/authd/service"
)

// SetupRouter wires the route surface: public auth endpoints, the
// gate-protected user management endpoints, and the internal
// service-to-service validation endpoint.
func SetupRouter(authService *service.AuthService, cookieName string, cookieTTL time.Duration, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	handlers := NewHandlers(authService, cookieName, cookieTTL, logger)
	gate := AuthMiddleware(authService, cookieName)

	auth := router.Group("/api/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", gate, handlers.Logout)
		auth.POST("/refresh-token", gate, handlers.RefreshToken)
	}

	users := router.Group("/api/users")
	{
		users.POST("/validate-username-available", handlers.UsernameAvailable)
		users.POST("/update-user", gate, handlers.UpdateUser)
		users.POST("/update-user-password", gate, handlers.UpdatePassword)
	}

	internal := router.Group("/api/internal")
	{
		internal.POST("/auth/validate-token", handlers.ValidateToken)
	}

	return router
}
