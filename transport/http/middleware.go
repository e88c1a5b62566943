package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/service"
)

// identityKey is the gin context key the gate files the resolved
// identity under.
const identityKey = "authd/identity"

// AuthMiddleware is the authorization gate: it pulls the token out of
// the session cookie, validates it through the lifecycle manager, and
// attaches the resolved identity to the request context. Handlers
// behind it trust that identity and never re-validate the token.
func AuthMiddleware(authService *service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "The action is not authorized."})
			return
		}

		user, err := authService.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "The action is not authorized."})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
			}
			return
		}

		c.Set(identityKey, user)
		c.Next()
	}
}

// Identity returns the user the gate attached to the request.
func Identity(c *gin.Context) (*core.User, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*core.User)
	return user, ok
}

// RequestLogger logs one line per request. Tokens and credentials live
// in bodies and cookies, neither of which is logged.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
